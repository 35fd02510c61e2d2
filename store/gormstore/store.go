// Package gormstore implements store.Store on MySQL, Postgres or SQLite through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

// Store is the relational backend.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New migrates the schema and returns a Store bound to db.
func New(db *gorm.DB) (*Store, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Migrate creates or extends every table the application uses.
func Migrate(db *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Question{},
		&models.QuestionUpvote{},
		&models.Answer{},
		&models.AnswerVote{},
		&models.Report{},
		&models.StudySession{},
		&models.SessionParticipant{},
		&models.ChatMessage{},
	}
	for _, t := range tables {
		if err := db.AutoMigrate(t); err != nil {
			return fmt.Errorf("auto migrate %T: %w", t, err)
		}
	}
	return nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats counts the headline entities.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	var st store.Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&st.Users).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Question{}).Count(&st.Questions).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Answer{}).Count(&st.Answers).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Report{}).Where("status IN ?", []models.ReportStatus{models.ReportPending, models.ReportReviewing}).Count(&st.OpenReports).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.StudySession{}).Where("status = ?", models.SessionLive).Count(&st.LiveSessions).Error; err != nil {
		return st, err
	}
	return st, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	return err
}

// affected turns a zero-row write into store.ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func paginate(q *gorm.DB, p store.Page) *gorm.DB {
	if p.PageSize > 0 {
		q = q.Offset(p.Offset()).Limit(p.PageSize)
	}
	return q
}
