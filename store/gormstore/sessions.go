package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

func (s *Store) CreateSession(ctx context.Context, ss *models.StudySession) error {
	return translate(s.db.WithContext(ctx).Create(ss).Error)
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.StudySession, error) {
	var ss models.StudySession
	if err := s.db.WithContext(ctx).First(&ss, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	list := []models.StudySession{ss}
	if err := s.hydrateSessions(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *Store) ListSessions(ctx context.Context, f store.SessionFilter) ([]models.StudySession, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.StudySession{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Subject != "" {
		q = q.Where("subject = ?", f.Subject)
	}
	if f.HostID != "" {
		q = q.Where("host_id = ?", f.HostID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.StudySession
	if err := paginate(q.Order("scheduled_at ASC"), f.Page).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	if err := s.hydrateSessions(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) hydrateSessions(ctx context.Context, items []models.StudySession) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
		items[i].Participants = []string{}
	}
	var rows []models.SessionParticipant
	if err := s.db.WithContext(ctx).Where("session_id IN ?", ids).Order("joined_at ASC").Find(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		i := index[r.SessionID]
		items[i].Participants = append(items[i].Participants, r.UserID)
	}
	return nil
}

func (s *Store) AddParticipant(ctx context.Context, id, userID string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SessionParticipant{SessionID: id, UserID: userID, JoinedAt: time.Now()}).Error
}

func (s *Store) RemoveParticipant(ctx context.Context, id, userID string) error {
	return s.db.WithContext(ctx).Where("session_id = ? AND user_id = ?", id, userID).
		Delete(&models.SessionParticipant{}).Error
}

func (s *Store) SetSessionStatus(ctx context.Context, id string, status models.SessionStatus, at time.Time) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.SessionLive:
		updates["started_at"] = at
	case models.SessionEnded:
		updates["ended_at"] = at
	}
	return affected(s.db.WithContext(ctx).Model(&models.StudySession{}).Where("id = ?", id).Updates(updates))
}

// EndOverdueSessions narrows candidates in SQL by start time and checks the
// per-row duration in Go, which keeps the query portable across dialects.
func (s *Store) EndOverdueSessions(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	var candidates []models.StudySession
	if err := s.db.WithContext(ctx).
		Where("status <> ? AND scheduled_at < ?", models.SessionEnded, now.Add(-grace)).
		Find(&candidates).Error; err != nil {
		return 0, err
	}
	var overdue []string
	for i := range candidates {
		if candidates[i].EndsAt().Add(grace).Before(now) {
			overdue = append(overdue, candidates[i].ID)
		}
	}
	if len(overdue) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&models.StudySession{}).Where("id IN ?", overdue).
		Updates(map[string]interface{}{"status": models.SessionEnded, "ended_at": now})
	return res.RowsAffected, res.Error
}
