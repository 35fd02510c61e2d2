package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edulink-ug/edulink/models"
)

func (s *Store) CreateAnswer(ctx context.Context, a *models.Answer) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *Store) GetAnswer(ctx context.Context, id string) (*models.Answer, error) {
	var a models.Answer
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	list := []models.Answer{a}
	if err := s.hydrateAnswers(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID string) ([]models.Answer, error) {
	var items []models.Answer
	if err := s.db.WithContext(ctx).Where("question_id = ?", questionID).
		Order("created_at ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	if err := s.hydrateAnswers(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) hydrateAnswers(ctx context.Context, items []models.Answer) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
		items[i].Upvotes = []string{}
		items[i].Downvotes = []string{}
	}
	var votes []models.AnswerVote
	if err := s.db.WithContext(ctx).Where("answer_id IN ?", ids).Order("created_at ASC").Find(&votes).Error; err != nil {
		return err
	}
	for _, v := range votes {
		a := &items[index[v.AnswerID]]
		if v.Kind == models.VoteUp {
			a.Upvotes = append(a.Upvotes, v.UserID)
		} else {
			a.Downvotes = append(a.Downvotes, v.UserID)
		}
	}
	return nil
}

func (s *Store) UpdateAnswer(ctx context.Context, a *models.Answer) error {
	return affected(s.db.WithContext(ctx).Model(&models.Answer{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"body":        a.Body,
		"attachments": a.Attachments,
		"flagged":     a.Flagged,
		"flag_reason": a.FlagReason,
	}))
}

func (s *Store) SetAnswerVote(ctx context.Context, id, userID string, kind models.VoteKind) error {
	db := s.db.WithContext(ctx)
	if kind == "" {
		return db.Where("answer_id = ? AND user_id = ?", id, userID).Delete(&models.AnswerVote{}).Error
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "answer_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind"}),
	}).Create(&models.AnswerVote{AnswerID: id, UserID: userID, Kind: kind}).Error
}

// AcceptAnswer flips the whole sibling set in a single UPDATE, then stamps the
// award marker if the answer never carried one.
func (s *Store) AcceptAnswer(ctx context.Context, questionID, answerID string, at time.Time) (bool, error) {
	first := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", questionID).
			UpdateColumn("is_accepted", gorm.Expr("CASE WHEN id = ? THEN ? ELSE ? END", answerID, true, false)).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Answer{}).
			Where("id = ? AND question_id = ? AND accept_awarded_at IS NULL", answerID, questionID).
			UpdateColumn("accept_awarded_at", at)
		if res.Error != nil {
			return res.Error
		}
		first = res.RowsAffected == 1
		return nil
	})
	return first, err
}

func (s *Store) VerifyAnswer(ctx context.Context, id, verifierID string, at time.Time) error {
	return affected(s.db.WithContext(ctx).Model(&models.Answer{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      models.AnswerApproved,
		"verified_by": verifierID,
		"verified_at": at,
	}))
}

func (s *Store) SetAnswerStatus(ctx context.Context, id string, status models.AnswerStatus) error {
	return affected(s.db.WithContext(ctx).Model(&models.Answer{}).Where("id = ?", id).Update("status", status))
}

func (s *Store) DeleteAnswer(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("answer_id = ?", id).Delete(&models.AnswerVote{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Answer{}))
	})
}
