package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) error {
	return translate(s.db.WithContext(ctx).Create(q).Error)
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	if err := s.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	list := []models.Question{q}
	if err := s.hydrateQuestions(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *Store) ListQuestions(ctx context.Context, f store.QuestionFilter) ([]models.Question, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Question{})
	if f.Subject != "" {
		q = q.Where("subject = ?", f.Subject)
	}
	if f.EducationLevel != "" {
		q = q.Where("education_level = ?", f.EducationLevel)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(title LIKE ? OR body LIKE ?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case store.SortMostViews:
		q = q.Order("views DESC").Order("created_at DESC")
	case store.SortUpvotes:
		q = q.Order("(SELECT COUNT(*) FROM question_upvotes WHERE question_upvotes.question_id = questions.id) DESC").
			Order("created_at DESC")
	case store.SortOldest:
		q = q.Order("created_at ASC")
	default:
		q = q.Order("created_at DESC")
	}

	var items []models.Question
	if err := paginate(q, f.Page).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	if err := s.hydrateQuestions(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// hydrateQuestions fills upvotes and answer ids with one query each.
func (s *Store) hydrateQuestions(ctx context.Context, items []models.Question) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
		items[i].Upvotes = []string{}
		items[i].AnswerIDs = []string{}
	}

	var votes []models.QuestionUpvote
	if err := s.db.WithContext(ctx).Where("question_id IN ?", ids).Order("created_at ASC").Find(&votes).Error; err != nil {
		return err
	}
	for _, v := range votes {
		i := index[v.QuestionID]
		items[i].Upvotes = append(items[i].Upvotes, v.UserID)
	}

	var answers []struct {
		ID         string
		QuestionID string
	}
	if err := s.db.WithContext(ctx).Model(&models.Answer{}).Select("id", "question_id").
		Where("question_id IN ?", ids).Order("created_at ASC").Order("id ASC").Find(&answers).Error; err != nil {
		return err
	}
	for _, a := range answers {
		i := index[a.QuestionID]
		items[i].AnswerIDs = append(items[i].AnswerIDs, a.ID)
	}
	return nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q *models.Question) error {
	return affected(s.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", q.ID).Updates(map[string]interface{}{
		"title":           q.Title,
		"body":            q.Body,
		"subject":         q.Subject,
		"education_level": q.EducationLevel,
		"tags":            q.Tags,
		"attachments":     q.Attachments,
		"flagged":         q.Flagged,
		"flag_reason":     q.FlagReason,
	}))
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return affected(s.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)))
}

func (s *Store) SetQuestionUpvote(ctx context.Context, id, userID string, on bool) error {
	db := s.db.WithContext(ctx)
	if !on {
		return db.Where("question_id = ? AND user_id = ?", id, userID).Delete(&models.QuestionUpvote{}).Error
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.QuestionUpvote{QuestionID: id, UserID: userID}).Error
}

// AttachAnswer only moves the status: answers reference their question by column.
func (s *Store) AttachAnswer(ctx context.Context, questionID, answerID string) error {
	return s.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ? AND status = ?", questionID, models.QuestionOpen).
		Update("status", models.QuestionAnswered).Error
}

// DetachAnswer is a no-op here; deleting the answer row removes it from the list.
func (s *Store) DetachAnswer(ctx context.Context, questionID, answerID string) error {
	return nil
}

func (s *Store) SetQuestionStatus(ctx context.Context, id string, status models.QuestionStatus) error {
	return affected(s.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Update("status", status))
}

func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		answerIDs := tx.Model(&models.Answer{}).Select("id").Where("question_id = ?", id)
		if err := tx.Where("answer_id IN (?)", answerIDs).Delete(&models.AnswerVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionUpvote{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Question{}))
	})
}
