package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// QuestionInput is the create and edit payload for questions.
type QuestionInput struct {
	Title          string              `json:"title" validate:"required,max=200"`
	Body           string              `json:"body" validate:"required,max=10000"`
	Subject        string              `json:"subject" validate:"required,max=64"`
	EducationLevel string              `json:"educationLevel" validate:"required,oneof=Primary O-Level A-Level University"`
	Tags           []string            `json:"tags" validate:"max=10,dive,max=32"`
	Attachments    []models.Attachment `json:"attachments" validate:"max=5"`
}

func (in QuestionInput) check() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	return requireText(map[string]string{"title": in.Title, "body": in.Body, "subject": in.Subject})
}

// QuestionService implements the question lifecycle.
type QuestionService struct {
	store store.Store
	gate  *Gate
	log   *zap.Logger
}

// NewQuestionService returns a QuestionService.
func NewQuestionService(st store.Store, gate *Gate, log *zap.Logger) *QuestionService {
	return &QuestionService{store: st, gate: gate, log: log}
}

// Create posts a new open question for p.
func (s *QuestionService) Create(ctx context.Context, p Principal, in QuestionInput) (*models.Question, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	user, err := s.gate.Admit(ctx, p, ActionQuestion)
	if err != nil {
		return nil, err
	}
	decision, err := s.gate.Screen(ctx, user, in.Title, in.Body)
	if err != nil {
		return nil, err
	}
	q := &models.Question{
		ID:             uuid.NewString(),
		AuthorID:       user.ID,
		Title:          utils.StripTags(in.Title),
		Body:           utils.Sanitize(in.Body),
		Subject:        utils.StripTags(in.Subject),
		EducationLevel: in.EducationLevel,
		Tags:           utils.UniqueStrings(in.Tags),
		Attachments:    in.Attachments,
		Status:         models.QuestionOpen,
		Flagged:        decision.Verdict == AllowFlagged,
		FlagReason:     decision.Reason,
	}
	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	q.Upvotes = []string{}
	q.AnswerIDs = []string{}
	q.Author = user.Summary()
	utils.InvalidateByPrefix(utils.CacheQuestionList)
	if q.Flagged {
		s.log.Info("question flagged", zap.String("question", q.ID), zap.String("reason", q.FlagReason))
	}
	return q, nil
}

// Get counts a view and returns the question with its upvotes, answer ids and author.
func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	if err := s.store.IncrementViews(ctx, id); err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	if author, err := s.store.GetUser(ctx, q.AuthorID); err == nil {
		q.Author = author.Summary()
	}
	return q, nil
}

// List pages through questions with author summaries attached.
func (s *QuestionService) List(ctx context.Context, f store.QuestionFilter) ([]models.Question, int64, error) {
	items, total, err := s.store.ListQuestions(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].AuthorID)
	}
	authors, err := summaries(ctx, s.store, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].Author = authors[items[i].AuthorID]
	}
	return items, total, nil
}

// Update lets the author edit the question; the new text is moderated again.
func (s *QuestionService) Update(ctx context.Context, p Principal, id string, in QuestionInput) (*models.Question, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	if err := Authorize(p, VerbUpdateQuestion, q.AuthorID); err != nil {
		return nil, err
	}
	user, err := s.gate.enforcer.Check(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	decision, err := s.gate.Screen(ctx, user, in.Title, in.Body)
	if err != nil {
		return nil, err
	}
	q.Title = utils.StripTags(in.Title)
	q.Body = utils.Sanitize(in.Body)
	q.Subject = utils.StripTags(in.Subject)
	q.EducationLevel = in.EducationLevel
	q.Tags = utils.UniqueStrings(in.Tags)
	q.Attachments = in.Attachments
	q.Flagged = decision.Verdict == AllowFlagged
	q.FlagReason = decision.Reason
	if err := s.store.UpdateQuestion(ctx, q); err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	utils.InvalidateByPrefix(utils.CacheQuestionList)
	return q, nil
}

// Close marks the question closed. Author or admin only.
func (s *QuestionService) Close(ctx context.Context, p Principal, id string) (*models.Question, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	if err := Authorize(p, VerbCloseQuestion, q.AuthorID); err != nil {
		return nil, err
	}
	if q.Status != models.QuestionClosed {
		if err := s.store.SetQuestionStatus(ctx, id, models.QuestionClosed); err != nil {
			return nil, mapNotFound(err, ErrQuestionNotFound)
		}
		q.Status = models.QuestionClosed
		utils.InvalidateByPrefix(utils.CacheQuestionList)
	}
	return q, nil
}

// ToggleUpvote adds p to the upvote set, or removes them when already present.
func (s *QuestionService) ToggleUpvote(ctx context.Context, p Principal, id string) (*models.Question, error) {
	if _, err := s.gate.Admit(ctx, p, ActionVote); err != nil {
		return nil, err
	}
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	on := !contains(q.Upvotes, p.ID)
	if err := s.store.SetQuestionUpvote(ctx, id, p.ID, on); err != nil {
		return nil, err
	}
	utils.InvalidateByPrefix(utils.CacheQuestionList)
	q, err = s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	return q, nil
}

// Delete removes the question with all of its answers and votes. Author or admin only.
func (s *QuestionService) Delete(ctx context.Context, p Principal, id string) error {
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return mapNotFound(err, ErrQuestionNotFound)
	}
	if err := Authorize(p, VerbDeleteQuestion, q.AuthorID); err != nil {
		return err
	}
	return s.remove(ctx, id)
}

func (s *QuestionService) remove(ctx context.Context, id string) error {
	if err := s.store.DeleteQuestion(ctx, id); err != nil {
		return mapNotFound(err, ErrQuestionNotFound)
	}
	utils.InvalidateByPrefix(utils.CacheQuestionList)
	s.log.Info("question deleted", zap.String("question", id))
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
