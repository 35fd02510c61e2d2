package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// Reputation awards.
const (
	PointsAnswer   = 5
	PointsAccepted = 15
	PointsVerified = 10
)

// AnswerInput is the create and edit payload for answers.
type AnswerInput struct {
	Body        string              `json:"body" validate:"required,max=10000"`
	Attachments []models.Attachment `json:"attachments" validate:"max=5"`
}

func (in AnswerInput) check() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	return requireText(map[string]string{"body": in.Body})
}

// AnswerService implements the answer lifecycle and its reputation effects.
type AnswerService struct {
	store store.Store
	gate  *Gate
	log   *zap.Logger
	now   func() time.Time
}

// NewAnswerService returns an AnswerService.
func NewAnswerService(st store.Store, gate *Gate, log *zap.Logger) *AnswerService {
	return &AnswerService{store: st, gate: gate, log: log, now: time.Now}
}

// Create answers questionID on behalf of p. Verified teachers are approved immediately.
func (s *AnswerService) Create(ctx context.Context, p Principal, questionID string, in AnswerInput) (*models.Answer, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	user, err := s.gate.Admit(ctx, p, ActionAnswer)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetQuestion(ctx, questionID); err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	decision, err := s.gate.Screen(ctx, user, in.Body)
	if err != nil {
		return nil, err
	}
	a := &models.Answer{
		ID:          uuid.NewString(),
		QuestionID:  questionID,
		AuthorID:    user.ID,
		Body:        utils.Sanitize(in.Body),
		Attachments: in.Attachments,
		Status:      models.AnswerPending,
		Flagged:     decision.Verdict == AllowFlagged,
		FlagReason:  decision.Reason,
	}
	if user.IsVerifiedTeacher() {
		now := s.now()
		a.Status = models.AnswerApproved
		a.VerifiedBy = user.ID
		a.VerifiedAt = &now
	}
	if err := s.store.CreateAnswer(ctx, a); err != nil {
		return nil, err
	}
	if err := s.store.AttachAnswer(ctx, questionID, a.ID); err != nil {
		return nil, err
	}
	s.award(ctx, user.ID, PointsAnswer, "answer")
	utils.InvalidateByPrefix(utils.CacheQuestionList)
	a.Upvotes = []string{}
	a.Downvotes = []string{}
	a.Author = user.Summary()
	a.Author.Points += PointsAnswer
	return a, nil
}

// Get returns one answer.
func (s *AnswerService) Get(ctx context.Context, id string) (*models.Answer, error) {
	a, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrAnswerNotFound)
	}
	return a, nil
}

// List returns the answers of a question: accepted first, then by score, then oldest first.
func (s *AnswerService) List(ctx context.Context, questionID string) ([]models.Answer, error) {
	if _, err := s.store.GetQuestion(ctx, questionID); err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	items, err := s.store.ListAnswers(ctx, questionID)
	if err != nil {
		return nil, err
	}
	SortAnswers(items)
	ids := make([]string, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].AuthorID)
	}
	authors, err := summaries(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Author = authors[items[i].AuthorID]
	}
	return items, nil
}

// SortAnswers orders answers for display.
func SortAnswers(items []models.Answer) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.IsAccepted != b.IsAccepted {
			return a.IsAccepted
		}
		if sa, sb := a.Score(), b.Score(); sa != sb {
			return sa > sb
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// nextVote applies a vote request to the caller's current vote.
// Repeating the current direction retracts it.
func nextVote(current, requested models.VoteKind) models.VoteKind {
	if current == requested {
		return ""
	}
	return requested
}

// Vote records an upvote or downvote by p; a user is never in both sets.
func (s *AnswerService) Vote(ctx context.Context, p Principal, id string, kind models.VoteKind) (*models.Answer, error) {
	if !kind.Valid() {
		return nil, invalid("voteType", "voteType must be one of: upvote downvote")
	}
	if _, err := s.gate.Admit(ctx, p, ActionVote); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetAnswerVote(ctx, id, p.ID, nextVote(a.VoteOf(p.ID), kind)); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Accept marks the answer as the accepted one for its question. Only the
// question's author may accept; siblings lose the mark in the same store operation.
func (s *AnswerService) Accept(ctx context.Context, p Principal, id string) (*models.Answer, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	q, err := s.store.GetQuestion(ctx, a.QuestionID)
	if err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	if err := Authorize(p, VerbAcceptAnswer, q.AuthorID); err != nil {
		return nil, err
	}
	if a.IsAccepted {
		return a, nil
	}
	first, err := s.store.AcceptAnswer(ctx, q.ID, a.ID, s.now())
	if err != nil {
		return nil, err
	}
	// Moving the mark away and back does not pay the author again.
	if first {
		s.award(ctx, a.AuthorID, PointsAccepted, "accepted")
	}
	a.IsAccepted = true
	return a, nil
}

// Verify approves the answer on behalf of a teacher or admin.
func (s *AnswerService) Verify(ctx context.Context, p Principal, id string) (*models.Answer, error) {
	if err := Authorize(p, VerbVerifyAnswer, ""); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.VerifiedBy != "" && a.Status == models.AnswerApproved {
		return a, nil
	}
	now := s.now()
	if err := s.store.VerifyAnswer(ctx, id, p.ID, now); err != nil {
		return nil, mapNotFound(err, ErrAnswerNotFound)
	}
	s.award(ctx, a.AuthorID, PointsVerified, "verified")
	a.Status = models.AnswerApproved
	a.VerifiedBy = p.ID
	a.VerifiedAt = &now
	return a, nil
}

// Reject moves a pending answer to rejected. Admin only.
func (s *AnswerService) Reject(ctx context.Context, p Principal, id string) (*models.Answer, error) {
	if err := Authorize(p, VerbRejectAnswer, ""); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != models.AnswerPending {
		return nil, invalid("status", "only pending answers can be rejected")
	}
	if err := s.store.SetAnswerStatus(ctx, id, models.AnswerRejected); err != nil {
		return nil, mapNotFound(err, ErrAnswerNotFound)
	}
	a.Status = models.AnswerRejected
	return a, nil
}

// Update lets the author edit the answer body; the new text is moderated again.
func (s *AnswerService) Update(ctx context.Context, p Principal, id string, in AnswerInput) (*models.Answer, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, VerbUpdateAnswer, a.AuthorID); err != nil {
		return nil, err
	}
	user, err := s.gate.enforcer.Check(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	decision, err := s.gate.Screen(ctx, user, in.Body)
	if err != nil {
		return nil, err
	}
	a.Body = utils.Sanitize(in.Body)
	a.Attachments = in.Attachments
	a.Flagged = decision.Verdict == AllowFlagged
	a.FlagReason = decision.Reason
	if err := s.store.UpdateAnswer(ctx, a); err != nil {
		return nil, mapNotFound(err, ErrAnswerNotFound)
	}
	return a, nil
}

// Delete removes the answer and its votes. Author or admin only.
func (s *AnswerService) Delete(ctx context.Context, p Principal, id string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(p, VerbDeleteAnswer, a.AuthorID); err != nil {
		return err
	}
	return s.remove(ctx, a)
}

func (s *AnswerService) remove(ctx context.Context, a *models.Answer) error {
	if err := s.store.DetachAnswer(ctx, a.QuestionID, a.ID); err != nil {
		return err
	}
	if err := s.store.DeleteAnswer(ctx, a.ID); err != nil {
		return mapNotFound(err, ErrAnswerNotFound)
	}
	utils.InvalidateByPrefix(utils.CacheQuestionList)
	s.log.Info("answer deleted", zap.String("answer", a.ID), zap.String("question", a.QuestionID))
	return nil
}

// award adds reputation. Failures are logged; the triggering write already happened.
func (s *AnswerService) award(ctx context.Context, userID string, n int, reason string) {
	if err := s.store.AddPoints(ctx, userID, n); err != nil {
		s.log.Error("award points", zap.String("user", userID), zap.Int("points", n), zap.String("reason", reason), zap.Error(err))
		return
	}
	utils.InvalidateByPrefix(utils.CacheLeaderboard)
}
