package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// ReportInput is the payload for filing a report.
type ReportInput struct {
	ContentType    string                `json:"contentType" validate:"required"`
	ContentID      string                `json:"contentId" validate:"required,max=64"`
	ReportedUserID string                `json:"reportedUser" validate:"max=64"`
	Type           models.ReportType     `json:"type" validate:"required,oneof=spam harassment inappropriate misinformation cheating other"`
	Description    string                `json:"description" validate:"required,max=2000"`
	Priority       models.ReportPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// ReportUpdate is an administrator's review of a report. Nil fields are left unchanged.
type ReportUpdate struct {
	Status      *models.ReportStatus   `json:"status" validate:"omitempty,oneof=pending reviewing resolved dismissed"`
	Action      *models.ReportAction   `json:"action" validate:"omitempty,oneof=no-action content-removed warning-issued user-suspended user-banned"`
	Priority    *models.ReportPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	ReviewNotes *string                `json:"reviewNotes" validate:"omitempty,max=2000"`
}

// ReportService implements the moderation report workflow.
type ReportService struct {
	store     store.Store
	gate      *Gate
	questions *QuestionService
	answers   *AnswerService
	log       *zap.Logger
	now       func() time.Time
}

// NewReportService returns a ReportService. Content removal goes through the
// question and answer services so caches and cascades stay consistent.
func NewReportService(st store.Store, gate *Gate, questions *QuestionService, answers *AnswerService, log *zap.Logger) *ReportService {
	return &ReportService{store: st, gate: gate, questions: questions, answers: answers, log: log, now: time.Now}
}

// Create files a pending report by p against existing content.
func (s *ReportService) Create(ctx context.Context, p Principal, in ReportInput) (*models.Report, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ct, err := models.ParseContentType(in.ContentType)
	if err != nil {
		return nil, invalid("contentType", "contentType must be one of: question answer chat session user")
	}
	if _, err := s.gate.Admit(ctx, p, ActionReport); err != nil {
		return nil, err
	}
	content := models.ReportedContent{ContentType: ct, ContentID: in.ContentID}
	owner, err := s.contentOwner(ctx, content)
	if err != nil {
		return nil, err
	}
	reported := in.ReportedUserID
	if reported == "" {
		reported = owner
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	r := &models.Report{
		ID:              uuid.NewString(),
		ReporterID:      p.ID,
		ReportedUserID:  reported,
		ReportedContent: content,
		Type:            in.Type,
		Description:     in.Description,
		Status:          models.ReportPending,
		Priority:        priority,
	}
	if err := s.store.CreateReport(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("report filed", zap.String("report", r.ID), zap.String("contentType", string(ct)), zap.String("contentId", in.ContentID))
	return r, nil
}

// contentOwner resolves the referenced content and returns the id of the user who owns it.
func (s *ReportService) contentOwner(ctx context.Context, c models.ReportedContent) (string, error) {
	var (
		owner string
		err   error
	)
	switch c.ContentType {
	case models.ContentQuestion:
		var q *models.Question
		if q, err = s.store.GetQuestion(ctx, c.ContentID); err == nil {
			owner = q.AuthorID
		}
	case models.ContentAnswer:
		var a *models.Answer
		if a, err = s.store.GetAnswer(ctx, c.ContentID); err == nil {
			owner = a.AuthorID
		}
	case models.ContentChat:
		var m *models.ChatMessage
		if m, err = s.store.GetChatMessage(ctx, c.ContentID); err == nil {
			owner = m.UserID
		}
	case models.ContentSession:
		var ss *models.StudySession
		if ss, err = s.store.GetSession(ctx, c.ContentID); err == nil {
			owner = ss.HostID
		}
	case models.ContentUser:
		var u *models.User
		if u, err = s.store.GetUser(ctx, c.ContentID); err == nil {
			owner = u.ID
		}
	default:
		return "", invalid("contentType", "unknown content type")
	}
	if err != nil {
		return "", mapNotFound(err, ErrContentNotFound)
	}
	return owner, nil
}

// Get returns a report to an administrator or to the user who filed it.
func (s *ReportService) Get(ctx context.Context, p Principal, id string) (*models.Report, error) {
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrReportNotFound)
	}
	if err := Authorize(p, VerbViewReport, r.ReporterID); err != nil {
		return nil, err
	}
	return r, nil
}

// List pages through reports for administrators.
func (s *ReportService) List(ctx context.Context, p Principal, f store.ReportFilter) ([]models.Report, int64, error) {
	if err := Authorize(p, VerbReviewReports, ""); err != nil {
		return nil, 0, err
	}
	return s.store.ListReports(ctx, f)
}

// ListMine pages through the reports p has filed.
func (s *ReportService) ListMine(ctx context.Context, p Principal, page store.Page) ([]models.Report, int64, error) {
	return s.store.ListReports(ctx, store.ReportFilter{ReporterID: p.ID, Page: page})
}

// Update applies an administrator's review. Every call stamps the reviewer and
// time; every call carrying an action applies its side effect on the reported user or content.
func (s *ReportService) Update(ctx context.Context, p Principal, id string, in ReportUpdate) (*models.Report, error) {
	if err := Authorize(p, VerbReviewReports, ""); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrReportNotFound)
	}
	if in.Status != nil {
		if !r.Status.CanMoveTo(*in.Status) {
			return nil, invalid("status", "cannot move report from "+string(r.Status)+" to "+string(*in.Status))
		}
		r.Status = *in.Status
	}
	if in.Action != nil {
		r.Action = *in.Action
	}
	if in.Priority != nil {
		r.Priority = *in.Priority
	}
	if in.ReviewNotes != nil {
		r.ReviewNotes = *in.ReviewNotes
	}
	now := s.now()
	r.ReviewedBy = p.ID
	r.ReviewedAt = &now

	if in.Action != nil {
		if err := s.applyAction(ctx, p, r, *in.Action); err != nil {
			return nil, err
		}
	}
	if err := s.store.SaveReport(ctx, r); err != nil {
		return nil, mapNotFound(err, ErrReportNotFound)
	}
	return r, nil
}

func (s *ReportService) applyAction(ctx context.Context, p Principal, r *models.Report, action models.ReportAction) error {
	switch action {
	case models.ActionUserSuspended:
		return s.suspend(ctx, r.ReportedUserID)
	case models.ActionUserBanned:
		if err := s.store.SetStatus(ctx, r.ReportedUserID, models.StatusBanned, false); err != nil {
			return s.ignoreMissingUser(err, r.ReportedUserID)
		}
		utils.InvalidateByPrefix(utils.CacheLeaderboard)
		return nil
	case models.ActionContentRemoved:
		return s.removeContent(ctx, p, r.ReportedContent)
	case models.ActionWarningIssued, models.ActionNone:
		return nil
	}
	return nil
}

// suspend adds a strike and suspends the user. An account that is already
// suspended or banned is left as it is.
func (s *ReportService) suspend(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return s.ignoreMissingUser(err, userID)
	}
	if u.Status == models.StatusSuspended || u.Status == models.StatusBanned {
		return nil
	}
	if _, err := s.store.AddStrike(ctx, userID); err != nil {
		return s.ignoreMissingUser(err, userID)
	}
	return s.ignoreMissingUser(s.store.SetStatus(ctx, userID, models.StatusSuspended, false), userID)
}

// ignoreMissingUser treats an absent reported user as nothing to do.
func (s *ReportService) ignoreMissingUser(err error, userID string) error {
	if err == nil || userID == "" {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warn("reported user not found, skipping sanction", zap.String("user", userID))
		return nil
	}
	return err
}

func (s *ReportService) removeContent(ctx context.Context, p Principal, c models.ReportedContent) error {
	var err error
	switch c.ContentType {
	case models.ContentQuestion:
		err = s.questions.remove(ctx, c.ContentID)
	case models.ContentAnswer:
		var a *models.Answer
		if a, err = s.answers.Get(ctx, c.ContentID); err == nil {
			err = s.answers.remove(ctx, a)
		}
	case models.ContentChat, models.ContentSession, models.ContentUser:
		// Only questions and answers can be taken down; the rest is handled by user sanctions.
		s.log.Info("content removal not supported for type", zap.String("contentType", string(c.ContentType)), zap.String("by", p.ID))
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
