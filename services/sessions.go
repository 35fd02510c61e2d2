package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

// SessionInput is the payload for scheduling a study session.
type SessionInput struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Subject         string    `json:"subject" validate:"required,max=64"`
	Description     string    `json:"description" validate:"max=2000"`
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"gte=15,lte=480"`
	MaxParticipants int       `json:"maxParticipants" validate:"gte=2,lte=200"`
	MeetingLink     string    `json:"meetingLink" validate:"omitempty,url,max=512"`
}

// SessionService schedules and runs group study sessions.
type SessionService struct {
	store store.Store
	gate  *Gate
	grace time.Duration
	log   *zap.Logger
	now   func() time.Time
}

// NewSessionService returns a SessionService; grace is how long past its end a session may stay open.
func NewSessionService(st store.Store, gate *Gate, grace time.Duration, log *zap.Logger) *SessionService {
	return &SessionService{store: st, gate: gate, grace: grace, log: log, now: time.Now}
}

// Create schedules a session hosted by p. The host joins it automatically.
func (s *SessionService) Create(ctx context.Context, p Principal, in SessionInput) (*models.StudySession, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := requireText(map[string]string{"title": in.Title, "subject": in.Subject}); err != nil {
		return nil, err
	}
	if in.ScheduledAt.Before(s.now().Add(-time.Minute)) {
		return nil, invalid("scheduledAt", "scheduledAt must be in the future")
	}
	user, err := s.gate.Admit(ctx, p, ActionSession)
	if err != nil {
		return nil, err
	}
	// The meeting link is expected to be a URL, so it is not moderated.
	if _, err := s.gate.Screen(ctx, user, in.Title, in.Description); err != nil {
		return nil, err
	}
	ss := &models.StudySession{
		ID:              uuid.NewString(),
		HostID:          user.ID,
		Title:           utils.StripTags(in.Title),
		Subject:         utils.StripTags(in.Subject),
		Description:     utils.Sanitize(in.Description),
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		MaxParticipants: in.MaxParticipants,
		MeetingLink:     in.MeetingLink,
		Status:          models.SessionScheduled,
	}
	if err := s.store.CreateSession(ctx, ss); err != nil {
		return nil, err
	}
	if err := s.store.AddParticipant(ctx, ss.ID, user.ID); err != nil {
		return nil, err
	}
	ss.Participants = []string{user.ID}
	return ss, nil
}

// Get returns one session with its participants.
func (s *SessionService) Get(ctx context.Context, id string) (*models.StudySession, error) {
	ss, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrSessionNotFound)
	}
	return ss, nil
}

// List pages through sessions.
func (s *SessionService) List(ctx context.Context, f store.SessionFilter) ([]models.StudySession, int64, error) {
	return s.store.ListSessions(ctx, f)
}

// Join adds p to the session. Joining twice is a no-op.
func (s *SessionService) Join(ctx context.Context, p Principal, id string) (*models.StudySession, error) {
	if _, err := s.gate.enforcer.Check(ctx, p.ID); err != nil {
		return nil, err
	}
	ss, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ss.HasParticipant(p.ID) {
		return ss, nil
	}
	if ss.Status == models.SessionEnded {
		return nil, ErrSessionEnded
	}
	if len(ss.Participants) >= ss.MaxParticipants {
		return nil, ErrSessionFull
	}
	if err := s.store.AddParticipant(ctx, id, p.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Leave removes p from the session. The host cannot leave their own session.
func (s *SessionService) Leave(ctx context.Context, p Principal, id string) (*models.StudySession, error) {
	ss, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ss.HostID == p.ID {
		return nil, invalid("session", "the host cannot leave; end the session instead")
	}
	if err := s.store.RemoveParticipant(ctx, id, p.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Start moves a scheduled session live. Host only.
func (s *SessionService) Start(ctx context.Context, p Principal, id string) (*models.StudySession, error) {
	ss, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ID != ss.HostID {
		return nil, ErrForbidden
	}
	switch ss.Status {
	case models.SessionLive:
		return ss, nil
	case models.SessionEnded:
		return nil, ErrSessionEnded
	}
	if err := s.store.SetSessionStatus(ctx, id, models.SessionLive, s.now()); err != nil {
		return nil, mapNotFound(err, ErrSessionNotFound)
	}
	return s.Get(ctx, id)
}

// End closes the session. Host or admin.
func (s *SessionService) End(ctx context.Context, p Principal, id string) (*models.StudySession, error) {
	ss, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, VerbManageSession, ss.HostID); err != nil {
		return nil, err
	}
	if ss.Status == models.SessionEnded {
		return ss, nil
	}
	if err := s.store.SetSessionStatus(ctx, id, models.SessionEnded, s.now()); err != nil {
		return nil, mapNotFound(err, ErrSessionNotFound)
	}
	return s.Get(ctx, id)
}

// EndOverdue ends every session whose end time plus the grace period has passed.
func (s *SessionService) EndOverdue(ctx context.Context) (int64, error) {
	n, err := s.store.EndOverdueSessions(ctx, s.now(), s.grace)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("ended overdue study sessions", zap.Int64("count", n))
	}
	return n, nil
}
