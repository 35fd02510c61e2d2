// Package store defines the persistence contracts shared by the SQL and document backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/edulink-ug/edulink/models"
)

// ErrNotFound is returned by every lookup that matches nothing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique key is already taken.
var ErrDuplicate = errors.New("duplicate record")

// Page is a 1-based pagination window.
type Page struct {
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// UserFilter narrows ListUsers.
type UserFilter struct {
	Role   models.Role
	Status models.UserStatus
	Search string
	Page
}

// ProfileUpdate carries the self-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Bio      *string
	School   *string
	Subjects []string
}

// UserStore persists accounts and the reputation ledger.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context, ids []string) ([]models.User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error)
	TopUsers(ctx context.Context, limit int) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error
	// AddPoints atomically increments the point balance.
	AddPoints(ctx context.Context, id string, n int) error
	// AddStrike atomically increments strikes, capped at models.MaxStrikes, and returns the new count.
	AddStrike(ctx context.Context, id string) (int, error)
	// SetStatus writes the account status; resetStrikes also zeroes the strike counter.
	SetStatus(ctx context.Context, id string, status models.UserStatus, resetStrikes bool) error
	SetVerified(ctx context.Context, id string, verified bool) error
}

// QuestionSort selects list ordering.
type QuestionSort string

const (
	SortNewest    QuestionSort = "newest"
	SortMostViews QuestionSort = "views"
	SortUpvotes   QuestionSort = "upvotes"
	SortOldest    QuestionSort = "oldest"
)

// QuestionFilter narrows ListQuestions.
type QuestionFilter struct {
	Subject        string
	EducationLevel string
	Status         models.QuestionStatus
	AuthorID       string
	Search         string
	Sort           QuestionSort
	Page
}

// QuestionStore persists questions and their upvote sets.
type QuestionStore interface {
	CreateQuestion(ctx context.Context, q *models.Question) error
	// GetQuestion loads the question with its upvotes and ordered answer ids.
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, int64, error)
	// UpdateQuestion rewrites the editable content fields.
	UpdateQuestion(ctx context.Context, q *models.Question) error
	IncrementViews(ctx context.Context, id string) error
	SetQuestionUpvote(ctx context.Context, id, userID string, on bool) error
	// AttachAnswer records the answer on the question and moves open to answered.
	AttachAnswer(ctx context.Context, questionID, answerID string) error
	DetachAnswer(ctx context.Context, questionID, answerID string) error
	SetQuestionStatus(ctx context.Context, id string, status models.QuestionStatus) error
	// DeleteQuestion removes the question, its answers and every vote on them.
	DeleteQuestion(ctx context.Context, id string) error
}

// AnswerStore persists answers and their vote sets.
type AnswerStore interface {
	CreateAnswer(ctx context.Context, a *models.Answer) error
	GetAnswer(ctx context.Context, id string) (*models.Answer, error)
	ListAnswers(ctx context.Context, questionID string) ([]models.Answer, error)
	UpdateAnswer(ctx context.Context, a *models.Answer) error
	// SetAnswerVote puts userID in exactly the kind set, or in neither when kind is empty.
	SetAnswerVote(ctx context.Context, id, userID string, kind models.VoteKind) error
	// AcceptAnswer marks answerID accepted and every sibling unaccepted in one statement.
	// first is true only for the first acceptance ever recorded on answerID.
	AcceptAnswer(ctx context.Context, questionID, answerID string, at time.Time) (first bool, err error)
	VerifyAnswer(ctx context.Context, id, verifierID string, at time.Time) error
	SetAnswerStatus(ctx context.Context, id string, status models.AnswerStatus) error
	DeleteAnswer(ctx context.Context, id string) error
}

// ReportFilter narrows ListReports.
type ReportFilter struct {
	Status     models.ReportStatus
	Priority   models.ReportPriority
	Type       models.ReportType
	ReporterID string
	Page
}

// ReportStore persists moderation reports.
type ReportStore interface {
	CreateReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListReports(ctx context.Context, f ReportFilter) ([]models.Report, int64, error)
	// SaveReport writes the review fields of an existing report.
	SaveReport(ctx context.Context, r *models.Report) error
}

// SessionFilter narrows ListSessions.
type SessionFilter struct {
	Status  models.SessionStatus
	Subject string
	HostID  string
	Page
}

// SessionStore persists study sessions and their participants.
type SessionStore interface {
	CreateSession(ctx context.Context, s *models.StudySession) error
	GetSession(ctx context.Context, id string) (*models.StudySession, error)
	ListSessions(ctx context.Context, f SessionFilter) ([]models.StudySession, int64, error)
	AddParticipant(ctx context.Context, id, userID string) error
	RemoveParticipant(ctx context.Context, id, userID string) error
	SetSessionStatus(ctx context.Context, id string, status models.SessionStatus, at time.Time) error
	// EndOverdueSessions ends every non-ended session whose end plus grace lies before now.
	EndOverdueSessions(ctx context.Context, now time.Time, grace time.Duration) (int64, error)
}

// ChatStore persists the AI tutor history.
type ChatStore interface {
	AppendChat(ctx context.Context, msgs ...*models.ChatMessage) error
	// RecentChat returns up to limit latest messages in chronological order.
	RecentChat(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
	GetChatMessage(ctx context.Context, id string) (*models.ChatMessage, error)
	ClearChat(ctx context.Context, userID string) error
}

// Stats are platform-wide counters.
type Stats struct {
	Users        int64 `json:"users"`
	Questions    int64 `json:"questions"`
	Answers      int64 `json:"answers"`
	OpenReports  int64 `json:"openReports"`
	LiveSessions int64 `json:"liveSessions"`
}

// Store is the full persistence surface implemented by each backend.
type Store interface {
	UserStore
	QuestionStore
	AnswerStore
	ReportStore
	SessionStore
	ChatStore
	Stats(ctx context.Context) (Stats, error)
	Close(ctx context.Context) error
}
