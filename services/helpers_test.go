package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/config"
	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store/gormstore"
	"github.com/edulink-ug/edulink/store/storetest"
)

type testEnv struct {
	store     *gormstore.Store
	limiter   *MemoryLimiter
	gate      *Gate
	users     *UserService
	questions *QuestionService
	answers   *AnswerService
	reports   *ReportService
	sessions  *SessionService
}

func roomyRules() Rules {
	r := Rules{}
	for _, a := range []Action{ActionQuestion, ActionAnswer, ActionVote, ActionReport, ActionChat, ActionSession} {
		r[a] = LimitRule{Max: 1000, Window: time.Minute}
	}
	return r
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithRules(t, roomyRules())
}

func newTestEnvWithRules(t *testing.T, rules Rules) *testEnv {
	t.Helper()
	log := zap.NewNop()
	st := storetest.NewGormStore(t)
	limiter := NewMemoryLimiter(rules, time.Hour)
	gate := NewGate(limiter, st, NewModerator(nil), log)
	questions := NewQuestionService(st, gate, log)
	answers := NewAnswerService(st, gate, log)
	return &testEnv{
		store:     st,
		limiter:   limiter,
		gate:      gate,
		users:     NewUserService(st, gate, []string{"head@edulink.ug"}, log),
		questions: questions,
		answers:   answers,
		reports:   NewReportService(st, gate, questions, answers, log),
		sessions:  NewSessionService(st, gate, 30*time.Minute, log),
	}
}

func (e *testEnv) newUser(t *testing.T, role models.Role, verified bool) (*models.User, Principal) {
	t.Helper()
	u := &models.User{
		ID:       uuid.NewString(),
		Name:     string(role) + " user",
		Email:    uuid.NewString() + "@example.com",
		Role:     role,
		Status:   models.StatusActive,
		Verified: verified,
	}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u, Principal{ID: u.ID, Role: role}
}

func (e *testEnv) reload(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := e.store.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u
}

func (e *testEnv) postQuestion(t *testing.T, p Principal) *models.Question {
	t.Helper()
	q, err := e.questions.Create(context.Background(), p, QuestionInput{
		Title:          "How do plants make food?",
		Body:           "I do not understand photosynthesis.",
		Subject:        "Biology",
		EducationLevel: "O-Level",
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

func (e *testEnv) postAnswer(t *testing.T, p Principal, questionID string) *models.Answer {
	t.Helper()
	a, err := e.answers.Create(context.Background(), p, questionID, AnswerInput{Body: "Chlorophyll captures light energy."})
	if err != nil {
		t.Fatalf("create answer: %v", err)
	}
	return a
}

func configLimits(window time.Duration) config.LimitsSection {
	return config.LimitsSection{
		Window:    window,
		Questions: 5,
		Answers:   10,
		Votes:     30,
		Reports:   5,
		Chat:      20,
		Sessions:  3,
	}
}
