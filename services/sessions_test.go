package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edulink-ug/edulink/models"
)

func sessionInput(at time.Time, capacity int) SessionInput {
	return SessionInput{
		Title:           "Revision: quadratic equations",
		Subject:         "Math",
		Description:     "We go through past paper questions.",
		ScheduledAt:     at,
		DurationMinutes: 60,
		MaxParticipants: capacity,
	}
}

func TestSessionJoinRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	host, hp := env.newUser(t, models.RoleTeacher, true)
	_, s1 := env.newUser(t, models.RoleStudent, false)
	_, s2 := env.newUser(t, models.RoleStudent, false)

	ss, err := env.sessions.Create(ctx, hp, sessionInput(time.Now().Add(time.Hour), 2))
	if err != nil {
		t.Fatal(err)
	}
	if ss.Status != models.SessionScheduled || !ss.HasParticipant(host.ID) {
		t.Fatalf("new session = %+v", ss)
	}

	if _, err := env.sessions.Join(ctx, s1, ss.ID); err != nil {
		t.Fatal(err)
	}
	got, err := env.sessions.Join(ctx, s1, ss.ID)
	if err != nil || len(got.Participants) != 2 {
		t.Fatalf("idempotent join = %v %v", got, err)
	}
	if _, err := env.sessions.Join(ctx, s2, ss.ID); !errors.Is(err, ErrSessionFull) || !errors.Is(err, ErrConflict) {
		t.Fatalf("full join err = %v", err)
	}
	if _, err := env.sessions.Leave(ctx, s1, ss.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.sessions.Leave(ctx, hp, ss.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("host leave err = %v", err)
	}

	if _, err := env.sessions.Start(ctx, s2, ss.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-host start err = %v", err)
	}
	if got, err = env.sessions.Start(ctx, hp, ss.ID); err != nil || got.Status != models.SessionLive || got.StartedAt == nil {
		t.Fatalf("start = %v %v", got, err)
	}
	if got, err = env.sessions.End(ctx, hp, ss.ID); err != nil || got.Status != models.SessionEnded {
		t.Fatalf("end = %v %v", got, err)
	}
	if _, err := env.sessions.Join(ctx, s2, ss.ID); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("join ended err = %v", err)
	}
}

func TestSessionCreateRejectsPast(t *testing.T) {
	env := newTestEnv(t)
	_, hp := env.newUser(t, models.RoleTeacher, false)
	_, err := env.sessions.Create(context.Background(), hp, sessionInput(time.Now().Add(-2*time.Hour), 10))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestEndOverdueSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, hp := env.newUser(t, models.RoleTeacher, false)
	start := time.Now().Add(10 * time.Minute)
	ss, err := env.sessions.Create(ctx, hp, sessionInput(start, 10))
	if err != nil {
		t.Fatal(err)
	}

	// One hour session plus thirty minutes of grace.
	env.sessions.now = func() time.Time { return start.Add(80 * time.Minute) }
	if n, err := env.sessions.EndOverdue(ctx); err != nil || n != 0 {
		t.Fatalf("early sweep = %d %v", n, err)
	}
	env.sessions.now = func() time.Time { return start.Add(91 * time.Minute) }
	if n, err := env.sessions.EndOverdue(ctx); err != nil || n != 1 {
		t.Fatalf("sweep = %d %v", n, err)
	}
	got, err := env.sessions.Get(ctx, ss.ID)
	if err != nil || got.Status != models.SessionEnded {
		t.Fatalf("session = %v %v", got, err)
	}
}
