package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edulink-ug/edulink/models"
)

func TestAdmitChecksRateLimitBeforeAccount(t *testing.T) {
	env := newTestEnvWithRules(t, Rules{ActionQuestion: {Max: 1, Window: time.Minute}})
	ctx := context.Background()
	u, p := env.newUser(t, models.RoleStudent, false)

	if _, err := env.gate.Admit(ctx, p, ActionQuestion); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	if err := env.store.SetStatus(ctx, u.ID, models.StatusBanned, false); err != nil {
		t.Fatal(err)
	}
	if _, err := env.gate.Admit(ctx, p, ActionQuestion); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestEnforcerSuspendsAtStrikeLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, p := env.newUser(t, models.RoleStudent, false)
	for i := 0; i < models.MaxStrikes; i++ {
		if _, err := env.store.AddStrike(ctx, u.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := env.gate.Admit(ctx, p, ActionQuestion); !errors.Is(err, ErrAccountSuspended) {
		t.Fatalf("err = %v, want ErrAccountSuspended", err)
	}
	if got := env.reload(t, u.ID).Status; got != models.StatusSuspended {
		t.Fatalf("status = %s, want suspended", got)
	}
}

func TestEnforcerRejectsBanned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, p := env.newUser(t, models.RoleStudent, false)
	if err := env.store.SetStatus(ctx, u.ID, models.StatusBanned, false); err != nil {
		t.Fatal(err)
	}
	if _, err := env.gate.Admit(ctx, p, ActionAnswer); !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("err = %v, want ErrAccountBanned", err)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, Action) (bool, error) {
	return false, errors.New("redis down")
}

func TestAdmitFailsOpenWhenLimiterErrors(t *testing.T) {
	env := newTestEnv(t)
	env.gate.limiter = failingLimiter{}
	_, p := env.newUser(t, models.RoleStudent, false)
	if _, err := env.gate.Admit(context.Background(), p, ActionVote); err != nil {
		t.Fatalf("admit: %v", err)
	}
}

func TestAdmitUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.gate.Admit(context.Background(), Principal{ID: "ghost", Role: models.RoleStudent}, ActionVote)
	if !errors.Is(err, ErrUserNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
