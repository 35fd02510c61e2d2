package services

import (
	"context"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
	"go.uber.org/zap"
)

// Gate runs the shared preconditions of every user-generated write:
// rate limit, account enforcement and content moderation.
type Gate struct {
	limiter   Limiter
	enforcer  *Enforcer
	moderator *Moderator
	users     store.UserStore
	log       *zap.Logger
}

// NewGate wires the pipeline.
func NewGate(limiter Limiter, users store.UserStore, moderator *Moderator, log *zap.Logger) *Gate {
	return &Gate{
		limiter:   limiter,
		enforcer:  NewEnforcer(users, log),
		moderator: moderator,
		users:     users,
		log:       log,
	}
}

// Admit checks the rate limit and then the account state, returning the fresh user record.
func (g *Gate) Admit(ctx context.Context, p Principal, action Action) (*models.User, error) {
	if g.limiter != nil {
		ok, err := g.limiter.Allow(ctx, p.ID, action)
		if err != nil {
			// Fail open: a broken limiter backend must not take the site down.
			g.log.Warn("rate limiter unavailable", zap.String("action", string(action)), zap.Error(err))
		} else if !ok {
			return nil, ErrRateLimited
		}
	}
	return g.enforcer.Check(ctx, p.ID)
}

// Screen moderates the fields on behalf of user. Blocked content costs a strike
// and ErrContentRejected is returned; flagged content passes with a reason.
func (g *Gate) Screen(ctx context.Context, user *models.User, fields ...string) (Decision, error) {
	d := g.moderator.Moderate(fields...)
	if d.Verdict != Block {
		return d, nil
	}
	strikes, err := g.users.AddStrike(ctx, user.ID)
	if err != nil {
		return d, err
	}
	g.log.Info("content blocked", zap.String("user", user.ID), zap.Int("strikes", strikes))
	if strikes >= models.MaxStrikes {
		if err := g.users.SetStatus(ctx, user.ID, models.StatusSuspended, false); err != nil {
			return d, err
		}
		g.log.Info("account suspended at strike limit", zap.String("user", user.ID))
	}
	return d, ErrContentRejected
}

// Moderator exposes the underlying content filter.
func (g *Gate) Moderator() *Moderator {
	return g.moderator
}
