package services

import (
	"context"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
	"go.uber.org/zap"
)

// Enforcer blocks accounts that are suspended, banned or out of strikes.
type Enforcer struct {
	users store.UserStore
	log   *zap.Logger
}

// NewEnforcer returns an Enforcer reading fresh account state from users.
func NewEnforcer(users store.UserStore, log *zap.Logger) *Enforcer {
	return &Enforcer{users: users, log: log}
}

// Check loads the account and returns it when it may act.
// An active account at the strike limit is suspended on the spot.
func (e *Enforcer) Check(ctx context.Context, userID string) (*models.User, error) {
	u, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	switch u.Status {
	case models.StatusBanned:
		return nil, ErrAccountBanned
	case models.StatusSuspended:
		return nil, ErrAccountSuspended
	}
	if u.Strikes >= models.MaxStrikes {
		if err := e.users.SetStatus(ctx, u.ID, models.StatusSuspended, false); err != nil {
			return nil, err
		}
		e.log.Info("account suspended at strike limit", zap.String("user", u.ID), zap.Int("strikes", u.Strikes))
		return nil, ErrAccountSuspended
	}
	return u, nil
}
