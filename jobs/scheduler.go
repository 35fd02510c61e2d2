// Package jobs runs periodic housekeeping.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultSessionSpec = "0 */5 * * * *"
	limiterSweepSpec   = "30 */10 * * * *"
	jobTimeout         = time.Minute
)

// SessionCloser ends study sessions that ran past their slot.
type SessionCloser interface {
	EndOverdue(ctx context.Context) (int64, error)
}

// LimiterSweeper evicts idle rate limiter entries.
type LimiterSweeper interface {
	Sweep() int
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron        *cron.Cron
	sessionSpec string
	sessions    SessionCloser
	limiter     LimiterSweeper
	log         *zap.Logger
}

// NewScheduler returns a Scheduler. limiter may be nil when the limiter keeps no local state.
func NewScheduler(sessionSpec string, sessions SessionCloser, limiter LimiterSweeper, log *zap.Logger) *Scheduler {
	if sessionSpec == "" {
		sessionSpec = defaultSessionSpec
	}
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		sessionSpec: sessionSpec,
		sessions:    sessions,
		limiter:     limiter,
		log:         log,
	}
}

// Start registers the jobs and starts the runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.sessionSpec, s.endOverdueSessions); err != nil {
		return err
	}
	if s.limiter != nil {
		if _, err := s.cron.AddFunc(limiterSweepSpec, s.sweepLimiter); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("sessions", s.sessionSpec))
	return nil
}

// Stop halts the runner; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) endOverdueSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.sessions.EndOverdue(ctx); err != nil {
		s.log.Error("end overdue sessions failed", zap.Error(err))
	}
}

func (s *Scheduler) sweepLimiter() {
	if n := s.limiter.Sweep(); n > 0 {
		s.log.Debug("rate limiter swept", zap.Int("evicted", n))
	}
}
