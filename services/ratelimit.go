package services

import (
	"context"
	"sync"
	"time"

	"github.com/edulink-ug/edulink/config"
)

// Action names a rate limited user operation.
type Action string

const (
	ActionQuestion Action = "question"
	ActionAnswer   Action = "answer"
	ActionVote     Action = "vote"
	ActionReport   Action = "report"
	ActionChat     Action = "chat"
	ActionSession  Action = "session"
)

// LimitRule allows at most Max events per user within a sliding Window.
type LimitRule struct {
	Max    int
	Window time.Duration
}

// Rules maps every limited action to its budget.
type Rules map[Action]LimitRule

// RulesFromConfig builds the per-action budgets from the limits section.
func RulesFromConfig(c config.LimitsSection) Rules {
	w := c.Window
	if w <= 0 {
		w = time.Minute
	}
	return Rules{
		ActionQuestion: {Max: c.Questions, Window: w},
		ActionAnswer:   {Max: c.Answers, Window: w},
		ActionVote:     {Max: c.Votes, Window: w},
		ActionReport:   {Max: c.Reports, Window: w},
		ActionChat:     {Max: c.Chat, Window: w},
		ActionSession:  {Max: c.Sessions, Window: w},
	}
}

// Limiter decides whether a user may perform an action now and records it when allowed.
type Limiter interface {
	Allow(ctx context.Context, userID string, action Action) (bool, error)
}

type limitKey struct {
	user   string
	action Action
}

type window struct {
	times []time.Time
	last  time.Time
}

// MemoryLimiter is a process-local sliding window limiter. Idle entries are
// evicted by Sweep so the map stays bounded by active users.
type MemoryLimiter struct {
	mu      sync.Mutex
	rules   Rules
	idleTTL time.Duration
	entries map[limitKey]*window
	now     func() time.Time
}

// NewMemoryLimiter returns a limiter enforcing rules; entries idle for idleTTL are swept.
func NewMemoryLimiter(rules Rules, idleTTL time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		rules:   rules,
		idleTTL: idleTTL,
		entries: make(map[limitKey]*window),
		now:     time.Now,
	}
}

// Allow records the attempt and reports true when it fits in the window.
// A rejected attempt is not recorded.
func (l *MemoryLimiter) Allow(_ context.Context, userID string, action Action) (bool, error) {
	rule, ok := l.rules[action]
	if !ok || rule.Max <= 0 {
		return true, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := limitKey{user: userID, action: action}
	w := l.entries[key]
	if w == nil {
		w = &window{}
		l.entries[key] = w
	}
	w.last = now
	w.times = prune(w.times, now.Add(-rule.Window))
	if len(w.times) >= rule.Max {
		return false, nil
	}
	w.times = append(w.times, now)
	return true, nil
}

func prune(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return times
	}
	return append(times[:0], times[i:]...)
}

// Sweep drops entries untouched for longer than the idle TTL and returns how many were removed.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for k, w := range l.entries {
		if w.last.Before(cutoff) {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked user/action pairs.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
