package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/utils"
)

const statsTTL = 60 * time.Second

// StatsService reports platform counters, cached in Redis when available.
type StatsService struct {
	store store.Store
}

// NewStatsService returns a StatsService.
func NewStatsService(st store.Store) *StatsService {
	return &StatsService{store: st}
}

// Get returns the current counters.
func (s *StatsService) Get(ctx context.Context) (store.Stats, error) {
	if b, ok := utils.CacheGetBytes(utils.CacheStats); ok {
		var cached store.Stats
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
	}
	st, err := s.store.Stats(ctx)
	if err != nil {
		return store.Stats{}, err
	}
	utils.CacheSetJSON(utils.CacheStats, st, statsTTL)
	return st, nil
}
