package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/utils"
)

// StatsController provides platform statistics and the health probe.
type StatsController struct {
	stats   *services.StatsService
	started time.Time
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats, started: time.Now()}
}

// Health reports liveness and uptime.
func (s *StatsController) Health(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// GetStats returns aggregate counters for the platform.
func (s *StatsController) GetStats(ctx *gin.Context) {
	st, err := s.stats.Get(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, st)
}
