package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/config"
	"github.com/edulink-ug/edulink/jobs"
	"github.com/edulink-ug/edulink/llm"
	"github.com/edulink-ug/edulink/routes"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/storage"
	"github.com/edulink-ug/edulink/store"
	"github.com/edulink-ug/edulink/store/gormstore"
	"github.com/edulink-ug/edulink/store/mongostore"
	"github.com/edulink-ug/edulink/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	log := utils.Logger
	defer func() { _ = log.Sync() }()

	rc, err := utils.InitRedis(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-process cache and limiter", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStore(ctx, cfg)
	if err != nil {
		cancel()
		log.Fatal("open store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	files, err := storage.New(ctx, cfg.Storage)
	cancel()
	if err != nil {
		log.Fatal("open attachment storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	rules := services.RulesFromConfig(cfg.Limits)
	var limiter services.Limiter
	var sweeper jobs.LimiterSweeper
	if rc != nil && cfg.Limits.Backend == "redis" {
		limiter = services.NewRedisLimiter(rc, rules)
	} else {
		mem := services.NewMemoryLimiter(rules, cfg.Limits.IdleTTL)
		limiter, sweeper = mem, mem
	}

	var provider services.Completer
	if client := llm.New(llm.Config{
		APIKey:  cfg.Tutor.APIKey,
		BaseURL: cfg.Tutor.BaseURL,
		Timeout: cfg.Tutor.Timeout,
		Models:  cfg.Tutor.Models,
	}); client.Enabled() {
		provider = client
	} else {
		log.Info("tutor provider not configured, answering with local fallback")
	}

	gate := services.NewGate(limiter, st, services.NewModerator(cfg.Moderation.BannedWords), log)
	users := services.NewUserService(st, gate, cfg.App.AdminEmails, log)
	questions := services.NewQuestionService(st, gate, log)
	answers := services.NewAnswerService(st, gate, log)
	sessions := services.NewSessionService(st, gate, cfg.Sessions.GracePeriod, log)

	r := routes.SetupRouter(cfg, routes.Services{
		Users:     users,
		Questions: questions,
		Answers:   answers,
		Reports:   services.NewReportService(st, gate, questions, answers, log),
		Sessions:  sessions,
		Tutor:     services.NewTutorService(st, gate, provider, cfg.Tutor.SystemPrompt, cfg.Tutor.HistorySize, log),
		Stats:     services.NewStatsService(st),
		Files:     files,
	})

	scheduler := jobs.NewScheduler(cfg.Sessions.SweepSpec, sessions, sweeper, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal("start scheduler", zap.Error(err))
	}

	srv := utils.NewServer(":"+cfg.App.Port, r, cfg.App.ReadTimeout, cfg.App.WriteTimeout)
	srv.OnShutdown(func(ctx context.Context) {
		if err := st.Close(ctx); err != nil {
			log.Warn("close store", zap.Error(err))
		}
		if rc != nil {
			_ = rc.Close()
		}
	})
	srv.OnShutdown(func(ctx context.Context) {
		select {
		case <-scheduler.Stop().Done():
		case <-ctx.Done():
		}
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.App.Port)
	if err := srv.ListenAndServe(); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

// openStore connects the backend selected by database.driver.
func openStore(ctx context.Context, cfg config.AppConfig) (store.Store, error) {
	if cfg.Database.Driver == "mongo" {
		client, db, err := config.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return mongostore.New(ctx, client, db)
	}
	db, err := config.OpenGorm(cfg)
	if err != nil {
		return nil, err
	}
	return gormstore.New(db)
}
