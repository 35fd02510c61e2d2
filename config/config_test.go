package config

import (
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestReadRequiresJWTSecret(t *testing.T) {
	t.Setenv("EDULINK_APP_JWTSECRET", "")
	if _, err := read(); err == nil {
		t.Fatal("expected an error without app.jwtSecret")
	}
}

func TestReadDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("EDULINK_APP_JWTSECRET", "s3cret")
	t.Setenv("EDULINK_APP_ADMINEMAILS", "head@edulink.ug,deputy@edulink.ug")
	t.Setenv("EDULINK_LIMITS_WINDOW", "2m")
	t.Setenv("EDULINK_LIMITS_IDLETTL", "30s")
	t.Setenv("EDULINK_DATABASE_DRIVER", " Mongo ")

	c, err := read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.App.Port != "8080" || c.App.TokenTTL != 72*time.Hour {
		t.Fatalf("unexpected app defaults %+v", c.App)
	}
	if len(c.App.AdminEmails) != 2 || c.App.AdminEmails[1] != "deputy@edulink.ug" {
		t.Fatalf("admin emails = %v", c.App.AdminEmails)
	}
	if c.Limits.Window != 2*time.Minute {
		t.Fatalf("window = %v", c.Limits.Window)
	}
	// The idle TTL never undercuts the window.
	if c.Limits.IdleTTL != 2*time.Minute {
		t.Fatalf("idle ttl = %v, want 2m", c.Limits.IdleTTL)
	}
	if c.Database.Driver != "mongo" {
		t.Fatalf("driver = %q", c.Database.Driver)
	}
	if c.Storage.MaxFiles != 5 || c.Tutor.HistorySize != 10 {
		t.Fatalf("unexpected storage/tutor defaults %+v %+v", c.Storage, c.Tutor)
	}
}

func TestToGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":  logger.Info,
		"info":   logger.Warn,
		"":       logger.Warn,
		"error":  logger.Error,
		"silent": logger.Silent,
		"weird":  logger.Warn,
	}
	for in, want := range cases {
		if got := toGormLogLevel(in); got != want {
			t.Errorf("toGormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
