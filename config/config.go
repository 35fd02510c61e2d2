package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// AppSection holds HTTP and identity settings.
type AppSection struct {
	Port               string        `mapstructure:"port"`
	JWTSecret          string        `mapstructure:"jwtSecret"`
	TokenTTL           time.Duration `mapstructure:"tokenTTL"`
	AllowedOrigins     []string      `mapstructure:"allowedOrigins"`
	AdminEmails        []string      `mapstructure:"adminEmails"`
	RateLimitPerMinute int           `mapstructure:"rateLimitPerMinute"`
	ReadTimeout        time.Duration `mapstructure:"readTimeout"`
	WriteTimeout       time.Duration `mapstructure:"writeTimeout"`
}

// GinSection configures the HTTP engine.
type GinSection struct {
	Mode    string `mapstructure:"mode"`
	LogPath string `mapstructure:"logPath"`
}

// DatabaseSection selects and configures the persistence backend.
type DatabaseSection struct {
	// Driver is one of mysql, postgres or mongo.
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	MaxOpen         int           `mapstructure:"maxOpen"`
	MaxIdle         int           `mapstructure:"maxIdle"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	MongoURI        string        `mapstructure:"mongoURI"`
	MongoDatabase   string        `mapstructure:"mongoDatabase"`
}

// RedisSection configures the optional Redis instance.
type RedisSection struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogSection configures zap and lumberjack.
type LogSection struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
	Compress   bool   `mapstructure:"compress"`
}

// LimitsSection holds the per-user sliding window budgets.
type LimitsSection struct {
	// Backend is memory or redis.
	Backend   string        `mapstructure:"backend"`
	Window    time.Duration `mapstructure:"window"`
	IdleTTL   time.Duration `mapstructure:"idleTTL"`
	Questions int           `mapstructure:"questions"`
	Answers   int           `mapstructure:"answers"`
	Votes     int           `mapstructure:"votes"`
	Reports   int           `mapstructure:"reports"`
	Chat      int           `mapstructure:"chat"`
	Sessions  int           `mapstructure:"sessions"`
}

// ModerationSection configures the content filter.
type ModerationSection struct {
	BannedWords []string `mapstructure:"bannedWords"`
}

// MinioSection configures the S3 compatible attachment bucket.
type MinioSection struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"accessKey"`
	SecretKey     string `mapstructure:"secretKey"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"useSSL"`
	Region        string `mapstructure:"region"`
	PublicBaseURL string `mapstructure:"publicBaseURL"`
}

// StorageSection selects where uploaded attachments go.
type StorageSection struct {
	// Driver is local or minio.
	Driver       string       `mapstructure:"driver"`
	LocalDir     string       `mapstructure:"localDir"`
	PublicPrefix string       `mapstructure:"publicPrefix"`
	MaxUploadMB  int          `mapstructure:"maxUploadMB"`
	MaxFiles     int          `mapstructure:"maxFiles"`
	Minio        MinioSection `mapstructure:"minio"`
}

// TutorSection configures the AI study assistant provider.
type TutorSection struct {
	BaseURL      string        `mapstructure:"baseURL"`
	APIKey       string        `mapstructure:"apiKey"`
	Models       []string      `mapstructure:"models"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SystemPrompt string        `mapstructure:"systemPrompt"`
	HistorySize  int           `mapstructure:"historySize"`
}

// SessionsSection configures study session housekeeping.
type SessionsSection struct {
	GracePeriod time.Duration `mapstructure:"gracePeriod"`
	SweepSpec   string        `mapstructure:"sweepSpec"`
}

// AppConfig captures configuration from config.json, defaults and EDULINK_* environment variables.
type AppConfig struct {
	App        AppSection        `mapstructure:"app"`
	Gin        GinSection        `mapstructure:"gin"`
	Database   DatabaseSection   `mapstructure:"database"`
	Redis      RedisSection      `mapstructure:"redis"`
	Log        LogSection        `mapstructure:"log"`
	Limits     LimitsSection     `mapstructure:"limits"`
	Moderation ModerationSection `mapstructure:"moderation"`
	Storage    StorageSection    `mapstructure:"storage"`
	Tutor      TutorSection      `mapstructure:"tutor"`
	Sessions   SessionsSection   `mapstructure:"sessions"`
}

var (
	cfg     AppConfig
	cfgOnce sync.Once
	cfgErr  error
	cfgMu   sync.RWMutex
)

// Load reads configuration once and caches it for later Get calls.
func Load() (AppConfig, error) {
	cfgOnce.Do(func() {
		loaded, err := read()
		if err != nil {
			cfgErr = err
			return
		}
		Set(loaded)
	})
	return Get(), cfgErr
}

// Get returns the cached configuration.
func Get() AppConfig {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

// Set replaces the cached configuration.
func Set(c AppConfig) {
	cfgMu.Lock()
	cfg = c
	cfgMu.Unlock()
}

func read() (AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("EDULINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("load config file: %w", err)
		}
	}

	var out AppConfig
	if err := v.Unmarshal(&out, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(out.App.JWTSecret) == "" {
		return AppConfig{}, errors.New("app.jwtSecret must be provided (EDULINK_APP_JWTSECRET)")
	}
	out.Database.Driver = strings.ToLower(strings.TrimSpace(out.Database.Driver))
	out.Storage.Driver = strings.ToLower(strings.TrimSpace(out.Storage.Driver))
	out.Limits.Backend = strings.ToLower(strings.TrimSpace(out.Limits.Backend))
	if out.Limits.IdleTTL < out.Limits.Window {
		out.Limits.IdleTTL = out.Limits.Window
	}
	return out, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.jwtSecret", "")
	v.SetDefault("app.tokenTTL", "72h")
	v.SetDefault("app.allowedOrigins", []string{"*"})
	v.SetDefault("app.adminEmails", []string{})
	v.SetDefault("app.rateLimitPerMinute", 120)
	v.SetDefault("app.readTimeout", "60s")
	v.SetDefault("app.writeTimeout", "60s")

	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.logPath", "logs/gin.log")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "edulink")
	v.SetDefault("database.maxOpen", 20)
	v.SetDefault("database.maxIdle", 5)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.mongoURI", "mongodb://127.0.0.1:27017")
	v.SetDefault("database.mongoDatabase", "edulink")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/app.log")
	v.SetDefault("log.maxSizeMB", 100)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("log.maxAgeDays", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("limits.backend", "memory")
	v.SetDefault("limits.window", "1m")
	v.SetDefault("limits.idleTTL", "10m")
	v.SetDefault("limits.questions", 5)
	v.SetDefault("limits.answers", 10)
	v.SetDefault("limits.votes", 30)
	v.SetDefault("limits.reports", 5)
	v.SetDefault("limits.chat", 20)
	v.SetDefault("limits.sessions", 3)

	v.SetDefault("moderation.bannedWords", []string{})

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.localDir", "static/uploads")
	v.SetDefault("storage.publicPrefix", "/static/uploads")
	v.SetDefault("storage.maxUploadMB", 10)
	v.SetDefault("storage.maxFiles", 5)
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.accessKey", "")
	v.SetDefault("storage.minio.secretKey", "")
	v.SetDefault("storage.minio.bucket", "edulink-attachments")
	v.SetDefault("storage.minio.useSSL", false)
	v.SetDefault("storage.minio.region", "us-east-1")
	v.SetDefault("storage.minio.publicBaseURL", "")

	v.SetDefault("tutor.baseURL", "https://api.openai.com/v1")
	v.SetDefault("tutor.apiKey", "")
	v.SetDefault("tutor.models", []string{"gpt-4o-mini", "gpt-3.5-turbo"})
	v.SetDefault("tutor.timeout", "60s")
	v.SetDefault("tutor.systemPrompt", "You are EduLink Tutor, a patient study assistant for Ugandan primary, secondary and university students. Explain step by step and encourage the learner to reason.")
	v.SetDefault("tutor.historySize", 10)

	v.SetDefault("sessions.gracePeriod", "30m")
	v.SetDefault("sessions.sweepSpec", "0 */5 * * * *")
}
