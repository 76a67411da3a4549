package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Gemini   GeminiConfig
	Score    ScoreConfig
	Rules    RulesConfig
	Telegram TelegramConfig
	Logging  LoggingConfig
}

type AppConfig struct {
	Port     string
	Env      string
	TimeZone string
}

type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (cfg RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
}

type JWTConfig struct {
	Secret string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

type ScoreConfig struct {
	TotalPolicy string
	DynamicDays int
}

type RulesConfig struct {
	SweepInterval    time.Duration
	SweepConcurrency int
	FertilityMaxAge  int
	CooldownBackend  string
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

const (
	CooldownBackendDatabase = "database"
	CooldownBackendRedis    = "redis"
)

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env is fine; the environment alone is enough.
	_ = v.ReadInConfig()

	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			TimeZone: v.GetString("TZ"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			Path:     v.GetString("DB_PATH"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Gemini: GeminiConfig{
			APIKey:         v.GetString("GEMINI_API_KEY"),
			Model:          v.GetString("GEMINI_MODEL"),
			EmbeddingModel: v.GetString("EMBEDDING_MODEL"),
		},
		Score: ScoreConfig{
			TotalPolicy: strings.ToLower(strings.TrimSpace(v.GetString("SCORE_TOTAL_POLICY"))),
			DynamicDays: v.GetInt("SCORE_DYNAMIC_DAYS"),
		},
		Rules: RulesConfig{
			SweepInterval:    v.GetDuration("SWEEP_INTERVAL"),
			SweepConcurrency: v.GetInt("SWEEP_CONCURRENCY"),
			FertilityMaxAge:  v.GetInt("FERTILITY_NOTIFY_MAX_AGE"),
			CooldownBackend:  strings.ToLower(strings.TrimSpace(v.GetString("COOLDOWN_BACKEND"))),
		},
		Telegram: TelegramConfig{
			BotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID:   v.GetString("TELEGRAM_CHAT_ID"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("TZ", "UTC")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "data/fertyfit.db")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-004")
	v.SetDefault("SCORE_TOTAL_POLICY", "scored_only")
	v.SetDefault("SCORE_DYNAMIC_DAYS", 14)
	v.SetDefault("SWEEP_INTERVAL", "6h")
	v.SetDefault("SWEEP_CONCURRENCY", 4)
	v.SetDefault("FERTILITY_NOTIFY_MAX_AGE", 45)
	v.SetDefault("COOLDOWN_BACKEND", CooldownBackendDatabase)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Score.TotalPolicy {
	case "scored_only", "zero_fill":
	default:
		return fmt.Errorf("unsupported score total policy %q", c.Score.TotalPolicy)
	}
	if c.Score.DynamicDays < 1 {
		return fmt.Errorf("score dynamic days must be positive")
	}

	switch c.Rules.CooldownBackend {
	case CooldownBackendDatabase, CooldownBackendRedis:
	default:
		return fmt.Errorf("unsupported cooldown backend %q", c.Rules.CooldownBackend)
	}
	if c.Rules.SweepInterval < time.Minute {
		return fmt.Errorf("sweep interval must be at least one minute")
	}
	if c.Rules.SweepConcurrency < 1 {
		return fmt.Errorf("sweep concurrency must be positive")
	}
	if c.Rules.FertilityMaxAge < 1 {
		return fmt.Errorf("fertility notification max age must be positive")
	}
	return nil
}
