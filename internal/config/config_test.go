package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestFromViperAppliesDefaults(t *testing.T) {
	config, err := FromViper(newTestViper(map[string]any{"JWT_SECRET": testSecret}))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if config.App.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", config.App.Port)
	}
	if config.Database.Driver != "sqlite" || config.Database.Path == "" {
		t.Fatalf("expected sqlite defaults, got %+v", config.Database)
	}
	if config.Score.TotalPolicy != "scored_only" || config.Score.DynamicDays != 14 {
		t.Fatalf("unexpected score defaults: %+v", config.Score)
	}
	if config.Rules.SweepInterval != 6*time.Hour {
		t.Fatalf("expected 6h sweep interval, got %s", config.Rules.SweepInterval)
	}
	if config.Rules.FertilityMaxAge != 45 {
		t.Fatalf("expected fertility max age 45, got %d", config.Rules.FertilityMaxAge)
	}
	if config.Rules.CooldownBackend != CooldownBackendDatabase {
		t.Fatalf("expected database cooldown backend, got %q", config.Rules.CooldownBackend)
	}
	if config.Redis.Addr() != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", config.Redis.Addr())
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SCORE_TOTAL_POLICY", "ZERO_FILL")
	t.Setenv("SWEEP_CONCURRENCY", "9")
	t.Setenv("FERTILITY_NOTIFY_MAX_AGE", "50")

	config, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if config.Score.TotalPolicy != "zero_fill" {
		t.Fatalf("expected zero_fill policy, got %q", config.Score.TotalPolicy)
	}
	if config.Rules.SweepConcurrency != 9 {
		t.Fatalf("expected sweep concurrency 9, got %d", config.Rules.SweepConcurrency)
	}
	if config.Rules.FertilityMaxAge != 50 {
		t.Fatalf("expected fertility max age 50, got %d", config.Rules.FertilityMaxAge)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		values  map[string]any
		message string
	}{
		{name: "missing secret", values: map[string]any{}, message: "JWT secret is required"},
		{name: "short secret", values: map[string]any{"JWT_SECRET": "short"}, message: "at least 32"},
		{name: "unknown driver", values: map[string]any{"JWT_SECRET": testSecret, "DB_DRIVER": "mysql"}, message: "unsupported database driver"},
		{name: "postgres without host", values: map[string]any{"JWT_SECRET": testSecret, "DB_DRIVER": "postgres"}, message: "database host is required"},
		{name: "unknown policy", values: map[string]any{"JWT_SECRET": testSecret, "SCORE_TOTAL_POLICY": "max"}, message: "unsupported score total policy"},
		{name: "unknown cooldown backend", values: map[string]any{"JWT_SECRET": testSecret, "COOLDOWN_BACKEND": "memcached"}, message: "unsupported cooldown backend"},
		{name: "tiny sweep interval", values: map[string]any{"JWT_SECRET": testSecret, "SWEEP_INTERVAL": "5s"}, message: "sweep interval"},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := FromViper(newTestViper(testCase.values))
			if err == nil || !strings.Contains(err.Error(), testCase.message) {
				t.Fatalf("expected error containing %q, got %v", testCase.message, err)
			}
		})
	}
}
