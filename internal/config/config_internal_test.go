package config

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(env.Options{Environment: map[string]string{
		"TOKEN": "123:abc",
	}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.StorageBackend != StorageSQLite || cfg.DBPath != "db.sqlite" {
		t.Fatalf("Unexpected storage defaults: %+v", cfg)
	}

	if cfg.LLMProvider != ProviderGemini {
		t.Fatalf("Expected gemini provider, got %q", cfg.LLMProvider)
	}

	if cfg.PageFetchTimeout != 20*time.Second || cfg.HistoryRetentionSpec != "@daily" {
		t.Fatalf("Unexpected defaults: %+v", cfg)
	}

	if cfg.HistoryRetention() != 0 {
		t.Fatalf("Expected retention to be disabled, got %v", cfg.HistoryRetention())
	}
}

func TestLoadValues(t *testing.T) {
	cfg, err := load(env.Options{Environment: map[string]string{
		"TOKEN":                  "123:abc",
		"ALLOWED_USERS":          "1,2,3",
		"STORAGE_BACKEND":        "redis",
		"REDIS_URL":              "redis://cache:6379/1",
		"LLM_PROVIDER":           "openai",
		"HISTORY_RETENTION_DAYS": "30",
		"PAGE_FETCH_TIMEOUT":     "5s",
	}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !slices.Equal(cfg.AllowedUsers, []int64{1, 2, 3}) {
		t.Fatalf("Unexpected allowed users: %v", cfg.AllowedUsers)
	}

	if cfg.StorageBackend != StorageRedis || cfg.RedisURL != "redis://cache:6379/1" {
		t.Fatalf("Unexpected storage config: %+v", cfg)
	}

	if cfg.HistoryRetention() != 30*24*time.Hour || cfg.PageFetchTimeout != 5*time.Second {
		t.Fatalf("Unexpected durations: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"Missing token", map[string]string{}, "TOKEN"},
		{"Bad allowed users", map[string]string{"TOKEN": "t", "ALLOWED_USERS": "1,abc"}, "parse env"},
		{"Bad backend", map[string]string{"TOKEN": "t", "STORAGE_BACKEND": "mongo"}, "STORAGE_BACKEND"},
		{"Bad provider", map[string]string{"TOKEN": "t", "LLM_PROVIDER": "llama"}, "LLM_PROVIDER"},
		{"Negative retention", map[string]string{"TOKEN": "t", "HISTORY_RETENTION_DAYS": "-1"}, "HISTORY_RETENTION_DAYS"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := load(env.Options{Environment: test.env})
			if err == nil {
				t.Fatalf("Expected error")
			}

			if !strings.Contains(err.Error(), test.want) {
				t.Fatalf("Expected error to mention %q, got %v", test.want, err)
			}
		})
	}
}
