package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Token        string  `env:"TOKEN,required,notEmpty"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	DBPath         string `env:"DB_PATH"         envDefault:"db.sqlite"`
	RedisURL       string `env:"REDIS_URL"       envDefault:"redis://localhost:6379/0"`

	LLMProvider   string `env:"LLM_PROVIDER"    envDefault:"gemini"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`
	GeminiModel   string `env:"GEMINI_MODEL"`
	OpenAIModel   string `env:"OPENAI_MODEL"`

	// HistoryRetentionDays of 0 keeps history forever.
	HistoryRetentionDays int    `env:"HISTORY_RETENTION_DAYS" envDefault:"0"`
	HistoryRetentionSpec string `env:"HISTORY_RETENTION_SPEC" envDefault:"@daily"`

	PageFetchTimeout time.Duration `env:"PAGE_FETCH_TIMEOUT" envDefault:"20s"`
}

func (c Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

func Load() (Config, error) {
	return load(env.Options{})
}

func LoadConfig() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func load(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	switch c.StorageBackend {
	case StorageSQLite, StorageRedis:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q",
			StorageSQLite, StorageRedis, c.StorageBackend))
	}

	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q",
			ProviderGemini, ProviderOpenAI, c.LLMProvider))
	}

	if c.HistoryRetentionDays < 0 {
		errs = append(errs, errors.New("HISTORY_RETENTION_DAYS must not be negative"))
	}

	if c.PageFetchTimeout <= 0 {
		errs = append(errs, errors.New("PAGE_FETCH_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
