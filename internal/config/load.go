package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables (prefix LEXIDRILL_,
// nesting via underscores, e.g. LEXIDRILL_DATABASE_URL) and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values; both override the built-in defaults.
// Returns a validated Config or an error describing what failed.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults keep local development working with only the database URL
	// and API key supplied from the environment.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.migrations_dir", "migrations")
	v.SetDefault("evaluator.embedding_model", "gemini-embedding-001")
	v.SetDefault("evaluator.default_threshold", 0.7)
	v.SetDefault("evaluator.max_retries", 2)
	v.SetDefault("evaluator.retry_delay_seconds", 1)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults cover everything.
	}

	v.SetEnvPrefix("LEXIDRILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly or AutomaticEnv will
	// not surface them during Unmarshal.
	for _, key := range []string{"database.url", "evaluator.gemini_api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
