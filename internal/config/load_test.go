package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests mutate process env, so no t.Parallel here.

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LEXIDRILL_DATABASE_URL", "postgres://localhost:5432/lexidrill_test")
	t.Setenv("LEXIDRILL_SERVER_PORT", "9090")
	t.Setenv("LEXIDRILL_SERVER_LOG_LEVEL", "debug")
	t.Setenv("LEXIDRILL_EVALUATOR_GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/lexidrill_test", cfg.Database.URL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "test-key", cfg.Evaluator.GeminiAPIKey)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEXIDRILL_DATABASE_URL", "postgres://localhost:5432/lexidrill_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
	assert.Equal(t, "gemini-embedding-001", cfg.Evaluator.EmbeddingModel)
	assert.InDelta(t, 0.7, cfg.Evaluator.DefaultThreshold, 1e-9)
	assert.Empty(t, cfg.Evaluator.GeminiAPIKey)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid log level", "LEXIDRILL_SERVER_LOG_LEVEL", "loud"},
		{"port out of range", "LEXIDRILL_SERVER_PORT", "70000"},
		{"threshold above one", "LEXIDRILL_EVALUATOR_DEFAULT_THRESHOLD", "1.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LEXIDRILL_DATABASE_URL", "postgres://localhost:5432/lexidrill_test")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
