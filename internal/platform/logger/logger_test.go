package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	testCases := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{"Error", false},
		{"", false},
		{"verbose", true},
	}

	for _, tc := range testCases {
		t.Run("level "+tc.level, func(t *testing.T) {
			log, err := Setup(tc.level)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, log)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(os.Stderr, nil)).With(slog.String("scope", "test"))
	ctx := WithLogger(context.Background(), custom)

	assert.Same(t, custom, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))

	attached := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := WithLogger(context.Background(), attached)
	assert.Same(t, attached, FromContextOrDefault(ctx, fallback))
}
