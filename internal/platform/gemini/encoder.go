// Package gemini adapts Google's Gemini embedding API to the evaluator's
// Encoder interface. Transient API failures are retried with exponential
// backoff; callers decide what to do when all attempts fail (the evaluator
// degrades to token overlap).
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/lexidrill/lexidrill-api/internal/config"
)

var (
	// ErrInvalidConfig indicates the encoder configuration is unusable.
	ErrInvalidConfig = errors.New("invalid encoder configuration")

	// ErrEmptyText is returned when asked to embed an empty string.
	ErrEmptyText = errors.New("text to embed cannot be empty")

	// ErrEmptyEmbedding is returned when the API responds without a vector.
	ErrEmptyEmbedding = errors.New("embedding response contained no vector")
)

// Encoder produces embedding vectors via the Gemini API.
type Encoder struct {
	logger *slog.Logger
	client *genai.Client
	model  string

	maxRetries       int
	retryDelaySecond int
}

// NewEncoder creates an Encoder from the evaluator configuration.
//
// Returns an error if the API key or model name is missing; callers that
// want to run without a model should skip construction entirely and pass a
// nil encoder to the evaluator.
func NewEncoder(ctx context.Context, log *slog.Logger, cfg config.EvaluatorConfig) (*Encoder, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("%w: embedding model cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		log.Warn("Invalid max retries value, using default", "max_retries", 2)
		maxRetries = 2
	}
	retryDelay := cfg.RetryDelaySeconds
	if retryDelay < 1 {
		log.Warn("Invalid retry delay value, using default", "retry_delay_seconds", 1)
		retryDelay = 1
	}

	return &Encoder{
		logger:           log.With(slog.String("component", "gemini_encoder")),
		client:           client,
		model:            cfg.EmbeddingModel,
		maxRetries:       maxRetries,
		retryDelaySecond: retryDelay,
	}, nil
}

// Encode embeds the given text, retrying transient failures with
// exponential backoff and jitter. The returned vector is suitable for
// cosine comparison against other vectors from the same model.
func (e *Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		vec, err := e.embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		// A response with no vector will not improve on retry.
		if errors.Is(err, ErrEmptyEmbedding) {
			return nil, err
		}

		e.logger.WarnContext(ctx, "embedding call failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", e.maxRetries+1),
			slog.String("error", err.Error()))

		if attempt == e.maxRetries {
			break
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(e.retryDelaySecond) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("embedding cancelled during retry delay: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", e.maxRetries+1, lastErr)
}

func (e *Encoder) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil ||
		len(resp.Embeddings[0].Values) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return resp.Embeddings[0].Values, nil
}
