// Package evaluator turns a free-text student answer and a reference
// definition into a correctness judgment: a [0,1] similarity score, a
// correct/incorrect flag against a threshold, and a tiered feedback
// message. Similarity is cosine distance between embeddings from a shared
// Encoder; when the encoder is unavailable the package degrades to a
// token-overlap heuristic rather than failing, because a learner must
// always receive some judgment.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"

	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
)

// Documented threshold presets for the correctness cutoff.
const (
	ThresholdStrict   = 0.8
	ThresholdModerate = 0.7 // default
	ThresholdLenient  = 0.6
)

// Feedback tier cutoffs, evaluated in descending order.
const (
	tierExcellentCutoff = 0.9
	tierGoodCutoff      = 0.7
	tierPartialCutoff   = 0.5
)

// FeedbackTier labels the quality band of an answer.
type FeedbackTier string

// Possible feedback tiers.
const (
	TierExcellent FeedbackTier = "excellent"
	TierGood      FeedbackTier = "good"
	TierPartial   FeedbackTier = "partial"
	TierIncorrect FeedbackTier = "incorrect"
)

// ErrMissingReference is returned when evaluation is requested without a
// reference answer to judge against.
var ErrMissingReference = errors.New("reference answer is missing")

// Encoder maps text to a fixed-dimension dense vector. Implementations
// wrap an embedding model (local or remote); the model handle behind an
// Encoder is expected to be loaded once per process and shared read-only.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Result is the outcome of one evaluation. Degraded marks results computed
// by the token-overlap fallback instead of the embedding model.
type Result struct {
	SimilarityScore float64      `json:"similarity_score"`
	IsCorrect       bool         `json:"is_correct"`
	FeedbackTier    FeedbackTier `json:"feedback_tier"`
	Feedback        string       `json:"feedback"`
	Degraded        bool         `json:"degraded"`
}

// Evaluator judges student answers against reference definitions.
type Evaluator struct {
	encoder Encoder
	logger  *slog.Logger

	// defaultThreshold is applied when a caller passes a threshold <= 0.
	defaultThreshold float64
}

// NewEvaluator creates an Evaluator over the given encoder. A nil encoder
// is allowed and makes every evaluation use the degraded fallback; this is
// how deployments without an embedding model run. If log is nil, a default
// logger will be used.
func NewEvaluator(encoder Encoder, defaultThreshold float64, log *slog.Logger) *Evaluator {
	if defaultThreshold <= 0 || defaultThreshold > 1 {
		defaultThreshold = ThresholdModerate
	}
	if log == nil {
		log = slog.Default()
	}

	return &Evaluator{
		encoder:          encoder,
		logger:           log.With(slog.String("component", "evaluator")),
		defaultThreshold: defaultThreshold,
	}
}

// Evaluate judges studentAnswer against referenceAnswer. threshold <= 0
// selects the evaluator's default. The only error condition is a missing
// reference answer; encoder failures are absorbed into a degraded result.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	studentAnswer, referenceAnswer string,
	threshold float64,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	reference := strings.TrimSpace(referenceAnswer)
	if reference == "" {
		return nil, ErrMissingReference
	}

	if threshold <= 0 || threshold > 1 {
		threshold = e.defaultThreshold
	}

	// A blank answer needs no model call to judge.
	student := strings.TrimSpace(studentAnswer)
	if student == "" {
		return e.buildResult(0, threshold, reference, false), nil
	}

	score, degraded := e.similarity(ctx, log, student, reference)
	return e.buildResult(score, threshold, reference, degraded), nil
}

// similarity computes the semantic similarity of the two texts, falling
// back to token overlap when the encoder is absent or fails.
func (e *Evaluator) similarity(
	ctx context.Context,
	log *slog.Logger,
	student, reference string,
) (float64, bool) {
	if e.encoder == nil {
		return tokenOverlap(student, reference), true
	}

	studentVec, err := e.encoder.Encode(ctx, student)
	if err != nil {
		log.Warn("encoder failed for student answer, using token overlap",
			slog.String("error", err.Error()))
		return tokenOverlap(student, reference), true
	}

	referenceVec, err := e.encoder.Encode(ctx, reference)
	if err != nil {
		log.Warn("encoder failed for reference answer, using token overlap",
			slog.String("error", err.Error()))
		return tokenOverlap(student, reference), true
	}

	return clampUnit(cosine(studentVec, referenceVec)), false
}

func (e *Evaluator) buildResult(score, threshold float64, reference string, degraded bool) *Result {
	tier := tierFor(score)
	return &Result{
		SimilarityScore: score,
		IsCorrect:       score >= threshold,
		FeedbackTier:    tier,
		Feedback:        feedbackFor(tier, reference),
		Degraded:        degraded,
	}
}

// tierFor maps a similarity score to a feedback tier.
func tierFor(score float64) FeedbackTier {
	switch {
	case score >= tierExcellentCutoff:
		return TierExcellent
	case score >= tierGoodCutoff:
		return TierGood
	case score >= tierPartialCutoff:
		return TierPartial
	default:
		return TierIncorrect
	}
}

// feedbackFor produces the learner-facing message for a tier. The
// incorrect tier shows the reference answer so the learner can study it.
func feedbackFor(tier FeedbackTier, reference string) string {
	switch tier {
	case TierExcellent:
		return "Excellent! Your answer captures the definition."
	case TierGood:
		return "Good answer."
	case TierPartial:
		return "Partially correct. Review the reference definition."
	default:
		return fmt.Sprintf("Not quite. Reference answer: %s", reference)
	}
}

// cosine computes the cosine similarity of two vectors, accumulating in
// float64. Mismatched or empty vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// clampUnit clamps a similarity value into [0,1]. Cosine of arbitrary
// vectors ranges over [-1,1]; anti-aligned answers are simply wrong.
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// tokenOverlap is the degraded similarity heuristic: Jaccard overlap of
// the normalized token sets of the two texts.
func tokenOverlap(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersection := 0
	for token := range tokensA {
		if tokensB[token] {
			intersection++
		}
	}

	union := len(tokensA) + len(tokensB) - intersection
	return float64(intersection) / float64(union)
}

// tokenSet lowercases the text, strips everything but letters and digits,
// and returns the set of remaining tokens.
func tokenSet(text string) map[string]bool {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	set := make(map[string]bool)
	for _, token := range strings.Fields(normalized) {
		set[token] = true
	}
	return set
}
