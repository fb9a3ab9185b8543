package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEncoder maps known texts to fixed vectors and counts calls.
type fakeEncoder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return vec, nil
}

func TestEvaluateCorrectness(t *testing.T) {
	t.Parallel()

	encoder := &fakeEncoder{vectors: map[string][]float32{
		"object storage":            {1, 0, 0},
		"durable object storage":    {0.96, 0.28, 0},
		"a kind of database engine": {0, 1, 0},
	}}
	eval := NewEvaluator(encoder, ThresholdModerate, nil)

	testCases := []struct {
		name        string
		student     string
		threshold   float64
		wantCorrect bool
		wantTier    FeedbackTier
	}{
		{
			name:        "near-identical answer is excellent",
			student:     "durable object storage",
			threshold:   ThresholdModerate,
			wantCorrect: true,
			wantTier:    TierExcellent,
		},
		{
			name:        "orthogonal answer is incorrect",
			student:     "a kind of database engine",
			threshold:   ThresholdModerate,
			wantCorrect: false,
			wantTier:    TierIncorrect,
		},
		{
			name:        "default threshold used when zero",
			student:     "durable object storage",
			threshold:   0,
			wantCorrect: true,
			wantTier:    TierExcellent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := eval.Evaluate(context.Background(), tc.student, "object storage", tc.threshold)
			require.NoError(t, err)

			assert.Equal(t, tc.wantCorrect, result.IsCorrect)
			assert.Equal(t, tc.wantTier, result.FeedbackTier)
			assert.False(t, result.Degraded)
			assert.GreaterOrEqual(t, result.SimilarityScore, 0.0)
			assert.LessOrEqual(t, result.SimilarityScore, 1.0)
		})
	}
}

func TestEvaluateEmptyStudentAnswerSkipsModel(t *testing.T) {
	t.Parallel()

	encoder := &fakeEncoder{vectors: map[string][]float32{}}
	eval := NewEvaluator(encoder, ThresholdModerate, nil)

	for _, answer := range []string{"", "   ", "\n\t"} {
		result, err := eval.Evaluate(context.Background(), answer, "object storage", ThresholdModerate)
		require.NoError(t, err)

		assert.Equal(t, 0.0, result.SimilarityScore)
		assert.False(t, result.IsCorrect)
		assert.Equal(t, TierIncorrect, result.FeedbackTier)
		assert.False(t, result.Degraded)
	}

	assert.Equal(t, 0, encoder.calls, "blank answers must not touch the model")
}

func TestEvaluateMissingReference(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(&fakeEncoder{}, ThresholdModerate, nil)

	for _, reference := range []string{"", "   "} {
		_, err := eval.Evaluate(context.Background(), "some answer", reference, ThresholdModerate)
		assert.ErrorIs(t, err, ErrMissingReference)
	}
}

func TestEvaluateDegradesOnEncoderFailure(t *testing.T) {
	t.Parallel()

	encoder := &fakeEncoder{err: errors.New("model unavailable")}
	eval := NewEvaluator(encoder, ThresholdModerate, nil)

	result, err := eval.Evaluate(context.Background(),
		"elastic compute cloud servers", "Elastic Compute Cloud, virtual servers.", ThresholdLenient)
	require.NoError(t, err, "degradation must never surface as an error")

	assert.True(t, result.Degraded)
	assert.Greater(t, result.SimilarityScore, 0.0, "overlapping tokens must score above zero")
}

func TestEvaluateNilEncoderAlwaysDegrades(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(nil, ThresholdModerate, nil)

	result, err := eval.Evaluate(context.Background(), "object storage", "object storage", 0)
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, 1.0, result.SimilarityScore, "identical token sets overlap fully")
	assert.True(t, result.IsCorrect)
}

// TestEvaluateDeterminism checks property: identical inputs yield identical
// scores.
func TestEvaluateDeterminism(t *testing.T) {
	t.Parallel()

	encoder := &fakeEncoder{vectors: map[string][]float32{
		"answer": {0.3, 0.4, 0.5},
		"ref":    {0.1, 0.9, 0.2},
	}}
	eval := NewEvaluator(encoder, ThresholdModerate, nil)

	first, err := eval.Evaluate(context.Background(), "answer", "ref", ThresholdModerate)
	require.NoError(t, err)
	second, err := eval.Evaluate(context.Background(), "answer", "ref", ThresholdModerate)
	require.NoError(t, err)

	assert.Equal(t, first.SimilarityScore, second.SimilarityScore)
	assert.Equal(t, first.IsCorrect, second.IsCorrect)
}

// TestEvaluateSymmetry checks that two semantically equivalent answers
// (modeled as near-identical embeddings) score within epsilon of each
// other against the same reference.
func TestEvaluateSymmetry(t *testing.T) {
	t.Parallel()

	encoder := &fakeEncoder{vectors: map[string][]float32{
		"paraphrase one": {0.70000, 0.30000, 0.1},
		"paraphrase two": {0.70001, 0.29999, 0.1},
		"reference":      {0.5, 0.5, 0.5},
	}}
	eval := NewEvaluator(encoder, ThresholdModerate, nil)

	one, err := eval.Evaluate(context.Background(), "paraphrase one", "reference", ThresholdModerate)
	require.NoError(t, err)
	two, err := eval.Evaluate(context.Background(), "paraphrase two", "reference", ThresholdModerate)
	require.NoError(t, err)

	assert.InDelta(t, one.SimilarityScore, two.SimilarityScore, 1e-3)
}

func TestTierFeedback(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		score float64
		tier  FeedbackTier
	}{
		{0.95, TierExcellent},
		{0.9, TierExcellent},
		{0.89, TierGood},
		{0.7, TierGood},
		{0.69, TierPartial},
		{0.5, TierPartial},
		{0.49, TierIncorrect},
		{0.0, TierIncorrect},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.tier, tierFor(tc.score), "score %v", tc.score)
	}

	// The incorrect tier must expose the reference answer.
	feedback := feedbackFor(TierIncorrect, "the reference definition")
	assert.True(t, strings.Contains(feedback, "the reference definition"))
}

func TestCosine(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{1, 2}, []float32{1, 2, 3}), "mismatched dims")
	assert.Equal(t, 0.0, cosine(nil, []float32{1}), "empty vector")
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}), "zero norm")
}

func TestTokenOverlap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, tokenOverlap("Object Storage!", "object storage"))
	assert.Equal(t, 0.0, tokenOverlap("alpha beta", "gamma delta"))
	assert.InDelta(t, 1.0/3.0, tokenOverlap("alpha beta", "beta gamma"), 1e-9)
	assert.Equal(t, 0.0, tokenOverlap("...", "object storage"), "punctuation only")
}
