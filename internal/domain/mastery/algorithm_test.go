package mastery

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
)

func makeAttempts(userID, termID uuid.UUID, scores []float64, correct []bool) []*domain.Attempt {
	attempts := make([]*domain.Attempt, len(scores))
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := range scores {
		attempts[i] = &domain.Attempt{
			ID:              uuid.New(),
			UserID:          userID,
			TermID:          termID,
			SessionID:       uuid.New(),
			StudentAnswer:   "answer",
			ReferenceAnswer: "reference",
			IsCorrect:       correct[i],
			SimilarityScore: scores[i],
			AttemptNumber:   i + 1,
			Feedback:        "good",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
	}
	return attempts
}

func TestLevelForBest(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		best     float64
		attempts int
		expected domain.MasteryLevel
	}{
		{
			name:     "no attempts means not attempted regardless of score",
			best:     0.95,
			attempts: 0,
			expected: domain.MasteryNotAttempted,
		},
		{
			name:     "best below developing cutoff needs practice",
			best:     0.49,
			attempts: 3,
			expected: domain.MasteryNeedsPractice,
		},
		{
			name:     "best at developing cutoff is developing",
			best:     0.5,
			attempts: 1,
			expected: domain.MasteryDeveloping,
		},
		{
			name:     "best at proficient cutoff is proficient",
			best:     0.7,
			attempts: 2,
			expected: domain.MasteryProficient,
		},
		{
			name:     "best just under mastered cutoff stays proficient",
			best:     0.899,
			attempts: 4,
			expected: domain.MasteryProficient,
		},
		{
			name:     "best at mastered cutoff is mastered",
			best:     0.9,
			attempts: 1,
			expected: domain.MasteryMastered,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := levelForBest(tc.best, tc.attempts, params)
			if got != tc.expected {
				t.Errorf("Expected level %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestRecentWeightedAccuracy(t *testing.T) {
	t.Parallel()
	userID, termID := uuid.New(), uuid.New()

	testCases := []struct {
		name     string
		correct  []bool
		window   int
		expected float64
	}{
		{
			name:     "all correct is 1",
			correct:  []bool{true, true, true},
			window:   5,
			expected: 1.0,
		},
		{
			name:     "all wrong is 0",
			correct:  []bool{false, false},
			window:   5,
			expected: 0.0,
		},
		{
			name:    "newer attempts weigh heavier",
			correct: []bool{false, true},
			window:  5,
			// weights 1,2 -> 2/3
			expected: 2.0 / 3.0,
		},
		{
			name:    "window drops old attempts",
			correct: []bool{false, false, false, true, true},
			window:  2,
			// only last two count, both correct
			expected: 1.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scores := make([]float64, len(tc.correct))
			attempts := makeAttempts(userID, termID, scores, tc.correct)

			got := recentWeightedAccuracy(attempts, tc.window)
			if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Expected accuracy %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestCalculateSnapshotBands(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	userID, termID := uuid.New(), uuid.New()

	testCases := []struct {
		name     string
		scores   []float64
		correct  []bool
		expected domain.MasteryLevel
	}{
		{
			name:     "single high-similarity attempt masters the term",
			scores:   []float64{0.95},
			correct:  []bool{true},
			expected: domain.MasteryMastered,
		},
		{
			name:     "single low-similarity attempt needs practice",
			scores:   []float64{0.3},
			correct:  []bool{false},
			expected: domain.MasteryNeedsPractice,
		},
		{
			name:     "bad attempts after a mastering one do not demote",
			scores:   []float64{0.95, 0.1, 0.2},
			correct:  []bool{true, false, false},
			expected: domain.MasteryMastered,
		},
		{
			name:     "best of many mediocre attempts drives the band",
			scores:   []float64{0.4, 0.55, 0.62},
			correct:  []bool{false, true, true},
			expected: domain.MasteryDeveloping,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			attempts := makeAttempts(userID, termID, tc.scores, tc.correct)
			snapshot := calculateSnapshot(userID, termID, attempts, params)

			if snapshot.Level != tc.expected {
				t.Errorf("Expected level %s, got %s", tc.expected, snapshot.Level)
			}
			if snapshot.AttemptsCount != len(tc.scores) {
				t.Errorf("Expected %d attempts, got %d", len(tc.scores), snapshot.AttemptsCount)
			}
		})
	}
}

// TestScoreMonotonicity checks the core invariant: recomputing the snapshot
// over any longer prefix of the same attempt log never lowers the score.
func TestScoreMonotonicity(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	userID, termID := uuid.New(), uuid.New()

	rng := rand.New(rand.NewSource(42))
	const streams = 50
	const length = 30

	for s := 0; s < streams; s++ {
		scores := make([]float64, length)
		correct := make([]bool, length)
		for i := range scores {
			scores[i] = rng.Float64()
			correct[i] = scores[i] >= 0.7
		}
		attempts := makeAttempts(userID, termID, scores, correct)

		prev := 0.0
		for n := 0; n <= length; n++ {
			snapshot := calculateSnapshot(userID, termID, attempts[:n], params)
			if snapshot.Score < prev {
				t.Fatalf("score regressed at prefix %d: %v < %v (stream %d)",
					n, snapshot.Score, prev, s)
			}
			if snapshot.Score < 0 || snapshot.Score > 1 {
				t.Fatalf("score out of range at prefix %d: %v", n, snapshot.Score)
			}
			prev = snapshot.Score
		}
	}
}

func TestCalculateSnapshotEmptyLog(t *testing.T) {
	t.Parallel()
	userID, termID := uuid.New(), uuid.New()

	snapshot := calculateSnapshot(userID, termID, nil, NewDefaultParams())

	if snapshot.Level != domain.MasteryNotAttempted {
		t.Errorf("Expected not_attempted, got %s", snapshot.Level)
	}
	if snapshot.Score != 0 {
		t.Errorf("Expected score 0, got %v", snapshot.Score)
	}
	if snapshot.AttemptsCount != 0 {
		t.Errorf("Expected 0 attempts, got %d", snapshot.AttemptsCount)
	}
	if snapshot.LastAttemptAt != nil {
		t.Errorf("Expected nil LastAttemptAt, got %v", snapshot.LastAttemptAt)
	}
}
