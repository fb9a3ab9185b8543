package mastery

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexidrill/lexidrill-api/internal/domain"
)

func TestSnapshotForValidation(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	userID, termID := uuid.New(), uuid.New()

	t.Run("empty user ID", func(t *testing.T) {
		_, err := svc.SnapshotFor(uuid.Nil, termID, nil)
		assert.ErrorIs(t, err, ErrInvalidUserTerm)
	})

	t.Run("empty term ID", func(t *testing.T) {
		_, err := svc.SnapshotFor(userID, uuid.Nil, nil)
		assert.ErrorIs(t, err, ErrInvalidUserTerm)
	})

	t.Run("nil attempt in log", func(t *testing.T) {
		_, err := svc.SnapshotFor(userID, termID, []*domain.Attempt{nil})
		assert.ErrorIs(t, err, ErrNilAttempt)
	})

	t.Run("attempt for another term", func(t *testing.T) {
		attempts := makeAttempts(userID, uuid.New(), []float64{0.5}, []bool{false})
		_, err := svc.SnapshotFor(userID, termID, attempts)
		assert.ErrorIs(t, err, ErrMismatchedTerm)
	})

	t.Run("attempt for another user", func(t *testing.T) {
		attempts := makeAttempts(uuid.New(), termID, []float64{0.5}, []bool{false})
		_, err := svc.SnapshotFor(userID, termID, attempts)
		assert.ErrorIs(t, err, ErrMismatchedUser)
	})
}

func TestSnapshotForOrdersAttempts(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	userID, termID := uuid.New(), uuid.New()

	attempts := makeAttempts(userID, termID,
		[]float64{0.2, 0.95, 0.4},
		[]bool{false, true, false})

	// Shuffle: pass the log out of order; the service must sort by
	// attempt number before computing.
	shuffled := []*domain.Attempt{attempts[2], attempts[0], attempts[1]}

	ordered, err := svc.SnapshotFor(userID, termID, attempts)
	require.NoError(t, err)

	fromShuffled, err := svc.SnapshotFor(userID, termID, shuffled)
	require.NoError(t, err)

	assert.Equal(t, ordered.Level, fromShuffled.Level)
	assert.Equal(t, ordered.Score, fromShuffled.Score)
	assert.Equal(t, ordered.AttemptsCount, fromShuffled.AttemptsCount)

	// Input slice order is preserved.
	assert.Equal(t, 3, shuffled[0].AttemptNumber)
}

func TestSnapshotForCustomParams(t *testing.T) {
	t.Parallel()
	svc := NewServiceWithParams(NewParams(ParamsConfig{
		MasteredCutoff: 0.99,
	}))
	userID, termID := uuid.New(), uuid.New()

	attempts := makeAttempts(userID, termID, []float64{0.95}, []bool{true})

	snapshot, err := svc.SnapshotFor(userID, termID, attempts)
	require.NoError(t, err)

	// 0.95 is mastered under defaults but only proficient under the
	// stricter cutoff.
	assert.Equal(t, domain.MasteryProficient, snapshot.Level)
}
