package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttempt(t *testing.T) {
	t.Parallel()
	userID, termID, sessionID := uuid.New(), uuid.New(), uuid.New()

	attempt, err := NewAttempt(userID, termID, sessionID,
		"virtual servers in the cloud", "Elastic Compute Cloud, resizable virtual servers.",
		true, 0.92, 1, "excellent", false)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, attempt.ID)
	assert.True(t, attempt.IsCorrect)
	assert.Equal(t, 0.92, attempt.SimilarityScore)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.False(t, attempt.Degraded)
	assert.False(t, attempt.CreatedAt.IsZero())
}

func TestNewAttemptValidation(t *testing.T) {
	t.Parallel()
	userID, termID, sessionID := uuid.New(), uuid.New(), uuid.New()

	testCases := []struct {
		name    string
		mutate  func(*Attempt)
		wantErr error
	}{
		{
			name:    "missing user",
			mutate:  func(a *Attempt) { a.UserID = uuid.Nil },
			wantErr: ErrAttemptUserIDEmpty,
		},
		{
			name:    "missing term",
			mutate:  func(a *Attempt) { a.TermID = uuid.Nil },
			wantErr: ErrAttemptTermIDEmpty,
		},
		{
			name:    "missing session",
			mutate:  func(a *Attempt) { a.SessionID = uuid.Nil },
			wantErr: ErrAttemptSessionIDEmpty,
		},
		{
			name:    "empty reference answer",
			mutate:  func(a *Attempt) { a.ReferenceAnswer = "" },
			wantErr: ErrAttemptNoReference,
		},
		{
			name:    "score above 1",
			mutate:  func(a *Attempt) { a.SimilarityScore = 1.2 },
			wantErr: ErrInvalidSimilarityScore,
		},
		{
			name:    "negative score",
			mutate:  func(a *Attempt) { a.SimilarityScore = -0.1 },
			wantErr: ErrInvalidSimilarityScore,
		},
		{
			name:    "zero attempt number",
			mutate:  func(a *Attempt) { a.AttemptNumber = 0 },
			wantErr: ErrAttemptNumberInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			attempt, err := NewAttempt(userID, termID, sessionID,
				"a", "ref", false, 0.4, 1, "partial", false)
			require.NoError(t, err)

			tc.mutate(attempt)
			assert.ErrorIs(t, attempt.Validate(), tc.wantErr)
		})
	}
}
