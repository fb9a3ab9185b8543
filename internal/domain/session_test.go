package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuizSession(t *testing.T) {
	t.Parallel()
	userID, domainID := uuid.New(), uuid.New()
	terms := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	session, err := NewQuizSession(userID, domainID, terms)
	require.NoError(t, err)

	assert.Equal(t, SessionStatusActive, session.Status)
	assert.Equal(t, 0, session.CurrentIndex)
	assert.Equal(t, terms, session.TermSequence)
	assert.Equal(t, 1, session.Version)
	assert.Nil(t, session.CompletedAt)
	assert.False(t, session.IsTerminal())

	current, ok := session.CurrentTermID()
	require.True(t, ok)
	assert.Equal(t, terms[0], current)
	assert.Equal(t, terms, session.RemainingTerms())
}

func TestNewQuizSessionValidation(t *testing.T) {
	t.Parallel()
	userID, domainID := uuid.New(), uuid.New()
	terms := []uuid.UUID{uuid.New()}

	testCases := []struct {
		name     string
		userID   uuid.UUID
		domainID uuid.UUID
		terms    []uuid.UUID
		wantErr  error
	}{
		{"missing user", uuid.Nil, domainID, terms, ErrSessionUserIDEmpty},
		{"missing domain", userID, uuid.Nil, terms, ErrSessionDomainIDEmpty},
		{"no terms", userID, domainID, nil, ErrSessionNoTerms},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewQuizSession(tc.userID, tc.domainID, tc.terms)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSessionCursorAtEnd(t *testing.T) {
	t.Parallel()
	session, err := NewQuizSession(uuid.New(), uuid.New(), []uuid.UUID{uuid.New()})
	require.NoError(t, err)

	session.CurrentIndex = 1
	session.Status = SessionStatusCompleted

	require.NoError(t, session.Validate())
	assert.True(t, session.IsTerminal())

	_, ok := session.CurrentTermID()
	assert.False(t, ok)
	assert.Nil(t, session.RemainingTerms())
}

func TestSessionIndexRange(t *testing.T) {
	t.Parallel()
	session, err := NewQuizSession(uuid.New(), uuid.New(), []uuid.UUID{uuid.New(), uuid.New()})
	require.NoError(t, err)

	session.CurrentIndex = 3
	assert.ErrorIs(t, session.Validate(), ErrSessionIndexRange)

	session.CurrentIndex = -1
	assert.ErrorIs(t, session.Validate(), ErrSessionIndexRange)
}
