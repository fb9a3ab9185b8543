package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
)

// AttemptStore defines the interface for attempt-log persistence.
//
// Attempts are append-only: there are deliberately no update or delete
// methods. Mastery aggregation depends on the log being immutable.
type AttemptStore interface {
	// Create appends a new attempt to the log.
	// Returns ErrInvalidEntity wrapping the validation error if the
	// attempt data is invalid.
	//
	// When the append must be atomic with a session update, run it through
	// a store obtained from WithTxAttemptStore inside RunInTransaction.
	Create(ctx context.Context, attempt *domain.Attempt) error

	// ListBySession retrieves all attempts recorded for one session,
	// ordered by creation time.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error)

	// ListByUserAndTerm retrieves all of a user's attempts at one term,
	// across every session, ordered by attempt number.
	ListByUserAndTerm(ctx context.Context, userID, termID uuid.UUID) ([]*domain.Attempt, error)

	// ListByUserAndTerms batch-retrieves a user's attempts for a set of
	// terms, keyed by term ID. Terms with no attempts are absent from the
	// result map. Used by domain-level progress aggregation to avoid one
	// query per term.
	ListByUserAndTerms(ctx context.Context, userID uuid.UUID, termIDs []uuid.UUID) (map[uuid.UUID][]*domain.Attempt, error)

	// CountByUserAndTerm returns how many attempts the user has recorded
	// against the term. Used to assign the next attempt number inside the
	// submit-answer transaction.
	CountByUserAndTerm(ctx context.Context, userID, termID uuid.UUID) (int, error)

	// WithTxAttemptStore returns an AttemptStore bound to the provided
	// transaction.
	WithTxAttemptStore(tx *sql.Tx) AttemptStore
}
