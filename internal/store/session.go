package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
)

// SessionStore defines the interface for quiz session persistence.
type SessionStore interface {
	// Create saves a new quiz session.
	// Returns ErrInvalidEntity wrapping the validation error if the
	// session data is invalid.
	Create(ctx context.Context, session *domain.QuizSession) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuizSession, error)

	// Update persists the session's mutable fields (status, current index,
	// timestamps) guarded by an optimistic version check: the row is only
	// written when its stored version equals session.Version, and the
	// persisted version is bumped by one. Returns ErrConcurrentModification
	// when the versions no longer match, and ErrSessionNotFound when the
	// session does not exist at all.
	//
	// On success the passed session's Version field reflects the new
	// stored version.
	Update(ctx context.Context, session *domain.QuizSession) error

	// WithTxSessionStore returns a SessionStore bound to the provided
	// transaction. Use with RunInTransaction when a session update must be
	// atomic with other writes (the submit-answer path).
	WithTxSessionStore(tx *sql.Tx) SessionStore
}
