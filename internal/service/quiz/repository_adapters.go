package quiz

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/store"
)

// SessionRepository defines the interface for repositories that can provide
// quiz session data and support transactions.
type SessionRepository interface {
	// Create saves a new quiz session.
	Create(ctx context.Context, session *domain.QuizSession) error

	// GetByID retrieves a session by its unique ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuizSession, error)

	// Update persists the session's mutable fields under an optimistic
	// version check.
	Update(ctx context.Context, session *domain.QuizSession) error

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SessionRepository

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// AttemptRepository defines the interface for repositories that can provide
// attempt-log data and support transactions.
type AttemptRepository interface {
	// Create appends a new attempt to the log.
	Create(ctx context.Context, attempt *domain.Attempt) error

	// ListBySession retrieves all attempts recorded for one session.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error)

	// CountByUserAndTerm returns how many attempts the user has recorded
	// against the term.
	CountByUserAndTerm(ctx context.Context, userID, termID uuid.UUID) (int, error)

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AttemptRepository
}

// NewSessionRepositoryAdapter creates a new adapter that allows a
// store.SessionStore to be used where a SessionRepository is expected.
func NewSessionRepositoryAdapter(sessionStore store.SessionStore, db *sql.DB) SessionRepository {
	return &sessionRepositoryAdapter{
		sessionStore: sessionStore,
		db:           db,
	}
}

// sessionRepositoryAdapter adapts a store.SessionStore to the SessionRepository interface
type sessionRepositoryAdapter struct {
	sessionStore store.SessionStore
	db           *sql.DB
}

// Create implements SessionRepository.Create
func (a *sessionRepositoryAdapter) Create(ctx context.Context, session *domain.QuizSession) error {
	return a.sessionStore.Create(ctx, session)
}

// GetByID implements SessionRepository.GetByID
func (a *sessionRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuizSession, error) {
	return a.sessionStore.GetByID(ctx, id)
}

// Update implements SessionRepository.Update
func (a *sessionRepositoryAdapter) Update(ctx context.Context, session *domain.QuizSession) error {
	return a.sessionStore.Update(ctx, session)
}

// WithTx implements SessionRepository.WithTx
func (a *sessionRepositoryAdapter) WithTx(tx *sql.Tx) SessionRepository {
	return &sessionRepositoryAdapter{
		sessionStore: a.sessionStore.WithTxSessionStore(tx),
		db:           a.db,
	}
}

// DB implements SessionRepository.DB
func (a *sessionRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// NewAttemptRepositoryAdapter creates a new adapter that allows a
// store.AttemptStore to be used where an AttemptRepository is expected.
func NewAttemptRepositoryAdapter(attemptStore store.AttemptStore) AttemptRepository {
	return &attemptRepositoryAdapter{
		attemptStore: attemptStore,
	}
}

// attemptRepositoryAdapter adapts a store.AttemptStore to the AttemptRepository interface
type attemptRepositoryAdapter struct {
	attemptStore store.AttemptStore
}

// Create implements AttemptRepository.Create
func (a *attemptRepositoryAdapter) Create(ctx context.Context, attempt *domain.Attempt) error {
	return a.attemptStore.Create(ctx, attempt)
}

// ListBySession implements AttemptRepository.ListBySession
func (a *attemptRepositoryAdapter) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error) {
	return a.attemptStore.ListBySession(ctx, sessionID)
}

// CountByUserAndTerm implements AttemptRepository.CountByUserAndTerm
func (a *attemptRepositoryAdapter) CountByUserAndTerm(ctx context.Context, userID, termID uuid.UUID) (int, error) {
	return a.attemptStore.CountByUserAndTerm(ctx, userID, termID)
}

// WithTx implements AttemptRepository.WithTx
func (a *attemptRepositoryAdapter) WithTx(tx *sql.Tx) AttemptRepository {
	return &attemptRepositoryAdapter{
		attemptStore: a.attemptStore.WithTxAttemptStore(tx),
	}
}
