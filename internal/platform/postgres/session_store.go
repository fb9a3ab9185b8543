package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
	"github.com/lexidrill/lexidrill-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface using a
// PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create.
// Returns store.ErrInvalidEntity wrapping the validation error if the
// session data is invalid.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.QuizSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	sequence, err := json.Marshal(session.TermSequence)
	if err != nil {
		return fmt.Errorf("failed to encode term sequence: %w", err)
	}

	query := `
		INSERT INTO quiz_sessions
			(id, user_id, domain_id, status, term_sequence, current_index,
			 version, started_at, completed_at, paused_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.DomainID,
		session.Status,
		sequence,
		session.CurrentIndex,
		session.Version,
		session.StartedAt,
		session.CompletedAt,
		session.PausedAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create quiz session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()))
		return fmt.Errorf("failed to create quiz session: %w", MapError(err))
	}

	log.Info("quiz session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.String("domain_id", session.DomainID.String()),
		slog.Int("term_count", len(session.TermSequence)))
	return nil
}

// GetByID implements store.SessionStore.GetByID.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, domain_id, status, term_sequence, current_index,
		       version, started_at, completed_at, paused_at, created_at, updated_at
		FROM quiz_sessions
		WHERE id = $1
	`

	var session domain.QuizSession
	var status string
	var sequence []byte
	var completedAt, pausedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.DomainID,
		&status,
		&sequence,
		&session.CurrentIndex,
		&session.Version,
		&session.StartedAt,
		&completedAt,
		&pausedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("quiz session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}

		log.Error("failed to get quiz session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, fmt.Errorf("failed to get quiz session: %w", MapError(err))
	}

	session.Status = domain.SessionStatus(status)
	if err := json.Unmarshal(sequence, &session.TermSequence); err != nil {
		return nil, fmt.Errorf("failed to decode term sequence: %w", err)
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	if pausedAt.Valid {
		session.PausedAt = &pausedAt.Time
	}

	return &session, nil
}

// Update implements store.SessionStore.Update.
//
// The write is guarded by an optimistic version check: the row is only
// updated when its stored version matches session.Version. A zero-row
// result is disambiguated with a follow-up existence check so callers can
// tell a vanished session from a lost race.
func (s *PostgresSessionStore) Update(ctx context.Context, session *domain.QuizSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during update",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE quiz_sessions
		SET status = $1,
		    current_index = $2,
		    completed_at = $3,
		    paused_at = $4,
		    updated_at = $5,
		    version = version + 1
		WHERE id = $6 AND version = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		session.Status,
		session.CurrentIndex,
		session.CompletedAt,
		session.PausedAt,
		session.UpdatedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		log.Error("failed to update quiz session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("failed to update quiz session: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		existsQuery := `SELECT EXISTS(SELECT 1 FROM quiz_sessions WHERE id = $1)`
		if err := s.db.QueryRowContext(ctx, existsQuery, session.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check session existence: %w", MapError(err))
		}
		if !exists {
			return store.ErrSessionNotFound
		}

		log.Warn("quiz session version conflict",
			slog.String("session_id", session.ID.String()),
			slog.Int("expected_version", session.Version))
		return store.ErrConcurrentModification
	}

	session.Version++
	return nil
}

// WithTxSessionStore implements store.SessionStore.WithTxSessionStore.
func (s *PostgresSessionStore) WithTxSessionStore(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}
