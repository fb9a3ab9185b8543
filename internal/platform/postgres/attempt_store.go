package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
	"github.com/lexidrill/lexidrill-api/internal/store"
)

// PostgresAttemptStore implements the store.AttemptStore interface using a
// PostgreSQL database as the storage backend. Attempts are append-only;
// the table has no update path.
type PostgresAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAttemptStore creates a new PostgreSQL implementation of the
// AttemptStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAttemptStore(db store.DBTX, logger *slog.Logger) *PostgresAttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "attempt_store")),
	}
}

// Ensure PostgresAttemptStore implements store.AttemptStore interface
var _ store.AttemptStore = (*PostgresAttemptStore)(nil)

const attemptColumns = `id, user_id, term_id, session_id, student_answer,
	reference_answer, is_correct, similarity_score, attempt_number,
	feedback, degraded, created_at`

// Create implements store.AttemptStore.Create.
// Returns store.ErrInvalidEntity wrapping the validation error if the
// attempt data is invalid, and store.ErrDuplicate if the attempt number
// is already taken for this user and term.
func (s *PostgresAttemptStore) Create(ctx context.Context, attempt *domain.Attempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		log.Warn("attempt validation failed during create",
			slog.String("error", err.Error()),
			slog.String("attempt_id", attempt.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO attempts
			(id, user_id, term_id, session_id, student_answer, reference_answer,
			 is_correct, similarity_score, attempt_number, feedback, degraded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		attempt.ID,
		attempt.UserID,
		attempt.TermID,
		attempt.SessionID,
		attempt.StudentAnswer,
		attempt.ReferenceAnswer,
		attempt.IsCorrect,
		attempt.SimilarityScore,
		attempt.AttemptNumber,
		attempt.Feedback,
		attempt.Degraded,
		attempt.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create attempt",
			slog.String("error", err.Error()),
			slog.String("attempt_id", attempt.ID.String()),
			slog.String("term_id", attempt.TermID.String()))
		return fmt.Errorf("failed to create attempt: %w", MapError(err))
	}

	log.Debug("attempt recorded",
		slog.String("attempt_id", attempt.ID.String()),
		slog.String("session_id", attempt.SessionID.String()),
		slog.String("term_id", attempt.TermID.String()),
		slog.Int("attempt_number", attempt.AttemptNumber),
		slog.Bool("is_correct", attempt.IsCorrect))
	return nil
}

// ListBySession implements store.AttemptStore.ListBySession.
func (s *PostgresAttemptStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM attempts
		WHERE session_id = $1
		ORDER BY created_at, id
	`, attemptColumns)

	return s.queryAttempts(ctx, query, sessionID)
}

// ListByUserAndTerm implements store.AttemptStore.ListByUserAndTerm.
func (s *PostgresAttemptStore) ListByUserAndTerm(ctx context.Context, userID, termID uuid.UUID) ([]*domain.Attempt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM attempts
		WHERE user_id = $1 AND term_id = $2
		ORDER BY attempt_number
	`, attemptColumns)

	return s.queryAttempts(ctx, query, userID, termID)
}

// ListByUserAndTerms implements store.AttemptStore.ListByUserAndTerms.
// One query covers the whole term set; the result map omits terms without
// attempts.
func (s *PostgresAttemptStore) ListByUserAndTerms(
	ctx context.Context,
	userID uuid.UUID,
	termIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.Attempt, error) {
	result := make(map[uuid.UUID][]*domain.Attempt)
	if len(termIDs) == 0 {
		return result, nil
	}

	// Expand one placeholder per term ID. Term sets are bounded by domain
	// size, so the query stays small.
	placeholders := make([]string, len(termIDs))
	args := make([]interface{}, 0, len(termIDs)+1)
	args = append(args, userID)
	for i, termID := range termIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, termID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM attempts
		WHERE user_id = $1 AND term_id IN (%s)
		ORDER BY term_id, attempt_number
	`, attemptColumns, strings.Join(placeholders, ", "))

	attempts, err := s.queryAttempts(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	for _, attempt := range attempts {
		result[attempt.TermID] = append(result[attempt.TermID], attempt)
	}
	return result, nil
}

// CountByUserAndTerm implements store.AttemptStore.CountByUserAndTerm.
func (s *PostgresAttemptStore) CountByUserAndTerm(ctx context.Context, userID, termID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM attempts
		WHERE user_id = $1 AND term_id = $2
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, termID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", MapError(err))
	}
	return count, nil
}

// WithTxAttemptStore implements store.AttemptStore.WithTxAttemptStore.
func (s *PostgresAttemptStore) WithTxAttemptStore(tx *sql.Tx) store.AttemptStore {
	return &PostgresAttemptStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresAttemptStore) queryAttempts(ctx context.Context, query string, args ...interface{}) ([]*domain.Attempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query attempts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query attempts: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var attempts []*domain.Attempt
	for rows.Next() {
		var attempt domain.Attempt
		err := rows.Scan(
			&attempt.ID,
			&attempt.UserID,
			&attempt.TermID,
			&attempt.SessionID,
			&attempt.StudentAnswer,
			&attempt.ReferenceAnswer,
			&attempt.IsCorrect,
			&attempt.SimilarityScore,
			&attempt.AttemptNumber,
			&attempt.Feedback,
			&attempt.Degraded,
			&attempt.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", MapError(err))
		}
		attempts = append(attempts, &attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempt rows: %w", MapError(err))
	}

	return attempts, nil
}
