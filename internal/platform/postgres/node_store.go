package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
	"github.com/lexidrill/lexidrill-api/internal/store"
)

// PostgresNodeStore implements the store.NodeStore interface using a
// PostgreSQL database as the storage backend.
type PostgresNodeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNodeStore creates a new PostgreSQL implementation of the
// NodeStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresNodeStore(db store.DBTX, logger *slog.Logger) *PostgresNodeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNodeStore{
		db:     db,
		logger: logger.With(slog.String("component", "node_store")),
	}
}

// Ensure PostgresNodeStore implements store.NodeStore interface
var _ store.NodeStore = (*PostgresNodeStore)(nil)

// GetByID implements store.NodeStore.GetByID.
// Returns store.ErrNodeNotFound if the node does not exist.
func (s *PostgresNodeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TreeNode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, parent_id, owner_id, node_type, payload, visibility,
		       version, created_at, updated_at
		FROM nodes
		WHERE id = $1
	`

	node, err := scanNode(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("node not found", slog.String("node_id", id.String()))
			return nil, store.ErrNodeNotFound
		}

		log.Error("failed to get node",
			slog.String("error", err.Error()),
			slog.String("node_id", id.String()))
		return nil, fmt.Errorf("failed to get node: %w", MapError(err))
	}

	return node, nil
}

// ListChildren implements store.NodeStore.ListChildren.
// Children come back ordered by creation time so sibling order is stable
// across calls; the quiz engine relies on this for term sequencing.
func (s *PostgresNodeStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.TreeNode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, parent_id, owner_id, node_type, payload, visibility,
		       version, created_at, updated_at
		FROM nodes
		WHERE parent_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		log.Error("failed to list children",
			slog.String("error", err.Error()),
			slog.String("parent_id", parentID.String()))
		return nil, fmt.Errorf("failed to list children: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var children []*domain.TreeNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node row: %w", MapError(err))
		}
		children = append(children, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate node rows: %w", MapError(err))
	}

	return children, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*domain.TreeNode, error) {
	var node domain.TreeNode
	var parentID uuid.NullUUID
	var nodeType, visibility string

	err := row.Scan(
		&node.ID,
		&parentID,
		&node.OwnerID,
		&nodeType,
		&node.Payload,
		&visibility,
		&node.Version,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		node.ParentID = &parentID.UUID
	}
	node.NodeType = domain.NodeType(nodeType)
	node.Visibility = domain.Visibility(visibility)

	return &node, nil
}
