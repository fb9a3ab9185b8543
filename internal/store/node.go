package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
)

// NodeStore defines the read interface for content tree persistence.
//
// The quiz and progress subsystems only ever read tree nodes; authoring
// and mutation happen through external content tooling, so no write
// methods belong here.
type NodeStore interface {
	// GetByID retrieves a tree node by its unique ID.
	// Returns ErrNodeNotFound if the node does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TreeNode, error)

	// ListChildren retrieves the direct children of the given node,
	// ordered by creation time (stable). Children are always looked up
	// through this index on parent_id; nodes never embed child lists.
	// Returns an empty slice when the node has no children.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.TreeNode, error)
}
