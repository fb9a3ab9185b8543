// Package tree provides read access to the content hierarchy: domains at
// the root, optional category layers below, terms at the leaves. The quiz
// and progress subsystems consume this package; they never mutate nodes.
package tree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
	"github.com/lexidrill/lexidrill-api/internal/store"
)

// ErrInvalidHierarchy indicates a structural violation in the content tree:
// a traversal target that is not a domain node, a term outside any domain,
// or a parent/child cycle.
var ErrInvalidHierarchy = errors.New("invalid content hierarchy")

// Service exposes the read operations of the content tree.
type Service interface {
	// GetNode retrieves a single node by ID.
	// Returns store.ErrNodeNotFound for unknown IDs.
	GetNode(ctx context.Context, nodeID uuid.UUID) (*domain.TreeNode, error)

	// GetChildren retrieves the direct children of a node, ordered by
	// creation time. Returns store.ErrNodeNotFound if the node itself does
	// not exist.
	GetChildren(ctx context.Context, nodeID uuid.UUID) ([]*domain.TreeNode, error)

	// GetTermsUnderDomain flattens all term nodes below the given domain,
	// regardless of intermediate category depth, in depth-first
	// left-to-right order (children ordered by creation time at each
	// level). Returns ErrInvalidHierarchy if the target is not a domain
	// node or the walk encounters a cycle.
	GetTermsUnderDomain(ctx context.Context, domainID uuid.UUID) ([]*domain.TreeNode, error)
}

type service struct {
	nodes  store.NodeStore
	logger *slog.Logger
}

// NewService creates a tree read service over the given node store.
// If log is nil, a default logger will be used.
func NewService(nodes store.NodeStore, log *slog.Logger) Service {
	if nodes == nil {
		panic("nodes cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &service{
		nodes:  nodes,
		logger: log.With(slog.String("component", "tree_service")),
	}
}

// GetNode implements Service.GetNode.
func (s *service) GetNode(ctx context.Context, nodeID uuid.UUID) (*domain.TreeNode, error) {
	node, err := s.nodes.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// GetChildren implements Service.GetChildren.
func (s *service) GetChildren(ctx context.Context, nodeID uuid.UUID) ([]*domain.TreeNode, error) {
	// Resolve the parent first so an unknown ID fails with NotFound rather
	// than an empty child list.
	if _, err := s.nodes.GetByID(ctx, nodeID); err != nil {
		return nil, err
	}

	return s.nodes.ListChildren(ctx, nodeID)
}

// GetTermsUnderDomain implements Service.GetTermsUnderDomain.
func (s *service) GetTermsUnderDomain(ctx context.Context, domainID uuid.UUID) ([]*domain.TreeNode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	root, err := s.nodes.GetByID(ctx, domainID)
	if err != nil {
		return nil, err
	}

	if root.NodeType != domain.NodeTypeDomain {
		return nil, fmt.Errorf("%w: node %s is %s, not a domain",
			ErrInvalidHierarchy, root.ID, root.NodeType)
	}

	visited := map[uuid.UUID]bool{root.ID: true}

	var terms []*domain.TreeNode
	if err := s.collectTerms(ctx, root.ID, visited, &terms); err != nil {
		return nil, err
	}

	log.Debug("flattened terms under domain",
		slog.String("domain_id", domainID.String()),
		slog.Int("term_count", len(terms)))

	return terms, nil
}

// collectTerms walks the subtree depth-first, appending term nodes in
// left-to-right order. The visited set turns an accidental cycle in the
// stored parent references into ErrInvalidHierarchy instead of an infinite
// walk.
func (s *service) collectTerms(
	ctx context.Context,
	parentID uuid.UUID,
	visited map[uuid.UUID]bool,
	terms *[]*domain.TreeNode,
) error {
	children, err := s.nodes.ListChildren(ctx, parentID)
	if err != nil {
		return err
	}

	for _, child := range children {
		if visited[child.ID] {
			return fmt.Errorf("%w: cycle through node %s", ErrInvalidHierarchy, child.ID)
		}
		visited[child.ID] = true

		switch child.NodeType {
		case domain.NodeTypeTerm:
			*terms = append(*terms, child)
		case domain.NodeTypeCategory:
			if err := s.collectTerms(ctx, child.ID, visited, terms); err != nil {
				return err
			}
		case domain.NodeTypeDomain:
			// A domain nested under another node is a malformed tree.
			return fmt.Errorf("%w: domain node %s has a parent", ErrInvalidHierarchy, child.ID)
		default:
			return fmt.Errorf("%w: node %s has unknown type %q",
				ErrInvalidHierarchy, child.ID, child.NodeType)
		}
	}

	return nil
}
