package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NodeType identifies the role a tree node plays in the content hierarchy.
type NodeType string

// Possible node type values.
const (
	NodeTypeDomain   NodeType = "domain"
	NodeTypeCategory NodeType = "category"
	NodeTypeTerm     NodeType = "term"
)

// Visibility controls who may see a tree node.
type Visibility string

// Possible visibility values.
const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Node-specific validation errors.
var (
	// ErrNodeIDEmpty is returned when a node ID is empty or nil.
	ErrNodeIDEmpty = errors.New("node ID cannot be empty")

	// ErrNodeOwnerIDEmpty is returned when a node's owner ID is empty or nil.
	ErrNodeOwnerIDEmpty = errors.New("node owner ID cannot be empty")

	// ErrDomainHasParent is returned when a domain node carries a parent
	// reference. Domain nodes are roots of the content tree.
	ErrDomainHasParent = errors.New("domain node cannot have a parent")

	// ErrNodeMissingParent is returned when a category or term node has no
	// parent reference. Only domain nodes may be roots.
	ErrNodeMissingParent = errors.New("node must have a parent")

	// ErrNodeSelfParent is returned when a node references itself as parent.
	ErrNodeSelfParent = errors.New("node cannot be its own parent")
)

// TreeNode is a single node of the content hierarchy. The structural fields
// (ID, ParentID, NodeType) are interpreted by the tree layer; Payload is an
// opaque JSONB document interpreted only by higher layers, keyed by NodeType.
//
// Children are always looked up by ParentID, never stored as an embedded
// list, so there is a single source of truth for the tree shape.
type TreeNode struct {
	ID         uuid.UUID       `json:"id"`
	ParentID   *uuid.UUID      `json:"parent_id,omitempty"`
	OwnerID    uuid.UUID       `json:"owner_id"`
	NodeType   NodeType        `json:"node_type"`
	Payload    json.RawMessage `json:"payload"`
	Visibility Visibility      `json:"visibility"`
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DomainPayload is the payload shape carried by domain nodes.
type DomainPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryPayload is the payload shape carried by category nodes.
type CategoryPayload struct {
	Name string `json:"name"`
}

// TermPayload is the payload shape carried by term nodes. Definition is the
// reference answer students are judged against.
type TermPayload struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Validate checks the structural invariants of the node: IDs present, a
// recognized type and visibility, parent rules per type, and a payload that
// is at least well-formed JSON.
func (n *TreeNode) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNodeIDEmpty
	}

	if n.OwnerID == uuid.Nil {
		return ErrNodeOwnerIDEmpty
	}

	switch n.NodeType {
	case NodeTypeDomain:
		if n.ParentID != nil {
			return ErrDomainHasParent
		}
	case NodeTypeCategory, NodeTypeTerm:
		if n.ParentID == nil {
			return ErrNodeMissingParent
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidNodeType, n.NodeType)
	}

	if n.ParentID != nil && *n.ParentID == n.ID {
		return ErrNodeSelfParent
	}

	switch n.Visibility {
	case VisibilityPrivate, VisibilityPublic:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidVisibility, n.Visibility)
	}

	if len(n.Payload) == 0 {
		return fmt.Errorf("%w: payload is empty", ErrInvalidPayload)
	}

	var js json.RawMessage
	if err := json.Unmarshal(n.Payload, &js); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return nil
}

// DomainPayload decodes the node payload as a DomainPayload.
// Returns ErrInvalidPayload if the node is not a domain node or the payload
// does not decode.
func (n *TreeNode) DomainPayload() (*DomainPayload, error) {
	if n.NodeType != NodeTypeDomain {
		return nil, fmt.Errorf("%w: node %s is %s, not domain", ErrInvalidPayload, n.ID, n.NodeType)
	}

	var p DomainPayload
	if err := json.Unmarshal(n.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &p, nil
}

// TermPayload decodes the node payload as a TermPayload.
// Returns ErrInvalidPayload if the node is not a term node or the payload
// does not decode.
func (n *TreeNode) TermPayload() (*TermPayload, error) {
	if n.NodeType != NodeTypeTerm {
		return nil, fmt.Errorf("%w: node %s is %s, not term", ErrInvalidPayload, n.ID, n.NodeType)
	}

	var p TermPayload
	if err := json.Unmarshal(n.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &p, nil
}

// NewDomainNode creates a root domain node owned by ownerID.
// Content authoring happens outside the core; this constructor exists for
// seed tooling and tests.
func NewDomainNode(ownerID uuid.UUID, payload DomainPayload, visibility Visibility) (*TreeNode, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return newNode(ownerID, nil, NodeTypeDomain, raw, visibility)
}

// NewCategoryNode creates a category node under the given parent.
func NewCategoryNode(ownerID, parentID uuid.UUID, payload CategoryPayload, visibility Visibility) (*TreeNode, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return newNode(ownerID, &parentID, NodeTypeCategory, raw, visibility)
}

// NewTermNode creates a term node under the given parent.
func NewTermNode(ownerID, parentID uuid.UUID, payload TermPayload, visibility Visibility) (*TreeNode, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return newNode(ownerID, &parentID, NodeTypeTerm, raw, visibility)
}

func newNode(
	ownerID uuid.UUID,
	parentID *uuid.UUID,
	nodeType NodeType,
	payload json.RawMessage,
	visibility Visibility,
) (*TreeNode, error) {
	now := time.Now().UTC()
	node := &TreeNode{
		ID:         uuid.New(),
		ParentID:   parentID,
		OwnerID:    ownerID,
		NodeType:   nodeType,
		Payload:    payload,
		Visibility: visibility,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := node.Validate(); err != nil {
		return nil, err
	}

	return node, nil
}
