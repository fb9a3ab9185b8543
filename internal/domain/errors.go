package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidNodeType is returned when a node type is not one of the
	// recognized values.
	ErrInvalidNodeType = errors.New("invalid node type")

	// ErrInvalidVisibility is returned when a visibility value is not valid.
	ErrInvalidVisibility = errors.New("invalid visibility")

	// ErrInvalidPayload is returned when a node payload is not valid JSON
	// or does not match the shape expected for the node's type.
	ErrInvalidPayload = errors.New("invalid node payload")

	// ErrInvalidSessionStatus is returned when a session status is not valid.
	ErrInvalidSessionStatus = errors.New("invalid session status")

	// ErrInvalidSimilarityScore is returned when a similarity score falls
	// outside the [0,1] range.
	ErrInvalidSimilarityScore = errors.New("similarity score must be in [0,1]")
)
