package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g., ErrNodeNotFound, ErrSessionNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrDuplicate is returned when an insert collides with a uniqueness
	// constraint, such as two attempts claiming the same attempt number.
	ErrDuplicate = errors.New("duplicate entity")

	// ErrConcurrentModification is returned when an optimistic-concurrency
	// update finds the entity's version changed underneath it. The racing
	// operation already consumed the state this one was computed against,
	// so the caller must reload before acting again.
	ErrConcurrentModification = errors.New("entity modified concurrently")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrNodeNotFound indicates that the requested tree node does not exist.
	ErrNodeNotFound = fmt.Errorf("%w: node", ErrNotFound)

	// ErrSessionNotFound indicates that the requested quiz session does not exist.
	ErrSessionNotFound = fmt.Errorf("%w: quiz session", ErrNotFound)

	// ErrAttemptNotFound indicates that the requested attempt does not exist.
	ErrAttemptNotFound = fmt.Errorf("%w: attempt", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error,
// including the entity-specific variants.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "node", "quiz_session")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
