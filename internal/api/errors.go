// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"net/http"

	"github.com/lexidrill/lexidrill-api/internal/api/shared"
	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/service/quiz"
	"github.com/lexidrill/lexidrill-api/internal/store"
	"github.com/lexidrill/lexidrill-api/internal/tree"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors: illegal transition or lost race
	case errors.Is(err, quiz.ErrInvalidState),
		errors.Is(err, store.ErrConcurrentModification):
		return http.StatusConflict

	// Unprocessable: a valid request against a domain that cannot be quizzed
	case errors.Is(err, quiz.ErrEmptyDomain):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Corrupt content tree is a server-side problem
	case errors.Is(err, tree.ErrInvalidHierarchy):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrNodeNotFound):
		return "Content not found"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Quiz session not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, quiz.ErrInvalidState):
		return "Operation not allowed in the session's current state"

	case errors.Is(err, store.ErrConcurrentModification):
		return "The session was modified by another request, please retry"

	case errors.Is(err, quiz.ErrEmptyDomain):
		return "This domain has no terms to quiz"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes an error response using the standard status and
// message mapping. An explicit userMessage overrides the mapped one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}
