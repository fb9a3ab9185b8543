package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/api/shared"
)

// userIDHeader carries the authenticated user ID set by the upstream
// identity provider. Authentication itself happens outside this service;
// the gateway strips any client-supplied value before setting its own.
const userIDHeader = "X-User-ID"

// IdentityMiddleware extracts the authenticated user ID from the request
// and places it in the context for handlers. Requests without a valid user
// ID are rejected with 401.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(userIDHeader))
		if err != nil || userID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing or invalid user identity")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
