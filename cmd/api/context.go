// cmd/api/context.go
// Helpers for stashing the authenticated user's id in the request context.
package main

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is a private type so our context keys can never collide with keys
// set by other packages.
type contextKey string

const userIDContextKey = contextKey("userID")

// contextSetUserID returns a copy of the request whose context carries the
// authenticated user's id.
func (app *applicationDependencies) contextSetUserID(r *http.Request, id uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), userIDContextKey, id)
	return r.WithContext(ctx)
}

// contextGetUserID returns the authenticated user's id, or uuid.Nil for an
// anonymous request.
func (app *applicationDependencies) contextGetUserID(r *http.Request) uuid.UUID {
	id, ok := r.Context().Value(userIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// isAuthenticated reports whether the request carries an authenticated user id.
func (app *applicationDependencies) isAuthenticated(r *http.Request) bool {
	return app.contextGetUserID(r) != uuid.Nil
}
