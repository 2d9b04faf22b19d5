package httputil

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey      contextKey = "userID"
	displayNameKey contextKey = "displayName"
)

// WithUser stores the authenticated user on the request context.
func WithUser(r *http.Request, userID, displayName string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, displayNameKey, displayName)
	return r.WithContext(ctx)
}

// GetUserID returns "" for unauthenticated requests.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetDisplayName returns the full name from the token metadata, or "".
func GetDisplayName(r *http.Request) string {
	name, _ := r.Context().Value(displayNameKey).(string)
	return name
}
