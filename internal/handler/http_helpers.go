// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"paper-reader/internal/domain"
	apperrors "paper-reader/pkg/errors"
)

type contextKey string

const (
	userContextKey contextKey = "user"
)

// GetUserFromContext extracts the authenticated user from request context.
// Anonymous requests return false.
func GetUserFromContext(r *http.Request) (*domain.AuthUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.AuthUser)
	return user, ok && user != nil
}

// optionalUser returns the caller or nil.
func optionalUser(r *http.Request) *domain.AuthUser {
	user, _ := GetUserFromContext(r)
	return user
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes {"detail": message}, the shape the desktop client reads.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"detail": message})
}

// writeAppError maps err to its HTTP status. Server-side failures are logged.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error) {
	status := apperrors.GetStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, "status", status)
	}
	writeError(w, status, apperrors.PublicMessage(err))
}
