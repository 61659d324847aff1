package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), http.StatusNotFound},
		{"forbidden", NewForbiddenError("nope"), http.StatusForbidden},
		{"quota", NewQuotaError("slow down"), http.StatusTooManyRequests},
		{"unavailable", NewUnavailableError("off"), http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("outer: %w", NewUnauthorizedError("who")), http.StatusUnauthorized},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatusCode(tt.err); got != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("context: %w", NewQuotaError("limit"))
	if !IsType(err, ErrorTypeQuota) {
		t.Fatalf("expected wrapped quota error to match")
	}
	if IsType(err, ErrorTypeValidation) {
		t.Fatalf("did not expect validation match")
	}
}

func TestPublicMessage(t *testing.T) {
	if got := PublicMessage(NewValidationError("path is required", "query")); got != "path is required: query" {
		t.Fatalf("unexpected message: %s", got)
	}
	if got := PublicMessage(fmt.Errorf("db exploded")); got != "Internal server error" {
		t.Fatalf("expected generic message, got %s", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewInternalError("failed", cause)
	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be returned")
	}
	if err.Error() != "internal: failed" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestAppError_WithCause(t *testing.T) {
	sentinel := fmt.Errorf("highlight not found")
	err := fmt.Errorf("handler: %w", NewNotFoundError("Highlight not found").WithCause(sentinel))

	if !stderrors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is to reach the cause")
	}
	if GetStatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", GetStatusCode(err))
	}
}
