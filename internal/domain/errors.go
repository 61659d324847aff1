package domain

import "errors"

// Domain errors
var (
	ErrPaperNotFound       = errors.New("PDF not found")
	ErrDirectoryNotFound   = errors.New("directory not found")
	ErrOutsideHome         = errors.New("access restricted to home directory")
	ErrHighlightNotFound   = errors.New("highlight not found")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrAuthRequired        = errors.New("authentication required")
	ErrNoModelsAvailable   = errors.New("no models available")
	ErrUnknownProvider     = errors.New("unknown model provider")
	ErrModelNotAllowed     = errors.New("model not available on current plan")
	ErrTokenLimitReached   = errors.New("monthly token limit reached")
	ErrSubscriptionOffline = errors.New("subscription service not configured")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
