package domain

// AuthUser is the caller identity decoded from a Supabase access token.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AuthService verifies bearer tokens.
type AuthService interface {
	// Enabled reports whether a JWT secret is configured. When false every
	// request is treated as anonymous.
	Enabled() bool
	ValidateToken(token string) (*AuthUser, error)
}
