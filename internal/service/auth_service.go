package service

import (
	"errors"
	"fmt"

	"paper-reader/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const supabaseAudience = "authenticated"

type authService struct {
	secret []byte
	logger domain.Logger
}

// NewAuthService verifies Supabase access tokens signed with secret (HS256).
// An empty secret disables verification.
func NewAuthService(secret string, logger domain.Logger) *authService {
	return &authService{
		secret: []byte(secret),
		logger: logger,
	}
}

type supabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) Enabled() bool {
	return len(s.secret) > 0
}

// ValidateToken checks signature, expiry and audience and returns the token subject.
func (s *authService) ValidateToken(token string) (*domain.AuthUser, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("jwt secret not configured")
	}

	claims := &supabaseClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(supabaseAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		s.logger.Debug("Token rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	return &domain.AuthUser{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

var _ domain.AuthService = (*authService)(nil)
