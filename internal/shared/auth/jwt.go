package auth

import (
	"errors"
	"fmt"

	"github.com/cribnosh/server/internal/shared/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token validation errors.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
	ErrUnknownRole        = errors.New("unknown role claim")
)

// Claims represents JWT token claims. Tokens are issued by the identity
// platform; this service only validates them.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret string
	Issuer string
}

// JWTManager validates bearer tokens and resolves the acting identity.
type JWTManager struct {
	config *JWTConfig
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(config *JWTConfig) *JWTManager {
	return &JWTManager{config: config}
}

// ValidateAccessToken validates an access token and returns the claims.
func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidTokenClaims
	}

	return claims, nil
}

// ResolveActor validates a token and maps its claims onto an Actor.
// Tokens with a role outside the closed set are rejected.
func (m *JWTManager) ResolveActor(tokenString string) (identity.Actor, error) {
	claims, err := m.ValidateAccessToken(tokenString)
	if err != nil {
		return identity.Actor{}, err
	}

	role, ok := identity.ParseRole(claims.Role)
	if !ok {
		return identity.Actor{}, fmt.Errorf("%w: %q", ErrUnknownRole, claims.Role)
	}
	if claims.UserID == uuid.Nil {
		return identity.Actor{}, ErrInvalidTokenClaims
	}

	return identity.Actor{ID: claims.UserID, Role: role}, nil
}
