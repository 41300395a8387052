// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/adapter"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

const (
	tokenIssuer     = "finance-tracker"
	tokenTypeAccess = "access"
)

// CustomClaims represents the custom claims for JWT tokens.
type CustomClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenService validates access tokens issued by the authentication service.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a new token service instance.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
	}
}

var _ adapter.TokenService = (*TokenService)(nil)

// ValidateAccessToken validates an access token and returns its claims.
// Failures are *domainerror.AuthError values distinguishing expired from invalid tokens.
func (s *TokenService) ValidateAccessToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	claims, err := s.parseJWT(token)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != tokenTypeAccess {
		return nil, invalidToken("invalid token type: expected access token", nil)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, invalidToken("invalid user ID in token", err)
	}

	return &adapter.TokenClaims{
		UserID:    userID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// GenerateAccessToken signs an access token. The service never mints tokens for clients,
// this is used by the CLI and test suites.
func (s *TokenService) GenerateAccessToken(userID uuid.UUID, email string, duration time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := CustomClaims{
		UserID:    userID.String(),
		Email:     email,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// parseJWT parses and validates a JWT token.
func (s *TokenService) parseJWT(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeExpiredToken, "Token has expired", domainerror.ErrExpiredToken)
	}
	if err != nil {
		return nil, invalidToken("failed to parse token", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, invalidToken("invalid token claims", nil)
	}

	return claims, nil
}

func invalidToken(reason string, err error) error {
	if err != nil {
		err = fmt.Errorf("%s: %w", reason, err)
	} else {
		err = errors.New(reason)
	}
	return domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, "Invalid or expired token", errors.Join(domainerror.ErrInvalidToken, err))
}
