package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

func TestTokenService_RoundTrip(t *testing.T) {
	service := NewTokenService("secret")
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "ana@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestTokenService_Rejects(t *testing.T) {
	service := NewTokenService("secret")
	userID := uuid.New()

	expired, err := service.GenerateAccessToken(userID, "", -time.Minute)
	require.NoError(t, err)

	foreign, err := NewTokenService("other-secret").GenerateAccessToken(userID, "", time.Hour)
	require.NoError(t, err)

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		UserID:    userID.String(),
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		UserID:    "not-a-uuid",
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":       expired,
		"wrong secret":  foreign,
		"refresh token": refresh,
		"bad user id":   badSubject,
		"garbage":       "not.a.jwt",
		"empty":         "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := service.ValidateAccessToken(context.Background(), token)
			assert.Error(t, err)
		})
	}
}

func TestTokenService_ErrorCodes(t *testing.T) {
	service := NewTokenService("secret")

	expired, err := service.GenerateAccessToken(uuid.New(), "", -time.Minute)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(context.Background(), expired)
	var authErr *domainerror.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domainerror.ErrCodeExpiredToken, authErr.Code)
	assert.ErrorIs(t, err, domainerror.ErrExpiredToken)

	_, err = service.ValidateAccessToken(context.Background(), "not.a.jwt")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domainerror.ErrCodeInvalidToken, authErr.Code)
	assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
}

func TestContextUserProvider(t *testing.T) {
	provider := NewContextUserProvider()

	_, err := provider.CurrentUserID(context.Background())
	assert.ErrorIs(t, err, domainerror.ErrUserNotResolved)

	userID := uuid.New()
	got, err := provider.CurrentUserID(WithUserID(context.Background(), userID))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestStaticUserProvider(t *testing.T) {
	_, err := NewStaticUserProvider(uuid.Nil).CurrentUserID(context.Background())
	assert.ErrorIs(t, err, domainerror.ErrUserNotResolved)

	userID := uuid.New()
	got, err := NewStaticUserProvider(userID).CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
