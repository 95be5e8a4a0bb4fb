package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", "parkhere", "parkhere")

	access, refresh, err := a.GenerateTokens(42, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	accessToken, err := a.ValidateAccessToken(access)
	require.NoError(t, err)
	require.True(t, accessToken.Valid)

	claims, ok := accessToken.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	refreshToken, err := a.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshToken.Valid)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", "parkhere", "parkhere")

	access, refresh, err := a.GenerateTokens(7, "user")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = a.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", "parkhere", "parkhere")
	b := NewJWTAuthenticator("other-secret", "other-refresh", "parkhere", "parkhere")

	access, _, err := a.GenerateTokens(1, "user")
	require.NoError(t, err)

	_, err = b.ValidateAccessToken(access)
	assert.Error(t, err)
}
