package utils

import (
	"testing"
	"voucher_wheel/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecret(t *testing.T, secret string) {
	t.Helper()
	old := config.GlobalConfig.JWT
	config.GlobalConfig.JWT.Secret = secret
	config.GlobalConfig.JWT.Expire = 1
	t.Cleanup(func() { config.GlobalConfig.JWT = old })
}

func TestGenerateAndParseToken(t *testing.T) {
	setSecret(t, "0123456789abcdef0123456789abcdef")

	token, expireAt, err := GenerateToken("user-1", RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, expireAt)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	setSecret(t, "0123456789abcdef0123456789abcdef")
	token, _, err := GenerateToken("user-1", RoleUser)
	require.NoError(t, err)

	config.GlobalConfig.JWT.Secret = "another-secret-another-secret-xx"
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestGenerateTokenRequiresUser(t *testing.T) {
	setSecret(t, "0123456789abcdef0123456789abcdef")
	_, _, err := GenerateToken("", RoleUser)
	assert.Error(t, err)
}
