package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := Generate("secret", "u-1", "ana", "cliente", "test", 5)
	require.NoError(t, err)

	claims, err := Parse("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "cliente", claims.Role)
	assert.Equal(t, "test", claims.Issuer)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := Generate("secret", "u-1", "ana", "admin", "test", 5)
	require.NoError(t, err)

	_, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	token, err := Generate("secret", "u-1", "ana", "admin", "test", -1)
	require.NoError(t, err)

	_, err = Parse("secret", token)
	assert.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := Generate("", "u", "n", "r", "i", 1)
	assert.Error(t, err)
	_, err = Parse("", "x")
	assert.Error(t, err)
}
