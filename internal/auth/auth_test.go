package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallhq/recall/internal/config"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPasswordHash("s3cret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateJWT("alice")
	require.NoError(t, err)

	subject, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestValidateJWTRejectsBadToken(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	config.AppConfig.JWTSecret = "secret-one"
	token, err := GenerateJWT("bob")
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "secret-two"
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}
