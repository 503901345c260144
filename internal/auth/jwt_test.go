package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("test-secret")

	tok, err := j.Sign(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	uid, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestJWTWrongSecret(t *testing.T) {
	tok, err := NewJWT("secret-a").Sign(42)
	require.NoError(t, err)

	_, err = NewJWT("secret-b").Verify(tok)
	assert.Error(t, err)
}

func signWith(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestJWTRejectsForeignIssuer(t *testing.T) {
	tok := signWith(t, "test-secret", jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	_, err := NewJWT("test-secret").Verify(tok)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	tok := signWith(t, "test-secret", jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	_, err := NewJWT("test-secret").Verify(tok)
	assert.Error(t, err)
}

func TestJWTRejectsMissingExpiry(t *testing.T) {
	tok := signWith(t, "test-secret", jwt.RegisteredClaims{
		Issuer:  issuer,
		Subject: "42",
	})

	_, err := NewJWT("test-secret").Verify(tok)
	assert.Error(t, err)
}

func TestJWTGarbage(t *testing.T) {
	_, err := NewJWT("test-secret").Verify("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	assert.True(t, ComparePassword(hash, "correct horse"))
	assert.False(t, ComparePassword(hash, "wrong horse"))
}
