package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := NewAccessToken("secret", "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), tok.Exp)

	sub, err := ParseAccessToken(tok.Token, "secret", now.Add(59*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := NewAccessToken("secret", "user-1", now)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok.Token, "secret", now.Add(time.Hour+time.Second))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	tok, err := NewAccessToken("secret", "user-1", now)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok.Token, "other", now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsMalformedAndEmpty(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ParseAccessToken(raw, "secret", time.Now())
		assert.ErrorIs(t, err, ErrInvalidToken, "raw=%q", raw)
	}
}

func TestParseAccessTokenRejectsMissingExp(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseAccessToken(raw, "secret", time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsOtherAlgorithm(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseAccessToken(raw, "secret", time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}
