package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessTokenTTL is the fixed lifetime of a session token.
const AccessTokenTTL = time.Hour

// ErrInvalidToken is the single failure returned by ParseAccessToken. It
// deliberately does not say whether the token was missing, malformed,
// expired or signed with another key.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user. The token
// carries the standard sub, iat and exp claims; exp is now plus
// AccessTokenTTL.
func NewAccessToken(secret, userID string, now time.Time) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("jwt secret is empty")
	}
	now = now.UTC()
	exp := now.Add(AccessTokenTTL)
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret as of now and returns the
// subject. It has no state of its own; validity depends only on the
// signature and the exp claim.
func ParseAccessToken(raw, secret string, now time.Time) (string, error) {
	if raw == "" || secret == "" {
		return "", ErrInvalidToken
	}
	tok, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
