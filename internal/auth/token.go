// Package auth holds the session token codec, the per-request identity
// verifier and the login providers. Every login strategy (password,
// Google OAuth, demo) converges on the same signed session token, so
// the rest of the system only ever sees an Identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lrcr/todoplane/internal/models"
)

// SessionCookie is the cookie name carrying the session token.
const SessionCookie = "token"

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is what a session token carries: the user id in the
// subject plus the role at issue time. The role claim is advisory;
// the verifier always reloads the user for the current role.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenCodec signs and parses session tokens with a fixed TTL.
type TokenCodec struct {
	issuer     string
	signingKey []byte
	ttl        time.Duration
}

func NewTokenCodec(issuer string, signingKey []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		issuer:     issuer,
		signingKey: signingKey,
		ttl:        ttl,
	}
}

func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a session token for the user and returns it with its
// expiry time.
func (c *TokenCodec) Issue(user *models.User) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(c.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenUUID.String(),
			Issuer:    c.issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: user.Role,
	})

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates the signature, issuer and expiry and returns the
// claims. Expired or malformed tokens yield ErrInvalidToken.
func (c *TokenCodec) Parse(tokenString string) (*SessionClaims, error) {
	t, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.signingKey, nil
		},
		jwt.WithIssuer(c.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := t.Claims.(*SessionClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
