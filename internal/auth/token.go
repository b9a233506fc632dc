// Package auth supplies the bearer credential attached to every API request.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bus-booking/internal/status"

	"github.com/golang-jwt/jwt/v5"
)

var ErrSessionExpired = status.Invalid("auth", "Session expired, please log in again.")

// TokenStore is where a previously obtained credential is remembered.
type TokenStore interface {
	AuthToken(ctx context.Context) (string, error)
}

// TokenSource resolves the credential for outgoing requests. A stored token
// takes precedence over the configured one.
type TokenSource struct {
	store    TokenStore
	fallback string
	now      func() time.Time
}

func NewTokenSource(store TokenStore, fallback string) *TokenSource {
	return &TokenSource{
		store:    store,
		fallback: strings.TrimSpace(fallback),
		now:      time.Now,
	}
}

// Bearer returns the token to send, or "" when none is known. Tokens that
// parse as JWTs are checked for expiry; opaque tokens are passed through.
func (s *TokenSource) Bearer(ctx context.Context) (string, error) {
	token := s.fallback
	if s.store != nil {
		stored, err := s.store.AuthToken(ctx)
		if err != nil {
			return "", fmt.Errorf("load token: %w", err)
		}
		if stored = strings.TrimSpace(stored); stored != "" {
			token = stored
		}
	}
	if token == "" {
		return "", nil
	}

	exp, ok := expiry(token)
	if ok && !exp.After(s.now()) {
		return "", ErrSessionExpired
	}
	return token, nil
}

// expiry reads the exp claim without verifying the signature; the server
// remains the authority on validity.
func expiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
