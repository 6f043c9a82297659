package sessionstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minitask/client/internal/domain/entities"
)

var errNoExpiry = errors.New("token has no exp claim")

// ExpiresAt decodes the token's exp claim. The signature is not verified;
// the device has no key to verify it with.
func ExpiresAt(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("decode token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("decode exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, errNoExpiry
	}
	return exp.Time, nil
}

// IsExpired reports whether the session's token is past its expiry at now.
// A token whose expiry cannot be decoded is never valid.
func IsExpired(session *entities.Session, now time.Time) bool {
	if session == nil || session.Token == "" {
		return true
	}
	exp, err := ExpiresAt(session.Token)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
