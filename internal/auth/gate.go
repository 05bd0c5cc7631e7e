package auth

import (
	"crypto/subtle"

	"github.com/pkg/errors"
)

// ErrUnauthorized is returned when an admin credential is missing or wrong.
var ErrUnauthorized = errors.New("unauthorized")

// Gate decides whether a supplied admin key grants access to privileged reads.
type Gate struct {
	secret []byte
}

func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Authorize reports whether key exactly matches the configured secret.
// An empty key never matches, nor does anything when no secret is configured.
func (g *Gate) Authorize(key string) bool {
	if g == nil || len(g.secret) == 0 || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), g.secret) == 1
}

// Check is Authorize expressed as an error.
func (g *Gate) Check(key string) error {
	if !g.Authorize(key) {
		return ErrUnauthorized
	}
	return nil
}
