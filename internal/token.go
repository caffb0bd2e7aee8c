package internal

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewSessionToken returns a fresh opaque session token: the hex encoding of
// a random (v4) UUID, 32 lowercase characters. Tokens are unguessable but
// carry no structure; the store row is the only authority on validity.
func NewSessionToken() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(u[:]), nil
}

// TokensEqual compares a stored and a presented token in constant time.
func TokensEqual(stored, presented string) bool {
	if len(stored) != len(presented) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
