// Package hasher provides one-way password hashing backed by bcrypt.
package hasher

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// saltPrefixLen is the length of "$2a$10$" followed by the 22-character encoded salt.
const saltPrefixLen = 29

// BcryptHasher hashes and verifies passwords.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt digest of plaintext and the salt it embeds.
// A fresh random salt is drawn on every call.
func (h *BcryptHasher) Hash(plaintext string) (digest, salt string, err error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}
	digest = string(b)
	return digest, digest[:saltPrefixLen], nil
}

// Verify reports whether plaintext matches the stored digest and salt.
// Malformed stored data yields false.
func (h *BcryptHasher) Verify(plaintext, digest, salt string) bool {
	digest = strings.TrimSpace(digest)
	if digest == "" || salt == "" {
		slog.Warn("password verification skipped: missing credential data")
		return false
	}
	if !strings.HasPrefix(digest, salt) {
		slog.Warn("password verification failed: salt does not match stored digest")
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.Warn("password verification failed: malformed digest", "error", err)
		}
		return false
	}
	return true
}
