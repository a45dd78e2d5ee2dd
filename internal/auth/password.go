// Package auth holds credential hashing, bearer tokens and the
// authenticated principal carried through request contexts.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 12

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches the stored credential. Malformed
// credentials never match.
func (h *Hasher) Verify(credential, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(credential), []byte(password))
	return err == nil
}

// Reject runs a Verify-sized bcrypt comparison against a decoy credential.
// Login calls it for unknown usernames.
func (h *Hasher) Reject(password string) {
	h.decoyOnce.Do(func() {
		h.decoy, _ = bcrypt.GenerateFromPassword([]byte("fintrack-decoy"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.decoy, []byte(password))
}

// IsTooLong reports whether err came from an over-long password.
func IsTooLong(err error) bool {
	return errors.Is(err, bcrypt.ErrPasswordTooLong)
}
