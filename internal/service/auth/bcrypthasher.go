package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt password hasher
// Will be used as default one if user not provide it's own
//
// Passwords are hashed as is (no pre-hashing), so digests stay compatible with
// any other bcrypt implementation. Bcrypt reads at most 72 bytes: longer passwords are rejected
type BcryptHasher struct {
	// Work factor. bcrypt.DefaultCost (10) if not set
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// Compare returns error on mismatch and on malformed digest as well
func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
