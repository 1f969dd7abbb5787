package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/ecocollect/identity-service/internal/core/ports"
)

// BcryptHasher implements ports.PasswordHasher with bcrypt. The salt is
// generated per call and embedded in the output.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher at the given cost; values outside the
// bcrypt range fall back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether password matches hash. Malformed hashes simply
// fail the comparison.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
