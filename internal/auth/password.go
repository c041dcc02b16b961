package auth

import "golang.org/x/crypto/bcrypt"

// Hasher turns plain passwords into digests and checks them.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out-of-range costs.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	return HashPassword(plain, h.cost)
}

func (h *BcryptHasher) Verify(plain, digest string) bool {
	return CheckPassword(plain, digest)
}

// HashPassword returns the bcrypt digest of plain at the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares plain against a bcrypt digest.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
