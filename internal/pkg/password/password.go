package password

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost used for new hashes
	DefaultCost = 12
)

// dummyHash is compared against when a username is unknown so both paths
// spend one bcrypt comparison.
var dummyHash = []byte("$2a$12$C6UzMDM.H6dfI/f/IKcEeO5M0Vg8tJZKpK5r5Y7bq8Jm8nYy0a1e6")

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	return HashWithCost(password, DefaultCost)
}

// HashWithCost hashes a password with an explicit bcrypt cost
func HashWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Burn performs a comparison that always fails.
func Burn(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// IsHash reports whether s looks like a bcrypt hash.
func IsHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
