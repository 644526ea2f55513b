package password

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost used for stored student passwords.
	DefaultCost = 12

	// MinLength is the shortest password accepted on update.
	MinLength = 8
)

// Hash hashes a password using bcrypt.
func Hash(password string) (string, error) {
	return HashWithCost(password, DefaultCost)
}

// HashWithCost hashes with an explicit cost. Seeding and tests use bcrypt.MinCost.
func HashWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Valid checks that a new password meets the length requirement.
func Valid(password string) bool {
	return len(password) >= MinLength
}
