// Package security wraps the password hashing primitive. Raw passwords
// never leave this package in persistent form.
package security

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with bcrypt (salted, adaptive).
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext candidate.
// Never compare hashes directly.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
