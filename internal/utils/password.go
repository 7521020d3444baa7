package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// CheckPasswordHash compares a plaintext password against a bcrypt hash.
func CheckPasswordHash(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
