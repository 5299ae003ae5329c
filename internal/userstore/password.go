// Package userstore persists the per-user data a single-admin Anchor
// deployment needs: profile attributes, registered SSH keys, 2FA state,
// and the account password hash — each user a directory of small JSON/text
// files under users/<name>/.
package userstore

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// PasswordCost is the bcrypt work factor.
const PasswordCost = bcrypt.DefaultCost

// HashPassword bcrypt-hashes a plaintext password for storage in
// password.hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperr.Invalid("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "hash password")
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash, in constant time
// via bcrypt's own comparison.
func VerifyPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
