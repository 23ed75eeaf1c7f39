package auth

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for new hashes.
const BcryptCost = 12

// PasswordVerifier checks a plaintext password against a stored hash.
// A mismatch is (false, nil); an unusable hash is (false, err).
type PasswordVerifier interface {
	Verify(password, hash string) (bool, error)
}

// BcryptVerifier verifies bcrypt hashes ($2a$, $2b$, $2y$).
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(password, hash string) (bool, error) {
	if !isBcryptHash(hash) {
		return false, ErrUnsupportedHash
	}
	// constant-time compare happens inside bcrypt
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

func isBcryptHash(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}

// dummyHash is compared against when the email is unknown, so that path
// pays for the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("no-such-user-placeholder")
	if err != nil {
		panic("auth: build dummy hash: " + err.Error())
	}
	return hash
})

// HashPassword hashes a password with bcrypt at BcryptCost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
