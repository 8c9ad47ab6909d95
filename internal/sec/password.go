package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the longest password bcrypt accepts, in bytes.
const MaxPasswordLength = 72

// ErrPasswordTooLong is returned by [HashPassword] for passwords bcrypt would
// silently reject.
var ErrPasswordTooLong = fmt.Errorf("password is longer than %d bytes", MaxPasswordLength)

// HashPassword hashes an account password for the users table.
func HashPassword[T ~string | ~[]byte](password T) ([]byte, error) {
	if len(password) > MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// ComparePassword checks password against a stored hash. A mismatch is
// reported as [ErrBadCredentials]; a malformed hash keeps bcrypt's error.
func ComparePassword[T ~string | ~[]byte](password T, hash []byte) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrBadCredentials
	}
	return err
}
