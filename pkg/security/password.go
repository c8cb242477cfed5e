package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/digikraal/ledgerview/pkg/config"
)

// ErrInvalidHash signals a stored hash in neither the Argon2id nor the
// bcrypt format.
var ErrInvalidHash = errors.New("invalid password hash")

var errEmptyPassword = errors.New("password cannot be empty")

// HashPassword returns an encoded Argon2id hash of password.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	return newArgonHash(password, argonParamsFrom(cfg))
}

// VerifyPassword reports whether password matches encoded. Imported accounts
// may still carry bcrypt hashes; NeedsRehash flags those.
func VerifyPassword(password, encoded string) (bool, error) {
	if !isBcrypt(encoded) {
		return verifyArgonHash(password, encoded)
	}
	switch err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)); {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}

// NeedsRehash reports whether a verified hash should be replaced with a
// current Argon2id hash.
func NeedsRehash(encoded string) bool {
	if isBcrypt(encoded) {
		return true
	}
	h, err := parseArgonHash(encoded)
	return err != nil || h.version != argonVersion
}

func isBcrypt(encoded string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}
