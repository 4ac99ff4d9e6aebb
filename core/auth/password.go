package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

const (
	argonTime    = 2
	argonMemory  = 64 * 1024
	argonThreads = 2
	argonKeyLen  = 32
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HashPassword derives an argon2id hash. The pepper is an app-wide secret
// mixed into the password before derivation; the salt is per-user.
func HashPassword(password, pepper string) (hash, salt string, err error) {
	salt, err = utils.RandString(24)
	if err != nil {
		return "", "", err
	}
	hash = deriveHash(password, pepper, salt)
	return hash, salt, nil
}

func VerifyPassword(password, pepper, hash, salt string) bool {
	if strings.TrimSpace(hash) == "" || strings.TrimSpace(salt) == "" {
		return false
	}
	candidate := deriveHash(password, pepper, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1
}

func deriveHash(password, pepper, salt string) string {
	key := argon2.IDKey([]byte(password+pepper), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}

var ErrWeakPassword = errors.New("password too short")

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}
