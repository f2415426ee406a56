package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashes are self-describing strings of the form
// v1$<iterations>$<salt b64>$<hash b64>, so iteration counts can be raised
// without invalidating stored credentials.
const (
	saltSize          = 16
	keySize           = 32
	defaultIterations = 100_000
	hashVersion       = "v1"
)

// HashPassword derives a PBKDF2-SHA256 hash of password with a random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := pbkdf2.Key([]byte(password), salt, defaultIterations, keySize, sha256.New)

	return strings.Join([]string{
		hashVersion,
		strconv.Itoa(defaultIterations),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash),
	}, "$"), nil
}

// VerifyPassword reports whether password matches the stored hash. Malformed
// or unsupported hashes never verify.
func VerifyPassword(stored, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != hashVersion {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}

	actual := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(actual, expected) == 1
}
