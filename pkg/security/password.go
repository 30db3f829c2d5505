package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword returns a bcrypt hash for the provided password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword returns true when the password matches the stored hash.
// Hashes imported from the legacy database carry a $2y$ prefix, which Go's
// bcrypt does not accept; it is remapped to $2b$ before comparing.
func VerifyPassword(password, encoded string) (bool, error) {
	if encoded == "" {
		return false, fmt.Errorf("empty password hash")
	}
	normalized := normalizeHashPrefix(encoded)
	err := bcrypt.CompareHashAndPassword([]byte(normalized), []byte(password))
	if err == nil {
		return true, nil
	}
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	return false, err
}

func normalizeHashPrefix(encoded string) string {
	if strings.HasPrefix(encoded, "$2y$") {
		return "$2b$" + encoded[len("$2y$"):]
	}
	return encoded
}

// ValidatePasswordPolicy enforces the account password rules: at least 8
// characters with one uppercase letter, one lowercase letter, and one digit.
// The returned message is user-facing Spanish.
func ValidatePasswordPolicy(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("la contraseña debe tener al menos 8 caracteres")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("la contraseña debe incluir al menos una letra mayúscula")
	}
	if !hasLower {
		return fmt.Errorf("la contraseña debe incluir al menos una letra minúscula")
	}
	if !hasDigit {
		return fmt.Errorf("la contraseña debe incluir al menos un número")
	}
	return nil
}

// GenerateVerificationCode produces a random 6-digit numeric code.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generating verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
