package codes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidLength = errors.New("invalid code length")
	ErrEmptyCharset  = errors.New("charset cannot be empty")
)

const (
	// IdentifierLength is the number of random characters after the prefix.
	IdentifierLength = 8

	// Uppercase alphanumeric, the alphabet of every business identifier.
	charsetUpperAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateIdentifier creates a business identifier such as "PROD-7QK2M9ZA".
func GenerateIdentifier(prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("identifier prefix cannot be empty")
	}
	token, err := GenerateCode(IdentifierLength, charsetUpperAlphanumeric)
	if err != nil {
		return "", err
	}
	return prefix + "-" + token, nil
}

// IsIdentifier reports whether s has the shape produced by GenerateIdentifier.
func IsIdentifier(prefix, s string) bool {
	token, found := strings.CutPrefix(s, prefix+"-")
	if !found || len(token) != IdentifierLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		if !strings.ContainsRune(charsetUpperAlphanumeric, rune(token[i])) {
			return false
		}
	}
	return true
}

// GenerateCode creates a code of specified length from a given character set.
func GenerateCode(length int, charset string) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}
	if len(charset) == 0 {
		return "", ErrEmptyCharset
	}

	return generateFromCharset(length, charset)
}

// NormalizeCode normalizes a code for comparison (uppercase, trim whitespace).
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateFromCharset(length int, charset string) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(charset)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		result[i] = charset[n.Int64()]
	}

	return string(result), nil
}
