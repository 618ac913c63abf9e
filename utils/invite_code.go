package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Community codes are short tokens people read out loud or type from a
// screenshot, so the alphabet is uppercase alphanumeric only.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const CommunityCodeLength = 6

// GenerateCommunityCode returns a random fixed-length uppercase
// alphanumeric code. Uniqueness is enforced by the database constraint;
// callers retry on collision.
func GenerateCommunityCode() (string, error) {
	buf := make([]byte, CommunityCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	b.Grow(CommunityCodeLength)
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// NormalizeCommunityCode maps user input to the stored representation.
// Codes compare case-insensitively.
func NormalizeCommunityCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
