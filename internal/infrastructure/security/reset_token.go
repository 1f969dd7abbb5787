package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// resetTokenBytes gives 256 bits of entropy per token.
const resetTokenBytes = 32

// NewResetToken returns a single-use password-reset capability string:
// unguessable, URL-safe, no padding.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
