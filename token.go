package auth

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// TokenBytes is the entropy of generated session and reset tokens.
// 32 bytes encodes to a 43 char URL and cookie safe string.
const TokenBytes = 32

// NewToken returns an unpredictable opaque token. The value is safe to
// transport in a cookie or URL without escaping.
func NewToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MustNewToken returns a token, falling back to a random UUID if the
// system entropy source fails.
func MustNewToken() string {
	if token, err := NewToken(); err == nil {
		return token
	}
	return uuid.NewString()
}
