package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenEntropy is the number of random bytes in a session token.
const tokenEntropy = 32

// encodedTokenLength is the length of the canonical cookie value (43 for
// 32 raw bytes in unpadded url-safe base64).
var encodedTokenLength = base64.RawURLEncoding.EncodedLen(tokenEntropy)

// NewToken mints a fresh opaque session token: 32 bytes from crypto/rand,
// url-safe base64 without padding, so the value is safe in cookies and
// query strings alike. The token carries no user data, no signature and no
// expiry; the store is the single source of truth for what it means.
func NewToken() (string, error) {
	b := make([]byte, tokenEntropy)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidToken reports whether a string is shaped like a token this gateway
// minted. It is a cheap pre-filter for cookie values arriving from the
// wild: anything failing it is an absent session, never an error.
func ValidToken(s string) bool {
	if len(s) != encodedTokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
