package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomURLSafe returns n bytes of secure random data as unpadded base64url
// text.  It backs session jtis and the one-time email tokens.
func RandomURLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
