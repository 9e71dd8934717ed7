package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
)

// newID returns a 16-character hex id, the format group and expense ids use.
func newID() string {
	return hex.EncodeToString(randomBytes(8))
}

// newInviteCode returns a URL-safe unpadded base64 code from 6 random bytes.
func newInviteCode() string {
	return base64.RawURLEncoding.EncodeToString(randomBytes(6))
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform's entropy source is broken;
		// ids must never be predictable, so there is nothing to fall back to.
		panic(err)
	}
	return b
}
