// Package fingerprint derives a stable anonymous identity for visitors that
// have no account and no identity cookie. The fingerprint only needs to be
// stable for the duration of a cooldown window; it is not a tracking ID.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
)

const prefix = "anon:"

// Derive hashes the client IP and User-Agent into an opaque identity string.
// The "anon:" prefix keeps anonymous identities distinguishable from
// authenticated user IDs without inspecting their shape.
func Derive(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(ip))
	h.Write([]byte{0})
	h.Write([]byte(userAgent))
	return prefix + base64.RawURLEncoding.EncodeToString(h.Sum(nil)[:18])
}

// IsAnonymous reports whether an identity was derived by this package.
func IsAnonymous(identity string) bool {
	return len(identity) > len(prefix) && identity[:len(prefix)] == prefix
}
