// Package digest fingerprints finalized score strings. The token proves a
// result was not hand-edited and keys local "already submitted" bookkeeping.
package digest

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
)

// Fingerprint returns the base64 (standard alphabet, padded) SHA-512 digest
// of the exact one-decimal score string, before URL encoding.
func Fingerprint(scoreString string) string {
	sum := sha512.Sum512([]byte(scoreString))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Verify reports whether token is the fingerprint of scoreString.
func Verify(scoreString, token string) bool {
	want := Fingerprint(scoreString)
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}
