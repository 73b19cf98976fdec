// Package phonefp turns a caller's raw phone number into a stable,
// irreversible fingerprint so the rest of the system never stores, logs,
// or keys anything on the number itself.
package phonefp

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns sha256(digitsOnly(phone) + "|" + salt) hex-encoded.
// The salt is a deployment secret from config; without it the digits alone
// would make the fingerprint trivially reversible by dictionary lookup.
func Fingerprint(phone, salt string) string {
	digits := digitsOnly(phone)
	h := sha256.Sum256([]byte(digits + "|" + salt))
	return hex.EncodeToString(h[:])
}

func digitsOnly(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
