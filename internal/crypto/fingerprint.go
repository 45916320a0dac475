package crypto

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// fingerprintLength is the number of hex characters kept from the digest.
const fingerprintLength = 12

// Fingerprint returns a short, non-reversible identifier for a password so it
// can appear in logs and events without the secret itself.
func Fingerprint(password string) string {
	sum := blake2b.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
