package cpfauth

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a keyed BLAKE2b identifier for cpf. The CPF is also the
// account password and has only 11 digits, so without the key the value could
// be brute forced; logs, metrics and ledgers carry this instead of the CPF.
func Fingerprint(key []byte, cpf string) string {
	// Sum256 normalizes any key length to the 32 bytes New256 accepts.
	k := blake2b.Sum256(key)
	h, _ := blake2b.New256(k[:])
	h.Write([]byte(cpf))
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// NewFingerprintKey returns a random key for Fingerprint. Fingerprints made
// with it do not survive a restart.
func NewFingerprintKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("cpfauth: reading random fingerprint key: " + err.Error())
	}
	return key
}
