package cpfauth_test

import (
	"testing"

	"github.com/Abraxas-365/cpfauth/pkg/cpfauth"
	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	key := []byte("fingerprint-key")
	a := cpfauth.Fingerprint(key, "12345678901")

	assert.Len(t, a, 16)
	assert.Equal(t, a, cpfauth.Fingerprint(key, "12345678901"))
	assert.NotEqual(t, a, cpfauth.Fingerprint(key, "12345678902"))
	assert.NotContains(t, a, "12345678901")
}

func TestFingerprint_DependsOnKey(t *testing.T) {
	a := cpfauth.Fingerprint([]byte("key-one"), "12345678901")
	b := cpfauth.Fingerprint([]byte("key-two"), "12345678901")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, cpfauth.Fingerprint(nil, "12345678901"))
}

func TestNewFingerprintKey(t *testing.T) {
	a := cpfauth.NewFingerprintKey()
	b := cpfauth.NewFingerprintKey()

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
