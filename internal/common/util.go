package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system entropy source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("rand: %v", err))
	}
	return b
}

// MakeRandHexString returns a hex string encoding size random bytes
// (i.e. the result is 2*size characters long).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes the buffer in place. Use it on password and key
// material as soon as it is no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
