// Package cryptox implements the at-rest protection used for saved biometric
// credentials: a device-local secret, an argon2id-derived sealing key, and
// AES-GCM seal/open helpers operating on JSON-serialized values.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// ErrSealedDataCorrupt is returned by Open when the blob is too short or
// fails authentication. Callers treat such records as unreadable, not as
// transient failures.
var ErrSealedDataCorrupt = errors.New("sealed data corrupt")

// sealKeySalt is a fixed application salt for key stretching. Uniqueness per
// installation comes from the device secret, not from the salt.
var sealKeySalt = []byte("sessionkeeper/seal/v1")

// DeriveSealKey stretches the device secret into a 32-byte AES key using
// argon2id (1 pass, 64 MiB, 4 lanes).
func DeriveSealKey(deviceSecret []byte) []byte {
	return argon2.IDKey(deviceSecret, sealKeySalt, 1, 64*1024, 4, 32)
}

// Seal serializes v to JSON and encrypts it with AES-GCM under key.
// The random nonce is prepended to the ciphertext so the result is a single
// self-contained blob suitable for a key-value store.
func Seal(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal and unmarshals the plaintext JSON
// into v. Returns ErrSealedDataCorrupt if the blob is malformed or fails
// authentication.
func Open(blob, key []byte, v any) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	if len(blob) < aesgcm.NonceSize() {
		return ErrSealedDataCorrupt
	}
	nonce, ciphertext := blob[:aesgcm.NonceSize()], blob[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrSealedDataCorrupt
	}
	return json.Unmarshal(plaintext, v)
}
