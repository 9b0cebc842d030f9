package backend

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

// aesGCMBackend implements AES-256-GCM. The 16-byte authentication tag
// is split off the sealed output and returned separately so it travels
// as its own envelope metadata field.
type aesGCMBackend struct{}

func (aesGCMBackend) Algorithm() types.Algorithm {
	return types.AlgorithmAES256GCM
}

func (b aesGCMBackend) Encrypt(plaintext, key []byte) (*Result, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv, err := randomBytes(gcm.NonceSize())
	if err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)

	tagStart := len(sealed) - gcm.Overhead()
	return &Result{
		Ciphertext: sealed[:tagStart],
		IVOrNonce:  iv,
		Tag:        sealed[tagStart:],
	}, nil
}

func (b aesGCMBackend) Decrypt(ciphertext, key, ivOrNonce, tag []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ivOrNonce) != gcm.NonceSize() || len(tag) != gcm.Overhead() {
		return nil, types.ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, ivOrNonce, sealed, nil)
	if err != nil {
		return nil, types.ErrAuthenticationFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
