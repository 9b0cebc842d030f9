package backend

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

// xChaCha20Backend implements XChaCha20-Poly1305. The 24-byte nonce
// keeps random-nonce collision risk negligible at high volume; the tag
// convention matches chaCha20Backend.
type xChaCha20Backend struct{}

func (xChaCha20Backend) Algorithm() types.Algorithm {
	return types.AlgorithmXChaCha20Poly1305
}

func (b xChaCha20Backend) Encrypt(plaintext, key []byte) (*Result, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD: %w", err)
	}

	nonce, err := randomBytes(aead.NonceSize())
	if err != nil {
		return nil, err
	}

	return &Result{
		Ciphertext: aead.Seal(nil, nonce, plaintext, nil),
		IVOrNonce:  nonce,
	}, nil
}

func (b xChaCha20Backend) Decrypt(ciphertext, key, ivOrNonce, _ []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD: %w", err)
	}

	if len(ivOrNonce) != aead.NonceSize() || len(ciphertext) < aead.Overhead() {
		return nil, types.ErrAuthenticationFailed
	}

	plaintext, err := aead.Open(nil, ivOrNonce, ciphertext, nil)
	if err != nil {
		return nil, types.ErrAuthenticationFailed
	}
	return plaintext, nil
}
