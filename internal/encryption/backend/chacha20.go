package backend

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

// chaCha20Backend implements ChaCha20-Poly1305. Following the library
// convention, the 16-byte Poly1305 tag stays embedded at the end of the
// sealed output; Result.Tag is always empty. Additional data is never
// used.
type chaCha20Backend struct{}

func (chaCha20Backend) Algorithm() types.Algorithm {
	return types.AlgorithmChaCha20Poly1305
}

func (b chaCha20Backend) Encrypt(plaintext, key []byte) (*Result, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
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

func (b chaCha20Backend) Decrypt(ciphertext, key, ivOrNonce, _ []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
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
