// Package backend implements the per-algorithm cipher adapters behind a
// uniform encrypt/decrypt contract.
package backend

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

// Result holds the output of a single encryption call. IVOrNonce is
// always freshly generated; Tag is empty for algorithms that embed the
// tag in the ciphertext or provide no authentication.
type Result struct {
	Ciphertext []byte
	IVOrNonce  []byte
	Tag        []byte
}

// Backend is the uniform contract every cipher adapter implements.
// Encrypt generates a fresh random nonce/IV on every call; nonces are
// never caller-supplied, derived or counter-based. Decrypt fails closed:
// any tag mismatch, wrong key or truncated input yields
// types.ErrAuthenticationFailed, never partial plaintext.
type Backend interface {
	Algorithm() types.Algorithm
	Encrypt(plaintext, key []byte) (*Result, error)
	Decrypt(ciphertext, key, ivOrNonce, tag []byte) ([]byte, error)
}

// For returns the backend implementing the given algorithm.
func For(a types.Algorithm) (Backend, error) {
	switch a {
	case types.AlgorithmAES256GCM:
		return aesGCMBackend{}, nil
	case types.AlgorithmAES256CBC:
		return aesCBCBackend{}, nil
	case types.AlgorithmChaCha20Poly1305:
		return chaCha20Backend{}, nil
	case types.AlgorithmXChaCha20Poly1305:
		return xChaCha20Backend{}, nil
	default:
		return nil, fmt.Errorf("%w: code %d", types.ErrUnknownAlgorithm, a.Code())
	}
}

// Probe verifies that the algorithm's primitive can be constructed with
// a throwaway key. The registry calls this once at startup to resolve
// availability.
func Probe(a types.Algorithm) error {
	b, err := For(a)
	if err != nil {
		return err
	}
	probeKey := make([]byte, types.KeySize)
	if _, err := b.Encrypt(nil, probeKey); err != nil {
		return fmt.Errorf("probe %s: %w", a, err)
	}
	return nil
}

func validateKey(key []byte) error {
	if len(key) != types.KeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", types.ErrInvalidKeyLength, len(key), types.KeySize)
	}
	return nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}
