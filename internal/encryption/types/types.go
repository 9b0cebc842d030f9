// Package types defines common types shared by the encryption codec
package types

import "fmt"

// KeySize is the required length in bytes of every symmetric key handed
// to the codec.
const KeySize = 32

// Algorithm identifies an encryption algorithm by its wire code. Wire
// codes are stable across format versions and are never reassigned.
type Algorithm uint8

// Supported encryption algorithms
const (
	AlgorithmAES256GCM         Algorithm = 1
	AlgorithmAES256CBC         Algorithm = 2
	AlgorithmChaCha20Poly1305  Algorithm = 3
	AlgorithmXChaCha20Poly1305 Algorithm = 4
)

// DefaultAlgorithm is substituted when a requested algorithm is unknown
// or unavailable. AES-256-GCM is built on a universally present
// primitive and is always available.
const DefaultAlgorithm = AlgorithmAES256GCM

// String returns the canonical human-readable name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmAES256GCM:
		return "AES-256-GCM"
	case AlgorithmAES256CBC:
		return "AES-256-CBC"
	case AlgorithmChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	case AlgorithmXChaCha20Poly1305:
		return "XChaCha20-Poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// Valid reports whether a is one of the defined algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmAES256GCM, AlgorithmAES256CBC, AlgorithmChaCha20Poly1305, AlgorithmXChaCha20Poly1305:
		return true
	default:
		return false
	}
}

// Code returns the 1-byte wire code of the algorithm.
func (a Algorithm) Code() uint8 {
	return uint8(a)
}

// NonceSize returns the nonce or IV length in bytes.
func (a Algorithm) NonceSize() int {
	switch a {
	case AlgorithmAES256GCM, AlgorithmChaCha20Poly1305:
		return 12
	case AlgorithmAES256CBC:
		return 16
	case AlgorithmXChaCha20Poly1305:
		return 24
	default:
		return 0
	}
}

// TagSize returns the authentication tag length in bytes, 0 for
// unauthenticated algorithms.
func (a Algorithm) TagSize() int {
	if a == AlgorithmAES256CBC {
		return 0
	}
	if a.Valid() {
		return 16
	}
	return 0
}

// Authenticated reports whether the algorithm authenticates the
// ciphertext. AES-256-CBC provides no integrity protection; callers
// should prefer the AEAD variants.
func (a Algorithm) Authenticated() bool {
	return a.Valid() && a != AlgorithmAES256CBC
}

// EmbedsTag reports whether the backend keeps the authentication tag
// inside its ciphertext output rather than returning it as a separate
// metadata field. The ChaCha20 family follows the library convention of
// appending the tag to the sealed output.
func (a Algorithm) EmbedsTag() bool {
	return a == AlgorithmChaCha20Poly1305 || a == AlgorithmXChaCha20Poly1305
}

// ParseAlgorithm maps a canonical algorithm name to its Algorithm value.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "AES-256-GCM", "aes-256-gcm":
		return AlgorithmAES256GCM, nil
	case "AES-256-CBC", "aes-256-cbc":
		return AlgorithmAES256CBC, nil
	case "ChaCha20-Poly1305", "chacha20-poly1305":
		return AlgorithmChaCha20Poly1305, nil
	case "XChaCha20-Poly1305", "xchacha20-poly1305":
		return AlgorithmXChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}
