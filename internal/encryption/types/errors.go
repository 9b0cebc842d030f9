package types

import (
	"errors"
	"fmt"
)

// Error kinds returned by the codec
var (
	// ErrInvalidKeyLength indicates a key that is not exactly KeySize bytes
	ErrInvalidKeyLength = errors.New("encryption: invalid key length")

	// ErrWeakPassword indicates a password shorter than the minimum length
	ErrWeakPassword = errors.New("encryption: password too short")

	// ErrTooShort indicates an envelope too small to carry a header
	ErrTooShort = errors.New("encryption: envelope too short")

	// ErrTruncatedMetadata indicates a metadata block whose declared length
	// exceeds the remaining buffer
	ErrTruncatedMetadata = errors.New("encryption: truncated envelope metadata")

	// ErrUnsupportedVersion indicates an envelope format version this codec
	// does not understand
	ErrUnsupportedVersion = errors.New("encryption: unsupported envelope version")

	// ErrUnknownAlgorithm indicates an algorithm code or name outside the
	// defined set
	ErrUnknownAlgorithm = errors.New("encryption: unknown algorithm")

	// ErrUnsupportedBackupFormat indicates a key backup blob with an
	// unrecognized version, algorithm or KDF
	ErrUnsupportedBackupFormat = errors.New("encryption: unsupported key backup format")

	// ErrAuthenticationFailed indicates the ciphertext could not be
	// authenticated. The cause (wrong key, wrong password, tampering) is
	// deliberately not distinguished.
	ErrAuthenticationFailed = errors.New("encryption: authentication failed")

	// ErrAlgorithmUnavailable indicates an explicitly requested algorithm
	// whose backend did not load; only strict call paths surface it
	ErrAlgorithmUnavailable = errors.New("encryption: algorithm unavailable")
)

// CryptoError wraps codec errors with operation context
type CryptoError struct {
	Op        string    // Operation that failed
	Algorithm Algorithm // Algorithm involved, 0 if not applicable
	Err       error     // Underlying error
}

// Error implements the error interface
func (e *CryptoError) Error() string {
	if e.Algorithm != 0 {
		return fmt.Sprintf("encryption %s failed for %s: %v", e.Op, e.Algorithm, e.Err)
	}
	return fmt.Sprintf("encryption %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *CryptoError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with codec operation context
func WrapError(op string, algorithm Algorithm, err error) error {
	if err == nil {
		return nil
	}

	return &CryptoError{
		Op:        op,
		Algorithm: algorithm,
		Err:       err,
	}
}

// IsCryptoError checks if an error is a codec error
func IsCryptoError(err error) bool {
	var cryptoErr *CryptoError
	return errors.As(err, &cryptoErr)
}

// IsAuthenticationFailed checks if an error is an authentication failure
func IsAuthenticationFailed(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}
