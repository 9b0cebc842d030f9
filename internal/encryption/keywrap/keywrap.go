// Package keywrap wraps and unwraps data-encryption keys into small
// versioned backup blobs, either under a password-derived key or under
// a 32-byte master key.
//
// Blob layout: [u32 BE header length][UTF-8 JSON header][ciphertext].
// The KDF parameters travel inside the header so unwrap always
// re-derives with the recorded salt and iteration count, never the
// caller's assumption.
package keywrap

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

const (
	// BackupVersion is the only backup format version this helper reads
	// or writes.
	BackupVersion = 1

	// PBKDF2Iterations is fixed for new blobs; it is recorded in the
	// header so old blobs stay readable if the count ever changes.
	PBKDF2Iterations = 100000

	backupAlgorithm = "aes-256-gcm"
	kdfPBKDF2       = "pbkdf2"
	kdfNone         = "none"

	saltSize       = 32
	wrapIVSize     = 16
	minPasswordLen = 8
)

type backupHeader struct {
	Version    int    `json:"version"`
	Algorithm  string `json:"algorithm"`
	KDF        string `json:"kdf"`
	Iterations int    `json:"iterations,omitempty"`
	SaltHex    string `json:"salt_hex,omitempty"`
	IVHex      string `json:"iv_hex"`
	AuthTagHex string `json:"auth_tag_hex"`
	Timestamp  int64  `json:"timestamp"`
}

// DeriveFunc turns a password and KDF parameters into a 32-byte key.
type DeriveFunc func(password, salt []byte, iterations int) []byte

// DeriveKey is the default PBKDF2-HMAC-SHA256 derivation.
func DeriveKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, types.KeySize, sha256.New)
}

// Wrapper produces and opens key backup blobs. The zero value is not
// usable; construct with New or NewWithDeriver.
type Wrapper struct {
	derive DeriveFunc
}

// New creates a Wrapper using PBKDF2-HMAC-SHA256.
func New() *Wrapper {
	return &Wrapper{derive: DeriveKey}
}

// NewWithDeriver creates a Wrapper with a custom key derivation, e.g. a
// caching one. The derivation must be equivalent to DeriveKey.
func NewWithDeriver(derive DeriveFunc) *Wrapper {
	return &Wrapper{derive: derive}
}

// WrapWithPassword encrypts a 32-byte DEK under a key derived from
// password and returns the backup blob.
func (w *Wrapper) WrapWithPassword(password string, dek []byte) ([]byte, error) {
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: need at least %d characters", types.ErrWeakPassword, minPasswordLen)
	}
	if len(dek) != types.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", types.ErrInvalidKeyLength, len(dek), types.KeySize)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	kek := w.derive([]byte(password), salt, PBKDF2Iterations)
	defer zero(kek)

	header := backupHeader{
		Version:    BackupVersion,
		Algorithm:  backupAlgorithm,
		KDF:        kdfPBKDF2,
		Iterations: PBKDF2Iterations,
		SaltHex:    hex.EncodeToString(salt),
		Timestamp:  time.Now().Unix(),
	}
	return seal(kek, dek, header)
}

// UnwrapWithPassword opens a blob produced by WrapWithPassword. A wrong
// password and a corrupted blob are indistinguishable: both return
// types.ErrAuthenticationFailed.
func (w *Wrapper) UnwrapWithPassword(password string, blob []byte) ([]byte, error) {
	header, ciphertext, err := parseBlob(blob)
	if err != nil {
		return nil, err
	}
	if header.KDF != kdfPBKDF2 || header.Iterations <= 0 || header.SaltHex == "" {
		return nil, fmt.Errorf("%w: kdf %q", types.ErrUnsupportedBackupFormat, header.KDF)
	}

	salt, err := hex.DecodeString(header.SaltHex)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt encoding", types.ErrUnsupportedBackupFormat)
	}

	// KDF parameters come from the header, never from the caller.
	kek := w.derive([]byte(password), salt, header.Iterations)
	defer zero(kek)

	return open(kek, ciphertext, header)
}

// WrapWithMasterKey encrypts a 32-byte DEK directly under a 32-byte
// master key, without any password derivation.
func (w *Wrapper) WrapWithMasterKey(masterKey, dek []byte) ([]byte, error) {
	if len(masterKey) != types.KeySize || len(dek) != types.KeySize {
		return nil, fmt.Errorf("%w: master key and DEK must both be %d bytes", types.ErrInvalidKeyLength, types.KeySize)
	}

	header := backupHeader{
		Version:   BackupVersion,
		Algorithm: backupAlgorithm,
		KDF:       kdfNone,
		Timestamp: time.Now().Unix(),
	}
	return seal(masterKey, dek, header)
}

// UnwrapWithMasterKey opens a blob produced by WrapWithMasterKey.
func (w *Wrapper) UnwrapWithMasterKey(masterKey, blob []byte) ([]byte, error) {
	if len(masterKey) != types.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", types.ErrInvalidKeyLength, len(masterKey), types.KeySize)
	}

	header, ciphertext, err := parseBlob(blob)
	if err != nil {
		return nil, err
	}
	if header.KDF != kdfNone {
		return nil, fmt.Errorf("%w: kdf %q", types.ErrUnsupportedBackupFormat, header.KDF)
	}
	return open(masterKey, ciphertext, header)
}

// GenerateDEK returns a fresh random 32-byte data encryption key.
func GenerateDEK() ([]byte, error) {
	dek := make([]byte, types.KeySize)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return nil, fmt.Errorf("failed to generate DEK: %w", err)
	}
	return dek, nil
}

func seal(kek, dek []byte, header backupHeader) ([]byte, error) {
	gcm, err := newWrapGCM(kek)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, wrapIVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	sealed := gcm.Seal(nil, iv, dek, nil)
	tagStart := len(sealed) - gcm.Overhead()

	header.IVHex = hex.EncodeToString(iv)
	header.AuthTagHex = hex.EncodeToString(sealed[tagStart:])

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup header: %w", err)
	}

	ciphertext := sealed[:tagStart]
	out := make([]byte, 0, 4+len(headerJSON)+len(ciphertext))
	out = binary.BigEndian.AppendUint32(out, uint32(len(headerJSON)))
	out = append(out, headerJSON...)
	out = append(out, ciphertext...)
	return out, nil
}

func open(kek, ciphertext []byte, header *backupHeader) ([]byte, error) {
	iv, err := hex.DecodeString(header.IVHex)
	if err != nil || len(iv) != wrapIVSize {
		return nil, fmt.Errorf("%w: bad IV encoding", types.ErrUnsupportedBackupFormat)
	}
	tag, err := hex.DecodeString(header.AuthTagHex)
	if err != nil {
		return nil, fmt.Errorf("%w: bad auth tag encoding", types.ErrUnsupportedBackupFormat)
	}

	gcm, err := newWrapGCM(kek)
	if err != nil {
		return nil, err
	}
	if len(tag) != gcm.Overhead() {
		return nil, types.ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	dek, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, types.ErrAuthenticationFailed
	}
	if len(dek) != types.KeySize {
		return nil, types.ErrAuthenticationFailed
	}
	return dek, nil
}

func parseBlob(blob []byte) (*backupHeader, []byte, error) {
	if len(blob) < 4 {
		return nil, nil, fmt.Errorf("%w: blob too small", types.ErrUnsupportedBackupFormat)
	}
	headerLen := int(binary.BigEndian.Uint32(blob))
	if headerLen <= 0 || 4+headerLen > len(blob) {
		return nil, nil, fmt.Errorf("%w: bad header length", types.ErrUnsupportedBackupFormat)
	}

	var header backupHeader
	if err := json.Unmarshal(blob[4:4+headerLen], &header); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", types.ErrUnsupportedBackupFormat, err)
	}
	if header.Version != BackupVersion || header.Algorithm != backupAlgorithm {
		return nil, nil, fmt.Errorf("%w: version %d algorithm %q", types.ErrUnsupportedBackupFormat, header.Version, header.Algorithm)
	}
	return &header, blob[4+headerLen:], nil
}

func newWrapGCM(kek []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, wrapIVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
