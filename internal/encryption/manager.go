// Package encryption ties the algorithm registry, container codec and
// key-wrap helper together behind the service API the application uses.
package encryption

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/config"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/envelope"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/keywrap"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/registry"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/entropy"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/metrics"
)

// ErrUnwrapThrottled indicates a password-unwrap attempt rejected by the
// rate limiter before any cryptographic work ran.
var ErrUnwrapThrottled = errors.New("encryption: key unwrap throttled")

// Manager coordinates codec operations. It holds no per-call state and
// is safe for concurrent use.
type Manager struct {
	cfg       config.EncryptionConfig
	registry  *registry.Registry
	codec     *envelope.Codec
	wrapper   *keywrap.Wrapper
	metrics   *metrics.Metrics
	keyCache  *derivedKeyCache
	unwrapLim *rate.Limiter
	preferred types.Algorithm
}

// NewManager creates a manager from configuration. metrics may be nil.
func NewManager(cfg config.EncryptionConfig, m *metrics.Metrics) *Manager {
	reg := registry.New()

	mgr := &Manager{
		cfg:      cfg,
		registry: reg,
		codec:    envelope.NewCodec(reg),
		metrics:  m,
		keyCache: newDerivedKeyCache(cfg.DerivedKeyCacheSize, cfg.DerivedKeyCacheTTL),
	}

	if cfg.UnwrapRatePerSecond > 0 {
		burst := cfg.UnwrapBurst
		if burst <= 0 {
			burst = 1
		}
		mgr.unwrapLim = rate.NewLimiter(rate.Limit(cfg.UnwrapRatePerSecond), burst)
	}

	mgr.wrapper = keywrap.NewWithDeriver(mgr.deriveKey)

	if cfg.PreferredAlgorithm != "" {
		if a, err := types.ParseAlgorithm(cfg.PreferredAlgorithm); err == nil {
			mgr.preferred = a
		}
	}

	return mgr
}

// NewManagerWithRegistry is NewManager with a caller-supplied registry;
// tests use it to simulate unavailable backends.
func NewManagerWithRegistry(cfg config.EncryptionConfig, m *metrics.Metrics, reg *registry.Registry) *Manager {
	mgr := NewManager(cfg, m)
	mgr.registry = reg
	mgr.codec = envelope.NewCodec(reg)
	return mgr
}

// Encrypt encodes plaintext under the configured preferred algorithm.
func (m *Manager) Encrypt(plaintext, key []byte) ([]byte, error) {
	return m.encrypt(plaintext, key, m.preferred)
}

// EncryptWith encodes plaintext under the named algorithm, overriding
// the configured preference for this call.
func (m *Manager) EncryptWith(plaintext, key []byte, algorithm string) ([]byte, error) {
	requested := types.Algorithm(0)
	if algorithm != "" {
		a, err := types.ParseAlgorithm(algorithm)
		if err == nil {
			requested = a
		} else if m.cfg.Strict {
			return nil, err
		}
	}
	return m.encrypt(plaintext, key, requested)
}

func (m *Manager) encrypt(plaintext, key []byte, requested types.Algorithm) ([]byte, error) {
	start := time.Now()

	var out []byte
	var err error
	if m.cfg.Strict {
		out, err = m.codec.EncodeStrict(plaintext, key, requested)
	} else {
		out, err = m.codec.Encode(plaintext, key, requested)
	}

	// The envelope's own tag says which algorithm actually ran.
	resolved := requested
	if err == nil && len(out) > 1 {
		if a, codeErr := registry.OfCode(out[1]); codeErr == nil {
			resolved = a
		}
	}
	if err == nil && requested != 0 && resolved != requested {
		m.metrics.RecordFallback(requested.String())
	}
	if resolved == 0 {
		resolved = types.DefaultAlgorithm
	}

	m.metrics.RecordOperation("encrypt", resolved.String(), start, len(plaintext), err)
	if err != nil {
		return nil, err
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		report := entropy.AnalyzeChunks(out, 0)
		logrus.WithFields(logrus.Fields{
			"algorithm": resolved.String(),
			"entropy":   report.Overall,
			"rating":    string(report.Rating),
		}).Debug("Ciphertext entropy check")
	}

	return out, nil
}

// Decrypt decodes an envelope. The algorithm embedded in the envelope
// is authoritative; decode failures are final and never retried.
func (m *Manager) Decrypt(envelopeBytes, key []byte) ([]byte, error) {
	start := time.Now()
	plaintext, err := m.codec.Decode(envelopeBytes, key)

	algorithm := "unknown"
	if info, infoErr := envelope.Inspect(envelopeBytes); infoErr == nil {
		algorithm = info.AlgorithmName
	}
	m.metrics.RecordOperation("decrypt", algorithm, start, len(envelopeBytes), err)

	return plaintext, err
}

// WrapKey produces a password-protected backup blob for a DEK.
func (m *Manager) WrapKey(password string, dek []byte) ([]byte, error) {
	start := time.Now()
	blob, err := m.wrapper.WrapWithPassword(password, dek)
	m.metrics.RecordOperation("wrap_key", "AES-256-GCM", start, len(dek), err)
	return blob, err
}

// UnwrapKey opens a password-protected backup blob. Attempts are rate
// limited to slow down password brute forcing.
func (m *Manager) UnwrapKey(password string, blob []byte) ([]byte, error) {
	if m.unwrapLim != nil && !m.unwrapLim.Allow() {
		m.metrics.RecordUnwrapThrottled()
		return nil, ErrUnwrapThrottled
	}

	start := time.Now()
	dek, err := m.wrapper.UnwrapWithPassword(password, blob)
	m.metrics.RecordOperation("unwrap_key", "AES-256-GCM", start, len(blob), err)
	return dek, err
}

// WrapKeyWithMaster wraps a DEK directly under a 32-byte master key.
func (m *Manager) WrapKeyWithMaster(masterKey, dek []byte) ([]byte, error) {
	start := time.Now()
	blob, err := m.wrapper.WrapWithMasterKey(masterKey, dek)
	m.metrics.RecordOperation("wrap_key_master", "AES-256-GCM", start, len(dek), err)
	return blob, err
}

// UnwrapKeyWithMaster opens a master-key backup blob.
func (m *Manager) UnwrapKeyWithMaster(masterKey, blob []byte) ([]byte, error) {
	start := time.Now()
	dek, err := m.wrapper.UnwrapWithMasterKey(masterKey, blob)
	m.metrics.RecordOperation("unwrap_key_master", "AES-256-GCM", start, len(blob), err)
	return dek, err
}

// GenerateDEK returns a fresh random data encryption key.
func (m *Manager) GenerateDEK() ([]byte, error) {
	return keywrap.GenerateDEK()
}

// Algorithms lists the available algorithms for UI enumeration.
func (m *Manager) Algorithms() []registry.Descriptor {
	return m.registry.List()
}

// Inspect describes an envelope without decrypting it.
func (m *Manager) Inspect(envelopeBytes []byte) (*envelope.Info, error) {
	return envelope.Inspect(envelopeBytes)
}

// deriveKey is the wrapper's key derivation with the derived-key cache
// in front of PBKDF2.
func (m *Manager) deriveKey(password, salt []byte, iterations int) []byte {
	if derived, ok := m.keyCache.get(password, salt, iterations); ok {
		m.metrics.RecordKeyCache(true)
		return derived
	}
	m.metrics.RecordKeyCache(false)

	derived := keywrap.DeriveKey(password, salt, iterations)
	m.keyCache.put(password, salt, iterations, derived)
	return derived
}
