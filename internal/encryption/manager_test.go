package encryption

import (
	"crypto/rand"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/config"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/registry"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

func testConfig() config.EncryptionConfig {
	return config.EncryptionConfig{
		PreferredAlgorithm:  "AES-256-GCM",
		DerivedKeyCacheSize: 8,
		DerivedKeyCacheTTL:  time.Minute,
	}
}

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, types.KeySize)
	_, err := io.ReadFull(rand.Reader, key)
	require.NoError(t, err)
	return key
}

func TestManagerRoundTrip(t *testing.T) {
	mgr := NewManager(testConfig(), nil)
	key := randomKey(t)
	plaintext := []byte("service level round trip")

	envelopeBytes, err := mgr.Encrypt(plaintext, key)
	require.NoError(t, err)

	decoded, err := mgr.Decrypt(envelopeBytes, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decoded)
}

func TestManagerEncryptWith(t *testing.T) {
	mgr := NewManager(testConfig(), nil)
	key := randomKey(t)

	envelopeBytes, err := mgr.EncryptWith([]byte("payload"), key, "XChaCha20-Poly1305")
	require.NoError(t, err)

	info, err := mgr.Inspect(envelopeBytes)
	require.NoError(t, err)
	assert.Equal(t, types.AlgorithmXChaCha20Poly1305, info.Algorithm)
}

func TestManagerUnknownAlgorithmFallsBack(t *testing.T) {
	mgr := NewManager(testConfig(), nil)
	key := randomKey(t)

	envelopeBytes, err := mgr.EncryptWith([]byte("payload"), key, "DES")
	require.NoError(t, err)

	info, err := mgr.Inspect(envelopeBytes)
	require.NoError(t, err)
	assert.Equal(t, types.AlgorithmAES256GCM, info.Algorithm)
}

func TestManagerStrictRejectsUnknown(t *testing.T) {
	cfg := testConfig()
	cfg.Strict = true
	mgr := NewManager(cfg, nil)

	_, err := mgr.EncryptWith([]byte("payload"), randomKey(t), "DES")
	assert.ErrorIs(t, err, types.ErrUnknownAlgorithm)
}

func TestManagerStrictNoPreference(t *testing.T) {
	cfg := testConfig()
	cfg.Strict = true
	mgr := NewManager(cfg, nil)
	key := randomKey(t)

	envelopeBytes, err := mgr.EncryptWith([]byte("payload"), key, "")
	require.NoError(t, err)

	info, err := mgr.Inspect(envelopeBytes)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAlgorithm, info.Algorithm)
}

func TestManagerStrictUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.Strict = true
	reg := registry.NewWithProbe(func(a types.Algorithm) error {
		if a == types.AlgorithmChaCha20Poly1305 {
			return fmt.Errorf("binding failed to load")
		}
		return nil
	})
	mgr := NewManagerWithRegistry(cfg, nil, reg)

	_, err := mgr.EncryptWith([]byte("payload"), randomKey(t), "ChaCha20-Poly1305")
	assert.ErrorIs(t, err, types.ErrAlgorithmUnavailable)
}

func TestManagerFallbackTagsDefault(t *testing.T) {
	reg := registry.NewWithProbe(func(a types.Algorithm) error {
		if a == types.AlgorithmXChaCha20Poly1305 {
			return fmt.Errorf("binding failed to load")
		}
		return nil
	})
	mgr := NewManagerWithRegistry(testConfig(), nil, reg)
	key := randomKey(t)

	envelopeBytes, err := mgr.EncryptWith([]byte("payload"), key, "XChaCha20-Poly1305")
	require.NoError(t, err)

	info, err := mgr.Inspect(envelopeBytes)
	require.NoError(t, err)
	assert.Equal(t, types.AlgorithmAES256GCM, info.Algorithm)
}

func TestManagerKeyWrap(t *testing.T) {
	mgr := NewManager(testConfig(), nil)

	dek, err := mgr.GenerateDEK()
	require.NoError(t, err)

	blob, err := mgr.WrapKey("service password", dek)
	require.NoError(t, err)

	recovered, err := mgr.UnwrapKey("service password", blob)
	require.NoError(t, err)
	assert.Equal(t, dek, recovered)

	// Second unwrap hits the derived-key cache; result is identical.
	recovered, err = mgr.UnwrapKey("service password", blob)
	require.NoError(t, err)
	assert.Equal(t, dek, recovered)

	_, err = mgr.UnwrapKey("wrong password!", blob)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailed)
}

func TestManagerMasterKeyWrap(t *testing.T) {
	mgr := NewManager(testConfig(), nil)
	masterKey := randomKey(t)

	dek, err := mgr.GenerateDEK()
	require.NoError(t, err)

	blob, err := mgr.WrapKeyWithMaster(masterKey, dek)
	require.NoError(t, err)

	recovered, err := mgr.UnwrapKeyWithMaster(masterKey, blob)
	require.NoError(t, err)
	assert.Equal(t, dek, recovered)
}

func TestManagerUnwrapThrottle(t *testing.T) {
	cfg := testConfig()
	cfg.UnwrapRatePerSecond = 0.001
	cfg.UnwrapBurst = 2
	mgr := NewManager(cfg, nil)

	dek, err := mgr.GenerateDEK()
	require.NoError(t, err)
	blob, err := mgr.WrapKey("throttle password", dek)
	require.NoError(t, err)

	for i := 0; i < cfg.UnwrapBurst; i++ {
		_, err := mgr.UnwrapKey("throttle password", blob)
		require.NoError(t, err)
	}

	_, err = mgr.UnwrapKey("throttle password", blob)
	assert.ErrorIs(t, err, ErrUnwrapThrottled)
}

func TestManagerAlgorithms(t *testing.T) {
	mgr := NewManager(testConfig(), nil)
	list := mgr.Algorithms()
	require.Len(t, list, 4)
	assert.Equal(t, "AES-256-GCM", list[0].Name)
}

func TestDerivedKeyCache(t *testing.T) {
	cache := newDerivedKeyCache(4, time.Minute)
	password := []byte("cache password")
	salt := []byte("salt value")

	_, ok := cache.get(password, salt, 1000)
	assert.False(t, ok)

	derived := []byte("derived key material")
	cache.put(password, salt, 1000, derived)

	got, ok := cache.get(password, salt, 1000)
	require.True(t, ok)
	assert.Equal(t, derived, got)

	// Different iteration count is a different entry.
	_, ok = cache.get(password, salt, 2000)
	assert.False(t, ok)

	// Disabled cache never hits.
	var disabled *derivedKeyCache
	disabled.put(password, salt, 1000, derived)
	_, ok = disabled.get(password, salt, 1000)
	assert.False(t, ok)
}
