package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmProperties(t *testing.T) {
	tests := []struct {
		algorithm     Algorithm
		name          string
		code          uint8
		nonceSize     int
		tagSize       int
		authenticated bool
		embedsTag     bool
	}{
		{AlgorithmAES256GCM, "AES-256-GCM", 1, 12, 16, true, false},
		{AlgorithmAES256CBC, "AES-256-CBC", 2, 16, 0, false, false},
		{AlgorithmChaCha20Poly1305, "ChaCha20-Poly1305", 3, 12, 16, true, true},
		{AlgorithmXChaCha20Poly1305, "XChaCha20-Poly1305", 4, 24, 16, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.algorithm.String())
			assert.Equal(t, tt.code, tt.algorithm.Code())
			assert.Equal(t, tt.nonceSize, tt.algorithm.NonceSize())
			assert.Equal(t, tt.tagSize, tt.algorithm.TagSize())
			assert.Equal(t, tt.authenticated, tt.algorithm.Authenticated())
			assert.Equal(t, tt.embedsTag, tt.algorithm.EmbedsTag())
			assert.True(t, tt.algorithm.Valid())
		})
	}

	invalid := Algorithm(9)
	assert.False(t, invalid.Valid())
	assert.Equal(t, "unknown(9)", invalid.String())
	assert.Equal(t, 0, invalid.NonceSize())
	assert.Equal(t, 0, invalid.TagSize())
}

func TestParseAlgorithm(t *testing.T) {
	for _, name := range []string{"AES-256-GCM", "aes-256-gcm"} {
		a, err := ParseAlgorithm(name)
		require.NoError(t, err)
		assert.Equal(t, AlgorithmAES256GCM, a)
	}

	// Canonical names round-trip through String.
	for _, a := range []Algorithm{AlgorithmAES256GCM, AlgorithmAES256CBC, AlgorithmChaCha20Poly1305, AlgorithmXChaCha20Poly1305} {
		parsed, err := ParseAlgorithm(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}

	_, err := ParseAlgorithm("3DES")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestCryptoError(t *testing.T) {
	wrapped := WrapError("decode", AlgorithmAES256GCM, ErrAuthenticationFailed)
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "decode")
	assert.Contains(t, wrapped.Error(), "AES-256-GCM")
	assert.True(t, IsCryptoError(wrapped))
	assert.True(t, IsAuthenticationFailed(wrapped))

	var cryptoErr *CryptoError
	require.True(t, errors.As(wrapped, &cryptoErr))
	assert.Equal(t, "decode", cryptoErr.Op)

	assert.Nil(t, WrapError("decode", AlgorithmAES256GCM, nil))
	assert.False(t, IsCryptoError(errors.New("plain")))

	noAlgo := WrapError("wrap_key", 0, ErrWeakPassword)
	assert.NotContains(t, noAlgo.Error(), "unknown(0)")
}
