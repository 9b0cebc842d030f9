package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

func TestCodeRoundTrip(t *testing.T) {
	for code := uint8(1); code <= 4; code++ {
		a, err := OfCode(code)
		require.NoError(t, err)
		assert.Equal(t, code, CodeOf(a))
	}
}

func TestOfCodeUnknown(t *testing.T) {
	for _, code := range []uint8{0, 5, 99, 255} {
		_, err := OfCode(code)
		assert.ErrorIs(t, err, types.ErrUnknownAlgorithm, "code %d", code)
	}
}

func TestResolveDefault(t *testing.T) {
	r := New()
	assert.Equal(t, types.AlgorithmAES256GCM, r.Resolve(0))
	assert.Equal(t, types.AlgorithmAES256GCM, r.ResolveName(""))
}

func TestResolveAvailable(t *testing.T) {
	r := New()
	for _, a := range allAlgorithms {
		assert.Equal(t, a, r.Resolve(a))
	}
}

func TestResolveUnknownName(t *testing.T) {
	r := New()
	assert.Equal(t, types.AlgorithmAES256GCM, r.ResolveName("ROT13"))
}

func TestResolveUnavailableFallsBack(t *testing.T) {
	r := NewWithProbe(func(a types.Algorithm) error {
		if a == types.AlgorithmXChaCha20Poly1305 {
			return fmt.Errorf("binding failed to load")
		}
		return nil
	})

	assert.Equal(t, types.AlgorithmAES256GCM, r.Resolve(types.AlgorithmXChaCha20Poly1305))
	assert.Equal(t, types.AlgorithmChaCha20Poly1305, r.Resolve(types.AlgorithmChaCha20Poly1305))
}

func TestResolveStrict(t *testing.T) {
	r := NewWithProbe(func(a types.Algorithm) error {
		if a == types.AlgorithmChaCha20Poly1305 {
			return fmt.Errorf("binding failed to load")
		}
		return nil
	})

	a, err := r.ResolveStrict(types.AlgorithmAES256CBC)
	require.NoError(t, err)
	assert.Equal(t, types.AlgorithmAES256CBC, a)

	_, err = r.ResolveStrict(types.AlgorithmChaCha20Poly1305)
	assert.ErrorIs(t, err, types.ErrAlgorithmUnavailable)

	_, err = r.ResolveStrict(types.Algorithm(42))
	assert.ErrorIs(t, err, types.ErrUnknownAlgorithm)
}

func TestResolveStrictNoPreference(t *testing.T) {
	a, err := New().ResolveStrict(0)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAlgorithm, a)

	// The default still has to be available; no silent substitute.
	r := NewWithProbe(func(a types.Algorithm) error {
		if a == types.DefaultAlgorithm {
			return fmt.Errorf("binding failed to load")
		}
		return nil
	})
	_, err = r.ResolveStrict(0)
	assert.ErrorIs(t, err, types.ErrAlgorithmUnavailable)
}

func TestListExcludesUnavailable(t *testing.T) {
	r := NewWithProbe(func(a types.Algorithm) error {
		if a == types.AlgorithmAES256CBC {
			return fmt.Errorf("binding failed to load")
		}
		return nil
	})

	list := r.List()
	require.Len(t, list, 3)
	for _, d := range list {
		assert.NotEqual(t, types.AlgorithmAES256CBC, d.Algorithm)
		assert.True(t, d.Available)
		assert.NotEmpty(t, d.Description)
	}
}

func TestListAll(t *testing.T) {
	list := New().List()
	require.Len(t, list, 4)

	// Wire-code order, stable across versions.
	for i, d := range list {
		assert.Equal(t, uint8(i+1), d.Code)
	}
}

func TestDescriptorSizes(t *testing.T) {
	tests := []struct {
		algorithm types.Algorithm
		nonceSize int
		tagSize   int
	}{
		{types.AlgorithmAES256GCM, 12, 16},
		{types.AlgorithmAES256CBC, 16, 0},
		{types.AlgorithmChaCha20Poly1305, 12, 16},
		{types.AlgorithmXChaCha20Poly1305, 24, 16},
	}

	r := New()
	list := r.List()
	require.Len(t, list, len(tests))
	for i, tt := range tests {
		t.Run(tt.algorithm.String(), func(t *testing.T) {
			assert.Equal(t, tt.nonceSize, list[i].NonceSize)
			assert.Equal(t, tt.tagSize, list[i].TagSize)
		})
	}
}
