package entropy

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntropyEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Entropy(nil))
	assert.Equal(t, 0.0, Entropy([]byte{}))
}

func TestEntropyAllZero(t *testing.T) {
	buf := make([]byte, 4096)
	assert.Equal(t, 0.0, Entropy(buf))
}

func TestEntropyTwoSymbols(t *testing.T) {
	// Half 0x00, half 0xFF has exactly one bit of entropy per byte.
	buf := make([]byte, 1024)
	for i := 512; i < 1024; i++ {
		buf[i] = 0xFF
	}
	assert.InDelta(t, 1.0, Entropy(buf), 1e-9)
}

func TestEntropyUniform(t *testing.T) {
	// Every byte value equally often is exactly 8 bits per byte.
	buf := make([]byte, 256*16)
	for i := range buf {
		buf[i] = byte(i % 256)
	}
	assert.InDelta(t, 8.0, Entropy(buf), 1e-9)
}

func TestEntropyRandom(t *testing.T) {
	buf := make([]byte, 64*1024)
	_, err := io.ReadFull(rand.Reader, buf)
	require.NoError(t, err)

	assert.Greater(t, Entropy(buf), 7.9)
}

func TestHistogram(t *testing.T) {
	counts := Histogram([]byte{0, 0, 1, 255})
	assert.Equal(t, uint64(2), counts[0])
	assert.Equal(t, uint64(1), counts[1])
	assert.Equal(t, uint64(1), counts[255])
	assert.Equal(t, uint64(0), counts[7])

	empty := Histogram(nil)
	for _, c := range empty {
		assert.Equal(t, uint64(0), c)
	}
}

func TestAnalyzeChunksEmpty(t *testing.T) {
	report := AnalyzeChunks(nil, 0)
	assert.Equal(t, 0.0, report.Overall)
	assert.Empty(t, report.Chunks)
	assert.Equal(t, RatingVeryPoor, report.Rating)
	assert.False(t, report.IsGood)
}

func TestAnalyzeChunksBounds(t *testing.T) {
	buf := make([]byte, 10000)
	_, err := io.ReadFull(rand.Reader, buf)
	require.NoError(t, err)

	report := AnalyzeChunks(buf, 4096)
	require.Len(t, report.Chunks, 3)
	assert.Equal(t, 0, report.Chunks[0].Start)
	assert.Equal(t, 4096, report.Chunks[0].End)
	assert.Equal(t, 8192, report.Chunks[2].Start)
	assert.Equal(t, 10000, report.Chunks[2].End)
	assert.True(t, report.IsGood)
}

func TestAnalyzeChunksWeightedOverall(t *testing.T) {
	// One full-entropy chunk and one zero chunk of equal size average
	// to half the per-chunk entropy.
	buf := make([]byte, 512)
	for i := 0; i < 256; i++ {
		buf[i] = byte(i)
	}
	report := AnalyzeChunks(buf, 256)
	require.Len(t, report.Chunks, 2)
	assert.InDelta(t, 8.0, report.Chunks[0].Entropy, 1e-9)
	assert.InDelta(t, 0.0, report.Chunks[1].Entropy, 1e-9)
	assert.InDelta(t, 4.0, report.Overall, 1e-9)
	assert.Equal(t, RatingVeryPoor, report.Rating)
}

func TestRatingThresholds(t *testing.T) {
	tests := []struct {
		overall float64
		want    Rating
	}{
		{7.95, RatingExcellent},
		{7.7, RatingVeryGood},
		{7.2, RatingGood},
		{6.8, RatingFair},
		{6.0, RatingPoor},
		{3.0, RatingVeryPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rate(tt.overall), "overall %.2f", tt.overall)
	}
}
