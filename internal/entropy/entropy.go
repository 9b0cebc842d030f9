// Package entropy computes Shannon entropy and byte histograms over
// byte buffers. It is used to sanity-check that ciphertext looks
// random. All functions are pure and never error; empty input yields
// zeroed results.
package entropy

import "math"

// DefaultChunkSize is the chunk length AnalyzeChunks uses when the
// caller passes a non-positive size.
const DefaultChunkSize = 4096

// Rating buckets an overall entropy value for human consumption.
type Rating string

// Ratings from best to worst
const (
	RatingExcellent Rating = "Excellent"
	RatingVeryGood  Rating = "Very Good"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingVeryPoor  Rating = "Very Poor"
)

// Chunk reports the entropy of one slice [Start, End) of the input.
type Chunk struct {
	Start   int     `json:"start"`
	End     int     `json:"end"`
	Entropy float64 `json:"entropy"`
}

// Report is the result of AnalyzeChunks.
type Report struct {
	Overall float64 `json:"overall"`
	Chunks  []Chunk `json:"chunks"`
	Rating  Rating  `json:"rating"`
	IsGood  bool    `json:"is_good"`
}

// Entropy returns the Shannon entropy of b in bits per byte, in [0, 8].
// Empty input returns 0.
func Entropy(b []byte) float64 {
	if len(b) == 0 {
		return 0
	}

	var counts [256]uint64
	for _, v := range b {
		counts[v]++
	}

	total := float64(len(b))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// Histogram returns the raw byte-value frequency counts of b.
func Histogram(b []byte) [256]uint64 {
	var counts [256]uint64
	for _, v := range b {
		counts[v]++
	}
	return counts
}

// AnalyzeChunks computes per-chunk entropy plus a length-weighted
// overall value and a rating. chunkSize <= 0 selects DefaultChunkSize.
func AnalyzeChunks(b []byte, chunkSize int) Report {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if len(b) == 0 {
		return Report{Chunks: []Chunk{}, Rating: rate(0)}
	}

	chunks := make([]Chunk, 0, (len(b)+chunkSize-1)/chunkSize)
	var weighted float64
	for start := 0; start < len(b); start += chunkSize {
		end := start + chunkSize
		if end > len(b) {
			end = len(b)
		}
		h := Entropy(b[start:end])
		chunks = append(chunks, Chunk{Start: start, End: end, Entropy: h})
		weighted += h * float64(end-start)
	}

	overall := weighted / float64(len(b))
	return Report{
		Overall: overall,
		Chunks:  chunks,
		Rating:  rate(overall),
		IsGood:  overall > 7.0,
	}
}

func rate(overall float64) Rating {
	switch {
	case overall > 7.9:
		return RatingExcellent
	case overall > 7.5:
		return RatingVeryGood
	case overall > 7.0:
		return RatingGood
	case overall > 6.5:
		return RatingFair
	case overall > 5.5:
		return RatingPoor
	default:
		return RatingVeryPoor
	}
}
