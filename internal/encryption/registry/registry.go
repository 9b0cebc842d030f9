// Package registry holds the static algorithm metadata used for
// negotiation and for UI enumeration.
package registry

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/backend"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

// Descriptor describes one algorithm for negotiation and listing.
type Descriptor struct {
	Algorithm   types.Algorithm
	Name        string
	Code        uint8
	NonceSize   int
	TagSize     int
	Available   bool
	Description string
}

// ProbeFunc reports whether an algorithm's primitive loaded. The
// default probes the real backends; tests substitute their own.
type ProbeFunc func(types.Algorithm) error

var allAlgorithms = []types.Algorithm{
	types.AlgorithmAES256GCM,
	types.AlgorithmAES256CBC,
	types.AlgorithmChaCha20Poly1305,
	types.AlgorithmXChaCha20Poly1305,
}

var descriptions = map[types.Algorithm]string{
	types.AlgorithmAES256GCM:         "AES-256 in Galois/Counter mode; authenticated, hardware accelerated on most platforms",
	types.AlgorithmAES256CBC:         "AES-256 in CBC mode with PKCS#7 padding; no integrity protection",
	types.AlgorithmChaCha20Poly1305:  "ChaCha20 stream cipher with Poly1305 authenticator",
	types.AlgorithmXChaCha20Poly1305: "ChaCha20-Poly1305 with an extended 24-byte nonce",
}

// Registry resolves requested algorithms against the set whose backends
// actually loaded. Availability is probed once, lazily; after that the
// registry is read-only and safe for concurrent use.
type Registry struct {
	once        sync.Once
	probe       ProbeFunc
	descriptors map[types.Algorithm]*Descriptor
}

// New creates a registry probing the real cipher backends.
func New() *Registry {
	return &Registry{probe: backend.Probe}
}

// NewWithProbe creates a registry with a custom availability probe.
func NewWithProbe(probe ProbeFunc) *Registry {
	return &Registry{probe: probe}
}

func (r *Registry) init() {
	r.once.Do(func() {
		r.descriptors = make(map[types.Algorithm]*Descriptor, len(allAlgorithms))
		for _, a := range allAlgorithms {
			available := true
			if err := r.probe(a); err != nil {
				available = false
				logrus.WithFields(logrus.Fields{
					"algorithm": a.String(),
					"error":     err.Error(),
				}).Warn("Encryption backend failed to load, marking unavailable")
			}
			r.descriptors[a] = &Descriptor{
				Algorithm:   a,
				Name:        a.String(),
				Code:        a.Code(),
				NonceSize:   a.NonceSize(),
				TagSize:     a.TagSize(),
				Available:   available,
				Description: descriptions[a],
			}
		}
	})
}

// Available reports whether the algorithm's backend loaded.
func (r *Registry) Available(a types.Algorithm) bool {
	r.init()
	d, ok := r.descriptors[a]
	return ok && d.Available
}

// Resolve returns the algorithm to use for an encode operation. A zero
// value, an unknown value or an unavailable algorithm falls back to
// AES-256-GCM; the substitution is logged. Fallback keeps the system
// usable when optional native crypto bindings fail to load and applies
// to encode paths only, never to decode.
func (r *Registry) Resolve(requested types.Algorithm) types.Algorithm {
	r.init()
	if requested == 0 {
		return types.DefaultAlgorithm
	}
	if r.Available(requested) {
		return requested
	}
	logrus.WithFields(logrus.Fields{
		"requested": requested.String(),
		"fallback":  types.DefaultAlgorithm.String(),
	}).Warn("Requested encryption algorithm unavailable, falling back")
	return types.DefaultAlgorithm
}

// ResolveName is Resolve for callers holding an algorithm name. An
// empty or unparseable name falls back like an unavailable algorithm.
func (r *Registry) ResolveName(name string) types.Algorithm {
	if name == "" {
		return types.DefaultAlgorithm
	}
	a, err := types.ParseAlgorithm(name)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"requested": name,
			"fallback":  types.DefaultAlgorithm.String(),
		}).Warn("Unknown encryption algorithm name, falling back")
		return types.DefaultAlgorithm
	}
	return r.Resolve(a)
}

// ResolveStrict returns the requested algorithm or an error; it never
// substitutes. A zero value states no preference and selects
// AES-256-GCM, which is still checked for availability like any other
// request. Callers that must fail rather than silently switch
// algorithms use this shape.
func (r *Registry) ResolveStrict(requested types.Algorithm) (types.Algorithm, error) {
	r.init()
	if requested == 0 {
		requested = types.DefaultAlgorithm
	}
	if !requested.Valid() {
		return 0, fmt.Errorf("%w: code %d", types.ErrUnknownAlgorithm, requested.Code())
	}
	if !r.Available(requested) {
		return 0, fmt.Errorf("%w: %s", types.ErrAlgorithmUnavailable, requested)
	}
	return requested, nil
}

// List returns descriptors for the available algorithms, in wire-code
// order, for UI enumeration.
func (r *Registry) List() []Descriptor {
	r.init()
	out := make([]Descriptor, 0, len(allAlgorithms))
	for _, a := range allAlgorithms {
		if d := r.descriptors[a]; d.Available {
			out = append(out, *d)
		}
	}
	return out
}

// CodeOf returns the stable wire code of an algorithm.
func CodeOf(a types.Algorithm) uint8 {
	return a.Code()
}

// OfCode maps a wire code back to its algorithm. CodeOf and OfCode
// round-trip for all defined codes.
func OfCode(code uint8) (types.Algorithm, error) {
	a := types.Algorithm(code)
	if !a.Valid() {
		return 0, fmt.Errorf("%w: code %d", types.ErrUnknownAlgorithm, code)
	}
	return a, nil
}
