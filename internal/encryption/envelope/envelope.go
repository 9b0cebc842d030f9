// Package envelope implements the self-describing container format:
//
//	[u8 version][u8 algorithm code][u16 BE metadata len][metadata TLV...][ciphertext]
//
// The envelope carries enough metadata to decode without external
// context; the algorithm tag embedded at encode time is authoritative on
// decode.
package envelope

import (
	"encoding/binary"
	"fmt"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/backend"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/registry"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

// FormatVersion is the only envelope version this codec reads or
// writes. Decode fails closed on any other value.
const FormatVersion = 1

// headerSize covers the version and algorithm bytes.
const headerSize = 2

// Codec encodes and decodes envelopes. It is stateless apart from the
// read-only registry and safe for concurrent use.
type Codec struct {
	registry *registry.Registry
}

// NewCodec creates a codec negotiating algorithms against reg.
func NewCodec(reg *registry.Registry) *Codec {
	return &Codec{registry: reg}
}

// Encode encrypts plaintext under key with the requested algorithm and
// serializes the result. A zero or unavailable requested algorithm
// falls back to AES-256-GCM per the registry policy.
func (c *Codec) Encode(plaintext, key []byte, requested types.Algorithm) ([]byte, error) {
	if len(key) != types.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", types.ErrInvalidKeyLength, len(key), types.KeySize)
	}
	return c.encode(plaintext, key, c.registry.Resolve(requested))
}

// EncodeStrict is Encode without the fallback policy: an unknown or
// unavailable algorithm fails instead of substituting AES-256-GCM.
func (c *Codec) EncodeStrict(plaintext, key []byte, requested types.Algorithm) ([]byte, error) {
	if len(key) != types.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", types.ErrInvalidKeyLength, len(key), types.KeySize)
	}
	algorithm, err := c.registry.ResolveStrict(requested)
	if err != nil {
		return nil, err
	}
	return c.encode(plaintext, key, algorithm)
}

func (c *Codec) encode(plaintext, key []byte, algorithm types.Algorithm) ([]byte, error) {
	b, err := backend.For(algorithm)
	if err != nil {
		return nil, types.WrapError("encode", algorithm, err)
	}

	result, err := b.Encrypt(plaintext, key)
	if err != nil {
		return nil, types.WrapError("encode", algorithm, err)
	}

	// Canonical field order: iv, auth_tag, nonce, salt.
	var meta []byte
	if algorithm.EmbedsTag() {
		if meta, err = appendField(meta, fieldNonce, result.IVOrNonce); err != nil {
			return nil, types.WrapError("encode", algorithm, err)
		}
	} else {
		if meta, err = appendField(meta, fieldIV, result.IVOrNonce); err != nil {
			return nil, types.WrapError("encode", algorithm, err)
		}
		if len(result.Tag) > 0 {
			if meta, err = appendField(meta, fieldAuthTag, result.Tag); err != nil {
				return nil, types.WrapError("encode", algorithm, err)
			}
		}
	}

	out := make([]byte, 0, headerSize+2+len(meta)+len(result.Ciphertext))
	out = append(out, FormatVersion, algorithm.Code())
	out = binary.BigEndian.AppendUint16(out, uint16(len(meta)))
	out = append(out, meta...)
	out = append(out, result.Ciphertext...)
	return out, nil
}

// Decode parses an envelope and decrypts its ciphertext under key. The
// algorithm tag embedded in the envelope drives backend selection;
// there is no decode-time fallback and no retry.
func (c *Codec) Decode(envelopeBytes, key []byte) ([]byte, error) {
	return c.DecodeWithHint(envelopeBytes, key, 0)
}

// DecodeWithHint is Decode with an advisory algorithm hint. The hint is
// consulted only when the envelope's own algorithm tag is unreadable (a
// defensive legacy path); whenever the embedded tag is valid it wins.
func (c *Codec) DecodeWithHint(envelopeBytes, key []byte, hint types.Algorithm) ([]byte, error) {
	if len(envelopeBytes) < headerSize {
		return nil, types.ErrTooShort
	}
	if envelopeBytes[0] != FormatVersion {
		return nil, fmt.Errorf("%w: %d", types.ErrUnsupportedVersion, envelopeBytes[0])
	}

	algorithm, err := registry.OfCode(envelopeBytes[1])
	if err != nil {
		if !hint.Valid() {
			return nil, err
		}
		algorithm = hint
	}

	rest := envelopeBytes[headerSize:]
	if len(rest) < 2 {
		return nil, types.ErrTruncatedMetadata
	}
	metaLen := int(binary.BigEndian.Uint16(rest))
	rest = rest[2:]
	if metaLen > len(rest) {
		return nil, types.ErrTruncatedMetadata
	}

	md, err := parseMetadata(rest[:metaLen])
	if err != nil {
		return nil, err
	}
	ciphertext := rest[metaLen:]

	b, err := backend.For(algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := b.Decrypt(ciphertext, key, md.ivOrNonce(algorithm), md.authTag)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// Info describes an envelope without decrypting it. No key material is
// required.
type Info struct {
	Version        uint8
	Algorithm      types.Algorithm
	AlgorithmName  string
	IVLength       int
	AuthTagLength  int
	NonceLength    int
	SaltLength     int
	CiphertextSize int
}

// Inspect parses an envelope's header and metadata for diagnostics.
func Inspect(envelopeBytes []byte) (*Info, error) {
	if len(envelopeBytes) < headerSize {
		return nil, types.ErrTooShort
	}
	if envelopeBytes[0] != FormatVersion {
		return nil, fmt.Errorf("%w: %d", types.ErrUnsupportedVersion, envelopeBytes[0])
	}
	algorithm, err := registry.OfCode(envelopeBytes[1])
	if err != nil {
		return nil, err
	}

	rest := envelopeBytes[headerSize:]
	if len(rest) < 2 {
		return nil, types.ErrTruncatedMetadata
	}
	metaLen := int(binary.BigEndian.Uint16(rest))
	rest = rest[2:]
	if metaLen > len(rest) {
		return nil, types.ErrTruncatedMetadata
	}
	md, err := parseMetadata(rest[:metaLen])
	if err != nil {
		return nil, err
	}

	return &Info{
		Version:        envelopeBytes[0],
		Algorithm:      algorithm,
		AlgorithmName:  algorithm.String(),
		IVLength:       len(md.iv),
		AuthTagLength:  len(md.authTag),
		NonceLength:    len(md.nonce),
		SaltLength:     len(md.salt),
		CiphertextSize: len(rest) - metaLen,
	}, nil
}
