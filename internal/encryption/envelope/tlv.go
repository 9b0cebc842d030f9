package envelope

import (
	"fmt"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

// Metadata field tags. The vocabulary is closed; decoders skip tags they
// do not recognize for forward compatibility.
const (
	fieldIV      uint8 = 1
	fieldAuthTag uint8 = 2
	fieldNonce   uint8 = 3
	fieldSalt    uint8 = 4
)

// maxFieldLen is the single-byte length cap of a TLV field. Every nonce
// and tag the codec emits is far below it; the encoder still asserts it
// as a forward-compatibility guard.
const maxFieldLen = 255

// metadata holds the parsed TLV fields of one envelope.
type metadata struct {
	iv      []byte
	authTag []byte
	nonce   []byte
	salt    []byte
}

// appendField emits one [tag][len][bytes] triple. Fields are emitted in
// the fixed canonical order iv, auth_tag, nonce, salt by the caller.
func appendField(buf []byte, tag uint8, value []byte) ([]byte, error) {
	if len(value) > maxFieldLen {
		return nil, fmt.Errorf("envelope: metadata field %d exceeds %d bytes", tag, maxFieldLen)
	}
	buf = append(buf, tag, uint8(len(value)))
	return append(buf, value...), nil
}

// parseMetadata walks [tag][len][bytes] triples over the whole block.
// Unknown tags are skipped; a declared length overrunning the block is
// a truncation error.
func parseMetadata(block []byte) (*metadata, error) {
	md := &metadata{}
	for off := 0; off < len(block); {
		if off+2 > len(block) {
			return nil, types.ErrTruncatedMetadata
		}
		tag := block[off]
		n := int(block[off+1])
		off += 2
		if off+n > len(block) {
			return nil, types.ErrTruncatedMetadata
		}
		value := block[off : off+n]
		off += n

		switch tag {
		case fieldIV:
			md.iv = value
		case fieldAuthTag:
			md.authTag = value
		case fieldNonce:
			md.nonce = value
		case fieldSalt:
			md.salt = value
		default:
			// Unknown field from a newer writer; skip.
		}
	}
	return md, nil
}

// ivOrNonce returns whichever of the iv/nonce fields the algorithm uses.
func (m *metadata) ivOrNonce(a types.Algorithm) []byte {
	if a.EmbedsTag() {
		return m.nonce
	}
	return m.iv
}
