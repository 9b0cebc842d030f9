package encryption

import (
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// derivedKeyCache memoizes PBKDF2 output keyed by password digest, salt
// and iteration count so repeated unwraps of the same backup do not pay
// the full derivation cost each time. Entries expire after the
// configured TTL.
type derivedKeyCache struct {
	lru *expirable.LRU[[32]byte, []byte]
}

func newDerivedKeyCache(size int, ttl time.Duration) *derivedKeyCache {
	if size <= 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &derivedKeyCache{
		lru: expirable.NewLRU[[32]byte, []byte](size, nil, ttl),
	}
}

func (c *derivedKeyCache) get(password, salt []byte, iterations int) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	key, ok := c.lru.Get(cacheKey(password, salt, iterations))
	if !ok {
		return nil, false
	}
	out := make([]byte, len(key))
	copy(out, key)
	return out, true
}

func (c *derivedKeyCache) put(password, salt []byte, iterations int, derived []byte) {
	if c == nil {
		return
	}
	stored := make([]byte, len(derived))
	copy(stored, derived)
	c.lru.Add(cacheKey(password, salt, iterations), stored)
}

func cacheKey(password, salt []byte, iterations int) [32]byte {
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(password)))
	h.Write(n[:])
	h.Write(password)
	h.Write(salt)
	binary.BigEndian.PutUint64(n[:], uint64(iterations))
	h.Write(n[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
