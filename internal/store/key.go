package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/roach88/curves/internal/series"
)

// DomainSeries prefixes series key IDs. The version suffix allows changing
// the key layout without colliding with old entries.
const DomainSeries = "curves/series/v1"

// KeyID returns the content-addressed ID of a cache key:
// SHA256(domain + 0x00 + path + 0x00 + tag + 0x00 + size + mod_time).
// The null separators keep field boundaries unambiguous.
func KeyID(key series.CacheKey) string {
	h := sha256.New()
	h.Write([]byte(DomainSeries))
	h.Write([]byte{0x00})
	h.Write([]byte(key.Path))
	h.Write([]byte{0x00})
	h.Write([]byte(key.Tag))
	h.Write([]byte{0x00})

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(key.Size))
	binary.BigEndian.PutUint64(buf[8:], uint64(key.ModTime))
	h.Write(buf[:])

	return hex.EncodeToString(h.Sum(nil))
}
