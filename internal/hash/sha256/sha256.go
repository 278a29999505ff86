// Package sha256 provides SHA-256 hashing utilities.
package sha256

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Hasher hashes record identities with SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// HashFields hashes an ordered tuple. Every field is length-prefixed, so moving bytes from
// one field into a neighbour changes the digest.
func (h *Hasher) HashFields(fields ...[]byte) (string, error) {
	digest := sha256.New()
	var prefix [8]byte
	for _, f := range fields {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(f)))
		digest.Write(prefix[:]) //nolint:errcheck // hash.Hash writes never fail
		digest.Write(f)         //nolint:errcheck // hash.Hash writes never fail
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// Uint64 encodes n big-endian for use as a HashFields field.
func Uint64(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}
