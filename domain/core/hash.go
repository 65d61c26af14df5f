package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Hash represents a cryptographic hash
type Hash string

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Digest accumulates a hash over a stream of records without retaining them.
// Each record is framed so that ["ab","c"] and ["a","bc"] hash differently.
type Digest struct {
	h       hash.Hash
	records int
}

// NewDigest creates an empty digest
func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

// WriteRecord folds one record (a sequence of fields) into the digest
func (d *Digest) WriteRecord(fields ...string) {
	for _, f := range fields {
		d.h.Write([]byte{0x1f})
		d.h.Write([]byte(f))
	}
	d.h.Write([]byte{0x1e})
	d.records++
}

// Records returns how many records were written
func (d *Digest) Records() int {
	return d.records
}

// Sum returns the current hash value
func (d *Digest) Sum() Hash {
	return Hash(hex.EncodeToString(d.h.Sum(nil)))
}
