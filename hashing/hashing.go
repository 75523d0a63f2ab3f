// Package hashing provides the single 64-bit hash primitive every other
// component in this repository builds on: the low 64 bits of MurmurHash3
// x64_128, with a caller-supplied seed.
package hashing

import "github.com/spaolacci/murmur3"

// DefaultSeed is the seed every Sketch uses unless told otherwise.
const DefaultSeed uint32 = 42

// Hash64 returns the low 64 bits of MurmurHash3's x64_128 digest of data,
// computed with the given seed. It is deterministic and endian-stable:
// the same (data, seed) pair always yields the same value regardless of
// host byte order.
func Hash64(data []byte, seed uint32) uint64 {
	h1, _ := murmur3.Sum128WithSeed(data, seed)
	return h1
}
