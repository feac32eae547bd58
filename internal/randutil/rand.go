// Package randutil builds math/rand/v2 generators for deck shuffling.
// Rooms take a fresh generator per table; tests pin a seed so the same
// deals come out every run.
package randutil

import rand "math/rand/v2"

// SplitMix64 increment and finalizer constants.
const (
	golden = 0x9e3779b97f4a7c15
	mulA   = 0xbf58476d1ce4e5b9
	mulB   = 0x94d049bb133111eb
)

// New returns a generator seeded deterministically from seed. rand/v2's
// PCG takes two 64-bit seeds; deriving both from the one value keeps call
// sites reproducible with a single number.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+golden)))
}

// NewRandom returns a generator seeded from the process-wide source, for
// rooms that should shuffle differently every run.
func NewRandom() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// mix is the SplitMix64 finalizer. It spreads small or correlated seeds
// across all 64 bits so neighbouring seeds do not produce related streams.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= mulA
	x ^= x >> 27
	x *= mulB
	x ^= x >> 31
	return x
}
