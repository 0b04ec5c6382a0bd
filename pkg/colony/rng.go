package colony

import "math/rand"

// Source is the random stream an ant draws from.
// *math/rand.Rand satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// SourceFactory creates an independent Source from a seed.
type SourceFactory func(seed int64) Source

// NewSource is the default factory, backed by math/rand.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed and a stream identifier with the SplitMix64
// finalizer, so neighbouring stream ids get uncorrelated seeds.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// antSeed returns the seed of ant k in generation gen.
func antSeed(seed int64, gen, ants, k int) int64 {
	return deriveSeed(seed, uint64(gen)*uint64(ants)+uint64(k))
}
