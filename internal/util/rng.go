package util

import "math/rand"

func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

// RunSeed derives the seed of the i-th battle of a batch from the base seed.
// It depends only on i so results do not change with the worker count.
func RunSeed(base int64, i int) int64 {
	return base + int64(i)*7919
}
