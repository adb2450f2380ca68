package trainer

import (
	"math/rand"

	"mlstudio/ports"
)

// SeededRNG derives named, reproducible random streams from a base seed
type SeededRNG struct{}

var _ ports.RNGPort = SeededRNG{}

// SeededStream creates a deterministic random number generator for a named operation.
// The same name and seed always yield the same sequence.
func (SeededRNG) SeededStream(name string, seed int64) *rand.Rand {
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed))
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
