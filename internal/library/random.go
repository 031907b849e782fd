package library

import (
	"math/rand"
	"time"
)

// Rand is the single injectable randomness source behind every
// "surprise me" selection. Tests supply a fixed seed; production uses
// DefaultRand.
type Rand interface {
	// Intn returns a uniform int in [0, n). n must be > 0.
	Intn(n int) int
}

// NewRand returns a seeded source. Not safe for concurrent use by multiple
// adapters at once; give each adapter its own.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// DefaultRand returns a time-seeded source for production wiring.
func DefaultRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// PickN samples n distinct indices from [0, pool). When n >= pool all
// indices are returned. Order is random.
func PickN(r Rand, pool, n int) []int {
	if pool <= 0 || n <= 0 {
		return nil
	}
	idx := make([]int, pool)
	for i := range idx {
		idx[i] = i
	}
	for i := pool - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	if n > pool {
		n = pool
	}
	return idx[:n]
}
