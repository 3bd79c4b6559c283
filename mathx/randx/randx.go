package randx

import (
	"math/rand/v2"

	"github.com/sw965/omw/mathx/randx"
)

// Rademacher returns +1 or -1 with equal probability.
func Rademacher(rng *rand.Rand) float32 {
	if randx.Bool(rng) {
		return 1.0
	}
	return -1.0
}

// NewRNGs derives n independent generators from rng, one per parallel worker.
func NewRNGs(n int, rng *rand.Rand) []*rand.Rand {
	rngs := make([]*rand.Rand, n)
	for i := range rngs {
		rngs[i] = rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
	}
	return rngs
}
