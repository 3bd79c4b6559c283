package vector

import (
	"math/rand/v2"
	"slices"

	"github.com/sw965/winrate/mathx/randx"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

func NewZeros(n int) blas32.Vector {
	return blas32.Vector{
		N:    n,
		Inc:  1,
		Data: make([]float32, n),
	}
}

func NewRademacher(n int, rng *rand.Rand) blas32.Vector {
	vec := NewZeros(n)
	for i := range vec.Data {
		vec.Data[i] = randx.Rademacher(rng)
	}
	return vec
}

func Clone(vec blas32.Vector) blas32.Vector {
	return blas32.Vector{
		N:    vec.N,
		Inc:  vec.Inc,
		Data: slices.Clone(vec.Data),
	}
}

// Affine returns wᵀx + b, where w has len(x.Data) rows and len(b.Data) columns.
func Affine(x blas32.Vector, w blas32.General, b blas32.Vector) blas32.Vector {
	y := Clone(b)
	blas32.Gemv(blas.Trans, 1.0, w, x, 1.0, y)
	return y
}
