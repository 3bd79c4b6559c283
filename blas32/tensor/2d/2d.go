package tensor2d

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/stat/distuv"
)

func NewZeros(rows, cols int) blas32.General {
	return blas32.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float32, rows*cols),
	}
}

func NewZerosLike(gen blas32.General) blas32.General {
	return NewZeros(gen.Rows, gen.Cols)
}

// NewHe draws every element from N(0, 2/rows), the He initialisation for a
// layer with rows inputs.
func NewHe(rows, cols int, rng *rand.Rand) blas32.General {
	gen := NewZeros(rows, cols)
	normal := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2.0 / float64(rows)), Src: rng}
	for i := range gen.Data {
		gen.Data[i] = float32(normal.Rand())
	}
	return gen
}

func Clone(gen blas32.General) blas32.General {
	return blas32.General{
		Rows:   gen.Rows,
		Cols:   gen.Cols,
		Stride: gen.Stride,
		Data:   slices.Clone(gen.Data),
	}
}

// ToVector views the elements of a contiguous matrix as one vector.
func ToVector(gen blas32.General) blas32.Vector {
	return blas32.Vector{
		N:    len(gen.Data),
		Inc:  1,
		Data: gen.Data,
	}
}

func Axpy(alpha float32, x, y blas32.General) {
	blas32.Axpy(alpha, ToVector(x), ToVector(y))
}
