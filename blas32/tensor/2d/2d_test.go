package tensor2d_test

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	tensor2d "github.com/sw965/winrate/blas32/tensor/2d"
)

func TestNewHe(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	rows, cols := 50, 400
	gen := tensor2d.NewHe(rows, cols, rng)
	if gen.Rows != rows || gen.Cols != cols || gen.Stride != cols || len(gen.Data) != rows*cols {
		t.Fatalf("want: %dx%d, got: %dx%d (stride %d, len %d)", rows, cols, gen.Rows, gen.Cols, gen.Stride, len(gen.Data))
	}

	var sum, sq float64
	for _, e := range gen.Data {
		sum += float64(e)
		sq += float64(e) * float64(e)
	}
	n := float64(len(gen.Data))
	mean := sum / n
	variance := sq/n - mean*mean

	want := 2.0 / float64(rows)
	if math.Abs(mean) > 0.01 {
		t.Errorf("mean: want: ~0, got: %f", mean)
	}
	if math.Abs(variance-want) > 0.1*want {
		t.Errorf("variance: want: %f, got: %f", want, variance)
	}
}

func TestCloneAndAxpy(t *testing.T) {
	x := tensor2d.NewZeros(2, 3)
	copy(x.Data, []float32{1, 2, 3, 4, 5, 6})

	y := tensor2d.Clone(x)
	tensor2d.Axpy(-2, x, y)

	want := []float32{-1, -2, -3, -4, -5, -6}
	if !slices.Equal(y.Data, want) {
		t.Errorf("want: %v, got: %v", want, y.Data)
	}
	if x.Data[0] != 1 {
		t.Errorf("Clone shares data with the original")
	}

	zeros := tensor2d.NewZerosLike(x)
	if zeros.Rows != 2 || zeros.Cols != 3 || slices.ContainsFunc(zeros.Data, func(e float32) bool { return e != 0 }) {
		t.Errorf("want: 2x3 zeros, got: %+v", zeros)
	}
}
