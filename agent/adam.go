package agent

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

var ErrGradsSize = errors.New("parameters and gradients differ in size")

type Adam struct {
	LearningRate float32
	Beta1        float32
	Beta2        float32
	Epsilon      float32

	iter int
	m    GradBuffers
	v    GradBuffers
}

// NewAdam returns an Adam whose moment buffers are zeros shaped like params.
func NewAdam(params Parameters, learningRate float32) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		m:            params.NewGradsZerosLike(),
		v:            params.NewGradsZerosLike(),
	}
}

// Optimize updates params in place with one Adam step along grads.
func (a *Adam) Optimize(params Parameters, grads GradBuffers) error {
	if len(params) != len(grads) || len(params) != len(a.m) {
		return fmt.Errorf("%w: parameters %d, gradients %d, moments %d", ErrGradsSize, len(params), len(grads), len(a.m))
	}

	a.iter++
	t := float32(a.iter)
	lrt := a.LearningRate * math32.Sqrt(1-math32.Pow(a.Beta2, t)) / (1 - math32.Pow(a.Beta1, t))

	step := func(ps, gs, ms, vs []float32) {
		for j, g := range gs {
			ms[j] += (1 - a.Beta1) * (g - ms[j])
			vs[j] += (1 - a.Beta2) * (g*g - vs[j])
			ps[j] -= lrt * ms[j] / (math32.Sqrt(vs[j]) + a.Epsilon)
		}
	}

	for i := range grads {
		step(params[i].Weight.Data, grads[i].Weight.Data, a.m[i].Weight.Data, a.v[i].Weight.Data)
		step(params[i].Bias.Data, grads[i].Bias.Data, a.m[i].Bias.Data, a.v[i].Bias.Data)
	}
	return nil
}

func (a *Adam) Clone() *Adam {
	c := *a
	c.m = a.m.Clone()
	c.v = a.v.Clone()
	return &c
}
