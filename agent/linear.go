// Package agent provides trainable action-value models that can act as
// policy oracles for the solver.
package agent

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/sw965/winrate/blas32/vector"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
	"gonum.org/v1/gonum/blas/blas32"
)

var ErrFeatureSize = errors.New("feature size mismatch")

const initScale = 0.01

// Linear estimates the win probability of taking each action with
// q(x, a) = sigmoid(w_a·x + b_a).
//
// Methods that only read the parameters are safe for concurrent use.
type Linear struct {
	// Weight has one row per feature and one column per action.
	Weight       blas32.General
	Bias         blas32.Vector
	LearningRate float32
}

func NewLinear(featureSize int, learningRate float32, rng *rand.Rand) *Linear {
	n := len(bj.Actions)
	noise := vector.NewRademacher(featureSize*n, rng)
	blas32.Scal(initScale, noise)
	return &Linear{
		Weight: blas32.General{
			Rows:   featureSize,
			Cols:   n,
			Stride: n,
			Data:   noise.Data,
		},
		Bias:         vector.NewZeros(n),
		LearningRate: learningRate,
	}
}

func (l *Linear) FeatureSize() int {
	return l.Weight.Rows
}

func (l *Linear) Logits(features []float32) ([]float32, error) {
	if len(features) != l.Weight.Rows {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrFeatureSize, l.Weight.Rows, len(features))
	}
	x := blas32.Vector{N: len(features), Inc: 1, Data: features}
	return vector.Affine(x, l.Weight, l.Bias).Data, nil
}

// ActionValues returns q(x, a) for every action, indexed by Action.
func (l *Linear) ActionValues(features []float32) ([]float32, error) {
	u, err := l.Logits(features)
	if err != nil {
		return nil, err
	}
	for i := range u {
		u[i] = sigmoid(u[i])
	}
	return u, nil
}

// ChooseAction returns the action with the highest value. Ties go to Stay.
func (l *Linear) ChooseAction(features []float32) (bj.Action, error) {
	ys, err := l.ActionValues(features)
	if err != nil {
		return 0, err
	}
	return argmaxAction(ys), nil
}

func (l *Linear) MaxActionValue(features []float32) (float32, error) {
	ys, err := l.ActionValues(features)
	if err != nil {
		return 0, err
	}
	return maxValue(ys), nil
}

// Loss is the binary cross-entropy between q(x, action) and target.
func (l *Linear) Loss(features []float32, action bj.Action, target float32) (float32, error) {
	if err := action.Validate(); err != nil {
		return 0, err
	}

	ys, err := l.ActionValues(features)
	if err != nil {
		return 0, err
	}

	return binaryCrossEntropy(ys[action], target), nil
}

// Update takes one gradient step on Loss.
func (l *Linear) Update(features []float32, action bj.Action, target float32) error {
	if err := action.Validate(); err != nil {
		return err
	}

	ys, err := l.ActionValues(features)
	if err != nil {
		return err
	}

	// y = sigmoid(u), L = BCE(y, t)
	// dL/du = y - t
	dLdu := ys[action] - target

	// u = w_a·x + b_a
	// dL/dw_a = dL/du * x, dL/db_a = dL/du
	x := blas32.Vector{N: len(features), Inc: 1, Data: features}
	column := blas32.Vector{N: l.Weight.Rows, Inc: l.Weight.Stride, Data: l.Weight.Data[int(action):]}
	blas32.Axpy(-l.LearningRate*dLdu, x, column)
	l.Bias.Data[action] -= l.LearningRate * dLdu
	return nil
}

func (l *Linear) Clone() *Linear {
	w := l.Weight
	w.Data = slices.Clone(w.Data)
	return &Linear{
		Weight:       w,
		Bias:         vector.Clone(l.Bias),
		LearningRate: l.LearningRate,
	}
}
