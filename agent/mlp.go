package agent

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	tensor2d "github.com/sw965/winrate/blas32/tensor/2d"
	"github.com/sw965/winrate/blas32/vector"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

var ErrHiddenUnits = errors.New("hidden units must be non-empty and positive")

type GradBuffer struct {
	Weight blas32.General
	Bias   blas32.Vector
}

type GradBuffers []GradBuffer

func (gs GradBuffers) Clone() GradBuffers {
	clone := make(GradBuffers, len(gs))
	for i, g := range gs {
		clone[i] = GradBuffer{
			Weight: tensor2d.Clone(g.Weight),
			Bias:   vector.Clone(g.Bias),
		}
	}
	return clone
}

// Parameter is the weight and bias of one layer. Layers without parameters
// hold the zero value.
type Parameter struct {
	// Weight has one row per input and one column per output.
	Weight blas32.General
	Bias   blas32.Vector
}

func (p *Parameter) Clone() Parameter {
	return Parameter{
		Weight: tensor2d.Clone(p.Weight),
		Bias:   vector.Clone(p.Bias),
	}
}

func (p *Parameter) NewGradZerosLike() GradBuffer {
	return GradBuffer{
		Weight: tensor2d.NewZerosLike(p.Weight),
		Bias:   vector.NewZeros(p.Bias.N),
	}
}

type Parameters []Parameter

func (ps Parameters) Clone() Parameters {
	clone := make(Parameters, len(ps))
	for i := range ps {
		clone[i] = ps[i].Clone()
	}
	return clone
}

func (ps Parameters) NewGradsZerosLike() GradBuffers {
	grads := make(GradBuffers, len(ps))
	for i := range ps {
		grads[i] = ps[i].NewGradZerosLike()
	}
	return grads
}

type Backward func(chain blas32.Vector) (blas32.Vector, GradBuffer)
type Backwards []Backward

// Propagate runs the backwards from the output layer to the input layer and
// returns the gradients in layer order.
func (bs Backwards) Propagate(chain blas32.Vector) GradBuffers {
	grads := make(GradBuffers, len(bs))
	for i := len(bs) - 1; i >= 0; i-- {
		chain, grads[i] = bs[i](chain)
	}
	return grads
}

type Forward func(x blas32.Vector, param *Parameter) (blas32.Vector, Backward)
type Forwards []Forward

func (fs Forwards) Propagate(x blas32.Vector, params Parameters) (blas32.Vector, Backwards) {
	backwards := make(Backwards, len(fs))
	for i, f := range fs {
		x, backwards[i] = f(x, &params[i])
	}
	return x, backwards
}

func AffineForward(x blas32.Vector, param *Parameter) (blas32.Vector, Backward) {
	y := vector.Affine(x, param.Weight, param.Bias)

	backward := func(chain blas32.Vector) (blas32.Vector, GradBuffer) {
		w := param.Weight
		dx := vector.NewZeros(w.Rows)
		blas32.Gemv(blas.NoTrans, 1.0, w, chain, 0.0, dx)

		dw := tensor2d.NewZeros(w.Rows, w.Cols)
		blas32.Ger(1.0, x, chain, dw)
		return dx, GradBuffer{Weight: dw, Bias: vector.Clone(chain)}
	}
	return y, backward
}

func ReLUForward(x blas32.Vector, _ *Parameter) (blas32.Vector, Backward) {
	y := vector.NewZeros(x.N)
	for i, e := range x.Data {
		y.Data[i] = max(e, 0)
	}

	backward := func(chain blas32.Vector) (blas32.Vector, GradBuffer) {
		dx := vector.NewZeros(chain.N)
		for i, e := range x.Data {
			if e > 0 {
				dx.Data[i] = chain.Data[i]
			}
		}
		return dx, GradBuffer{}
	}
	return y, backward
}

// SigmoidForOutputForward is the output activation. Its backward expects
// dL/dy of binary cross-entropy already folded in, i.e. chain = y - t.
func SigmoidForOutputForward(x blas32.Vector, _ *Parameter) (blas32.Vector, Backward) {
	y := vector.NewZeros(x.N)
	for i, e := range x.Data {
		y.Data[i] = sigmoid(e)
	}

	backward := func(chain blas32.Vector) (blas32.Vector, GradBuffer) {
		return chain, GradBuffer{}
	}
	return y, backward
}

// MLP estimates the win probability of taking an action with a feed-forward
// network over the features followed by a one-hot encoding of the action:
// affine and ReLU for every hidden layer, then an affine layer to one
// sigmoid output. It is trained with binary cross-entropy and Adam.
//
// Methods that only read the parameters are safe for concurrent use.
//
// MLPは特徴量と行動のone-hotを入力とし、行動価値を出力する多層パーセプトロンです。
type MLP struct {
	Parameters Parameters
	Forwards   Forwards
	Optimizer  *Adam

	featureSize int
}

func NewMLP(featureSize int, hiddenUnits []int, learningRate float32, rng *rand.Rand) (*MLP, error) {
	if len(hiddenUnits) == 0 || slices.ContainsFunc(hiddenUnits, func(n int) bool { return n <= 0 }) {
		return nil, fmt.Errorf("%w: %v", ErrHiddenUnits, hiddenUnits)
	}

	m := &MLP{featureSize: featureSize}
	in := featureSize + len(bj.Actions)
	for _, out := range hiddenUnits {
		m.appendAffine(in, out, rng)
		m.appendActivation(ReLUForward)
		in = out
	}
	m.appendAffine(in, 1, rng)
	m.appendActivation(SigmoidForOutputForward)

	m.Optimizer = NewAdam(m.Parameters, learningRate)
	return m, nil
}

func (m *MLP) appendAffine(xn, yn int, rng *rand.Rand) {
	m.Parameters = append(m.Parameters, Parameter{
		Weight: tensor2d.NewHe(xn, yn, rng),
		Bias:   vector.NewZeros(yn),
	})
	m.Forwards = append(m.Forwards, AffineForward)
}

func (m *MLP) appendActivation(f Forward) {
	m.Parameters = append(m.Parameters, Parameter{})
	m.Forwards = append(m.Forwards, f)
}

func (m *MLP) FeatureSize() int {
	return m.featureSize
}

func (m *MLP) input(features []float32, action bj.Action) (blas32.Vector, error) {
	if len(features) != m.featureSize {
		return blas32.Vector{}, fmt.Errorf("%w: want %d, got %d", ErrFeatureSize, m.featureSize, len(features))
	}
	x := vector.NewZeros(m.featureSize + len(bj.Actions))
	copy(x.Data, features)
	x.Data[m.featureSize+int(action)] = 1
	return x, nil
}

func (m *MLP) predict(features []float32, action bj.Action) (float32, Backwards, error) {
	x, err := m.input(features, action)
	if err != nil {
		return 0, nil, err
	}
	y, backwards := m.Forwards.Propagate(x, m.Parameters)
	return y.Data[0], backwards, nil
}

// ActionValues returns q(x, a) for every action, indexed by Action.
func (m *MLP) ActionValues(features []float32) ([]float32, error) {
	ys := make([]float32, len(bj.Actions))
	for _, a := range bj.Actions {
		y, _, err := m.predict(features, a)
		if err != nil {
			return nil, err
		}
		ys[a] = y
	}
	return ys, nil
}

// ChooseAction returns the action with the highest value. Ties go to Stay.
func (m *MLP) ChooseAction(features []float32) (bj.Action, error) {
	ys, err := m.ActionValues(features)
	if err != nil {
		return 0, err
	}
	return argmaxAction(ys), nil
}

func (m *MLP) MaxActionValue(features []float32) (float32, error) {
	ys, err := m.ActionValues(features)
	if err != nil {
		return 0, err
	}
	return maxValue(ys), nil
}

// Loss is the binary cross-entropy between q(x, action) and target.
func (m *MLP) Loss(features []float32, action bj.Action, target float32) (float32, error) {
	if err := action.Validate(); err != nil {
		return 0, err
	}
	y, _, err := m.predict(features, action)
	if err != nil {
		return 0, err
	}
	return binaryCrossEntropy(y, target), nil
}

// Gradients returns dLoss/dParameters by backpropagation.
func (m *MLP) Gradients(features []float32, action bj.Action, target float32) (GradBuffers, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	y, backwards, err := m.predict(features, action)
	if err != nil {
		return nil, err
	}

	// y = sigmoid(u), L = BCE(y, t)
	// dL/du = y - t
	chain := blas32.Vector{N: 1, Inc: 1, Data: []float32{y - target}}
	return backwards.Propagate(chain), nil
}

// Update takes one Adam step on Loss.
func (m *MLP) Update(features []float32, action bj.Action, target float32) error {
	grads, err := m.Gradients(features, action, target)
	if err != nil {
		return err
	}
	return m.Optimizer.Optimize(m.Parameters, grads)
}

func (m *MLP) Clone() *MLP {
	return &MLP{
		Parameters:  m.Parameters.Clone(),
		Forwards:    slices.Clone(m.Forwards),
		Optimizer:   m.Optimizer.Clone(),
		featureSize: m.featureSize,
	}
}
