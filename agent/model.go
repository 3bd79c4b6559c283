package agent

import (
	"slices"

	"github.com/chewxy/math32"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
)

// Model is an action-value model that is trained on TD targets and plays as
// a solver oracle through ChooseAction.
type Model interface {
	FeatureSize() int
	ActionValues(features []float32) ([]float32, error)
	ChooseAction(features []float32) (bj.Action, error)
	MaxActionValue(features []float32) (float32, error)
	Loss(features []float32, action bj.Action, target float32) (float32, error)
	Update(features []float32, action bj.Action, target float32) error
}

var (
	_ Model = (*Linear)(nil)
	_ Model = (*MLP)(nil)
)

func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-x))
}

// argmaxAction returns the action of highest value. Ties go to Stay.
func argmaxAction(values []float32) bj.Action {
	best := bj.Stay
	for _, a := range bj.Actions[1:] {
		if values[a] > values[best] {
			best = a
		}
	}
	return best
}

func maxValue(values []float32) float32 {
	return slices.Max(values)
}

// binaryCrossEntropy clips y away from 0 and 1 before taking logs.
func binaryCrossEntropy(y, target float32) float32 {
	const eps = 1e-7
	y = min(max(y, eps), 1-eps)
	return -(target*math32.Log(y) + (1-target)*math32.Log(1-y))
}
