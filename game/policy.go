package game

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/chewxy/math32"
	"github.com/sw965/omw/mathx/randx"
	"github.com/sw965/omw/slicesx"
)

var (
	ErrNoLegalMoves   = errors.New("legal moves must not be empty")
	ErrDuplicateMoves = errors.New("legal moves contain duplicates")
	ErrPolicySize     = errors.New("policy size does not match legal moves count")
	ErrMissingMove    = errors.New("policy is missing a legal move")
	ErrInvalidWeight  = errors.New("invalid policy weight")
	ErrPolicyZeroSum  = errors.New("sum of policy weights is zero")
	ErrEmptyPolicy    = errors.New("policy must not be empty")
)

// Policy maps each legal move to a non-negative weight.
// The weights need not sum to one.
type Policy[M comparable] map[M]float32

func (p Policy[M]) ValidateForLegalMoves(legalMoves []M, checkUnique bool) error {
	if len(legalMoves) == 0 {
		return ErrNoLegalMoves
	}

	if checkUnique && !slicesx.IsUnique(legalMoves) {
		return fmt.Errorf("%w: %v", ErrDuplicateMoves, legalMoves)
	}

	if len(p) != len(legalMoves) {
		return fmt.Errorf("%w: policy %d, legal moves %d", ErrPolicySize, len(p), len(legalMoves))
	}

	var sum float32
	for _, m := range legalMoves {
		v, ok := p[m]
		if !ok {
			return fmt.Errorf("%w: %v", ErrMissingMove, m)
		}

		if v < 0 || math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("%w: %f for move %v", ErrInvalidWeight, v, m)
		}
		sum += v
	}

	if sum == 0 {
		return ErrPolicyZeroSum
	}
	return nil
}

// Moves returns the moves of the policy in ascending order,
// so that selections driven by a seeded rng are reproducible.
func (p Policy[M]) Moves(compare func(a, b M) int) []M {
	return slices.SortedFunc(maps.Keys(p), compare)
}

type SelectFunc[M, A comparable] func(Policy[M], A, *rand.Rand) (M, error)

// MaxSelectFunc picks uniformly among the moves of highest weight.
func MaxSelectFunc[M cmp.Ordered, A comparable](policy Policy[M], agent A, rng *rand.Rand) (M, error) {
	var zero M
	if len(policy) == 0 {
		return zero, ErrEmptyPolicy
	}

	keys := policy.Moves(cmp.Compare[M])
	max := policy[keys[0]]
	moves := make([]M, 0, len(keys))
	moves = append(moves, keys[0])

	for _, k := range keys[1:] {
		v := policy[k]
		switch {
		case v > max:
			max = v
			moves = moves[:0]
			moves = append(moves, k)
		case v == max:
			moves = append(moves, k)
		}
	}

	move, err := randx.Choice(moves, rng)
	if err != nil {
		return zero, err
	}
	return move, nil
}

func WeightedRandomSelectFunc[M cmp.Ordered, A comparable](policy Policy[M], agent A, rng *rand.Rand) (M, error) {
	var zero M
	if len(policy) == 0 {
		return zero, ErrEmptyPolicy
	}

	moves := policy.Moves(cmp.Compare[M])
	ws := make([]float32, len(moves))
	for i, m := range moves {
		ws[i] = policy[m]
	}

	idx, err := randx.IntByWeights(ws, rng)
	if err != nil {
		return zero, err
	}
	return moves[idx], nil
}

type ActorName string
