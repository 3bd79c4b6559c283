package sequential

import (
	"cmp"
	"fmt"
	"math/rand/v2"

	"github.com/sw965/winrate/game"
)

type PolicyFunc[S any, M comparable] func(S, []M) (game.Policy[M], error)

func UniformPolicyFunc[S any, M comparable](state S, legalMoves []M) (game.Policy[M], error) {
	n := len(legalMoves)
	if n == 0 {
		return nil, ErrNoLegalMoves
	}

	p := 1.0 / float32(n)
	policy := game.Policy[M]{}
	for _, m := range legalMoves {
		policy[m] = p
	}
	return policy, nil
}

type Actor[S any, M, A comparable] struct {
	Name       game.ActorName
	PolicyFunc PolicyFunc[S, M]
	SelectFunc game.SelectFunc[M, A]
}

func NewRandomActor[S any, M cmp.Ordered, A comparable]() Actor[S, M, A] {
	return Actor[S, M, A]{
		Name:       "random",
		PolicyFunc: UniformPolicyFunc[S, M],
		SelectFunc: game.WeightedRandomSelectFunc[M, A],
	}
}

func (a Actor[S, M, A]) Validate() error {
	if a.PolicyFunc == nil {
		return fmt.Errorf("%w: PolicyFunc", ErrNilFunc)
	}
	if a.SelectFunc == nil {
		return fmt.Errorf("%w: SelectFunc", ErrNilFunc)
	}
	return nil
}

// CombineActors returns a single actor that hands every decision to the
// actor registered for the agent whose turn it is.
func (e Engine[S, M, A]) CombineActors(actorByAgent map[A]Actor[S, M, A]) (Actor[S, M, A], error) {
	if err := e.Validate(); err != nil {
		return Actor[S, M, A]{}, err
	}

	for _, agent := range e.Agents {
		actor, ok := actorByAgent[agent]
		if !ok {
			return Actor[S, M, A]{}, fmt.Errorf("%w: %v", ErrUnknownAgent, agent)
		}
		if err := actor.Validate(); err != nil {
			return Actor[S, M, A]{}, fmt.Errorf("actor for %v: %w", agent, err)
		}
	}

	policyFunc := func(state S, legalMoves []M) (game.Policy[M], error) {
		agent := e.Logic.CurrentAgentFunc(state)
		actor, ok := actorByAgent[agent]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnknownAgent, agent)
		}
		return actor.PolicyFunc(state, legalMoves)
	}

	selectFunc := func(policy game.Policy[M], agent A, rng *rand.Rand) (M, error) {
		actor, ok := actorByAgent[agent]
		if !ok {
			var zero M
			return zero, fmt.Errorf("%w: %v", ErrUnknownAgent, agent)
		}
		return actor.SelectFunc(policy, agent, rng)
	}

	return Actor[S, M, A]{
		Name:       "combined",
		PolicyFunc: policyFunc,
		SelectFunc: selectFunc,
	}, nil
}
