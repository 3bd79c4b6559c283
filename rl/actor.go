package rl

import (
	"cmp"
	"fmt"
	"math/rand/v2"

	"github.com/sw965/omw/mathx/randx"
	"github.com/sw965/winrate/agent"
	"github.com/sw965/winrate/game"
	"github.com/sw965/winrate/game/sequential"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
	"github.com/sw965/winrate/solver"
)

type Actor = sequential.Actor[bj.State, bj.Action, bj.Role]

// GreedyActor always plays the oracle's action, exactly as the solver
// evaluates a Policy mode.
func GreedyActor(g *bj.Game, oracle solver.Oracle) Actor {
	return Actor{
		Name: "greedy",
		PolicyFunc: func(state bj.State, legalMoves []bj.Action) (game.Policy[bj.Action], error) {
			action, err := oracle.ChooseAction(g.Features(state))
			if err != nil {
				return nil, err
			}
			if err := action.Validate(); err != nil {
				return nil, err
			}

			policy := game.Policy[bj.Action]{}
			for _, m := range legalMoves {
				policy[m] = 0
			}
			if _, ok := policy[action]; !ok {
				return nil, fmt.Errorf("%w: %v at %v", bj.ErrIllegalAction, action, state)
			}
			policy[action] = 1
			return policy, nil
		},
		SelectFunc: game.MaxSelectFunc[bj.Action, bj.Role],
	}
}

// EpsilonGreedyActor plays a uniformly random legal action with probability
// epsilon and the action of highest value otherwise.
func EpsilonGreedyActor(g *bj.Game, model agent.Model, epsilon float32) Actor {
	return Actor{
		Name: "epsilon_greedy",
		PolicyFunc: func(state bj.State, legalMoves []bj.Action) (game.Policy[bj.Action], error) {
			values, err := model.ActionValues(g.Features(state))
			if err != nil {
				return nil, err
			}

			policy := game.Policy[bj.Action]{}
			for _, m := range legalMoves {
				policy[m] = values[m]
			}
			return policy, nil
		},
		SelectFunc: func(policy game.Policy[bj.Action], role bj.Role, rng *rand.Rand) (bj.Action, error) {
			if rng.Float32() < epsilon {
				return randx.Choice(policy.Moves(cmp.Compare[bj.Action]), rng)
			}
			return game.MaxSelectFunc(policy, role, rng)
		},
	}
}

// DealerRuleActor is the fixed dealer, which always hits.
func DealerRuleActor() Actor {
	return Actor{
		Name: "dealer_rule",
		PolicyFunc: func(state bj.State, legalMoves []bj.Action) (game.Policy[bj.Action], error) {
			return game.Policy[bj.Action]{bj.Hit: 1}, nil
		},
		SelectFunc: game.MaxSelectFunc[bj.Action, bj.Role],
	}
}
