package sequential

import (
	"math/rand/v2"

	"github.com/sw965/omw/parallel"
	"github.com/sw965/winrate/game"
)

type Step[S any, M, A comparable] struct {
	State  S
	Agent  A
	Move   M
	Policy game.Policy[M]
}

type Record[S any, M, A comparable] struct {
	Steps              []Step[S, M, A]
	FinalState         S
	ResultScoreByAgent ResultScoreByAgent[A]
}

// StepsOf returns the steps taken by the given agent, in play order.
func (r Record[S, M, A]) StepsOf(agent A) []Step[S, M, A] {
	steps := make([]Step[S, M, A], 0, len(r.Steps))
	for _, step := range r.Steps {
		if step.Agent == agent {
			steps = append(steps, step)
		}
	}
	return steps
}

func (e Engine[S, M, A]) playout(state S, actor Actor[S, M, A], rng *rand.Rand, onStep func(Step[S, M, A])) (S, error) {
	for {
		isEnd, err := e.IsEnd(state)
		if err != nil {
			return state, err
		}

		if isEnd {
			return state, nil
		}

		legalMoves := e.Logic.LegalMovesFunc(state)
		// PolicyFuncを安全に呼ぶ為に、ここでも空チェックをする
		if len(legalMoves) == 0 {
			return state, ErrNoLegalMoves
		}

		policy, err := actor.PolicyFunc(state, legalMoves)
		if err != nil {
			return state, err
		}

		// 一手毎のユニーク性チェックは計算コストの観点から見送る
		if err := policy.ValidateForLegalMoves(legalMoves, false); err != nil {
			return state, err
		}

		agent := e.Logic.CurrentAgentFunc(state)
		move, err := actor.SelectFunc(policy, agent, rng)
		if err != nil {
			return state, err
		}

		if onStep != nil {
			onStep(Step[S, M, A]{
				State:  state,
				Agent:  agent,
				Move:   move,
				Policy: policy,
			})
		}

		state, err = e.Logic.MoveFunc(state, move)
		if err != nil {
			return state, err
		}
	}
}

// Playouts plays every initial state to the end. Games are spread over
// len(rngs) workers and worker i draws only from rngs[i].
func (e Engine[S, M, A]) Playouts(inits []S, actor Actor[S, M, A], rngs []*rand.Rand) ([]S, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := actor.Validate(); err != nil {
		return nil, err
	}

	finals := make([]S, len(inits))
	err := parallel.For(len(inits), len(rngs), func(workerId, idx int) error {
		final, err := e.playout(inits[idx], actor, rngs[workerId], nil)
		if err != nil {
			return err
		}
		finals[idx] = final
		return nil
	})
	return finals, err
}

func (e Engine[S, M, A]) RecordPlayouts(inits []S, actor Actor[S, M, A], oneGameCap int, rngs []*rand.Rand) ([]Record[S, M, A], error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := actor.Validate(); err != nil {
		return nil, err
	}

	records := make([]Record[S, M, A], len(inits))
	err := parallel.For(len(inits), len(rngs), func(workerId, idx int) error {
		steps := make([]Step[S, M, A], 0, oneGameCap)
		final, err := e.playout(inits[idx], actor, rngs[workerId], func(step Step[S, M, A]) {
			steps = append(steps, step)
		})
		if err != nil {
			return err
		}

		scores, err := e.EvaluateResultScoreByAgent(final)
		if err != nil {
			return err
		}

		records[idx] = Record[S, M, A]{
			Steps:              steps,
			FinalState:         final,
			ResultScoreByAgent: scores,
		}
		return nil
	})
	return records, err
}
