package sequential

import (
	"fmt"
	"maps"
	"slices"
)

// RankByAgent holds the 1-based final rank of every agent. Tied agents
// share a rank and the next rank skips accordingly (1, 2, 2, 4).
// An empty or nil RankByAgent means the game has not ended yet.
type RankByAgent[A comparable] map[A]int

func NewRankByAgent[A comparable](agentsPerRank [][]A) (RankByAgent[A], error) {
	ranks := RankByAgent[A]{}
	rank := 1
	for _, agents := range agentsPerRank {
		if len(agents) == 0 {
			return nil, fmt.Errorf("%w: rank %d", ErrEmptyRank, rank)
		}

		for _, agent := range agents {
			if _, ok := ranks[agent]; ok {
				return nil, fmt.Errorf("%w: %v", ErrDuplicateAgent, agent)
			}
			ranks[agent] = rank
		}
		rank += len(agents)
	}
	return ranks, nil
}

func (r RankByAgent[A]) Validate() error {
	if len(r) == 0 {
		return nil
	}

	ranks := slices.Sorted(maps.Values(r))
	if ranks[0] < 1 {
		return fmt.Errorf("%w: rank must be >= 1, got %d", ErrInvalidRank, ranks[0])
	}

	if ranks[0] != 1 {
		return fmt.Errorf("%w: ranks must start at 1, got %d", ErrInvalidRank, ranks[0])
	}

	// i番目(0始まり)の順位は、同順が続く限り直前と同じ、切り替わる場合はi+1でなければならない
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1] && ranks[i] != i+1 {
			return fmt.Errorf("%w: expected %d, got %d", ErrInvalidRank, i+1, ranks[i])
		}
	}
	return nil
}

type RankByAgentFunc[S any, A comparable] func(S) (RankByAgent[A], error)
type ResultScoreByAgent[A comparable] map[A]float32
type ResultScoreByAgentFunc[A comparable] func(RankByAgent[A]) (ResultScoreByAgent[A], error)

// StandardResultScoreByAgent maps ranks linearly onto [0, 1]: the first
// rank scores 1.0, the last rank scores 0.0 and tied agents share the
// mean of the scores their ranks span. A lone agent always scores 1.0.
func StandardResultScoreByAgent[A comparable](ranks RankByAgent[A]) (ResultScoreByAgent[A], error) {
	if err := ranks.Validate(); err != nil {
		return nil, err
	}

	n := len(ranks)
	scores := ResultScoreByAgent[A]{}
	if n == 1 {
		for agent := range ranks {
			scores[agent] = 1.0
		}
		return scores, nil
	}

	counts := map[int]int{}
	for _, rank := range ranks {
		counts[rank]++
	}

	den := float32(n - 1)
	for agent, r := range ranks {
		k := counts[r]
		scores[agent] = 1.0 - float32(2*r+k-3)/(2.0*den)
	}
	return scores, nil
}

func (e *Engine[S, M, A]) SetStandardResultScoreByAgentFunc() {
	e.ResultScoreByAgentFunc = StandardResultScoreByAgent[A]
}

func (e Engine[S, M, A]) EvaluateResultScoreByAgent(state S) (ResultScoreByAgent[A], error) {
	rankByAgent, err := e.RankByAgentFunc(state)
	if err != nil {
		return nil, err
	}
	return e.ResultScoreByAgentFunc(rankByAgent)
}
