package solver

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/sw965/omw/parallel"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
	"gonum.org/v1/gonum/floats"
)

// Aggregate solves every initial deal with a fresh Solver and returns, per
// matchup, the win probability weighted by the probability of each deal.
func Aggregate(g *bj.Game, matchups []Matchup, roster Roster) (Probabilities, error) {
	s, err := New(g, matchups, roster)
	if err != nil {
		return nil, err
	}

	entries, err := InitialStates(g)
	if err != nil {
		return nil, err
	}

	values := make([]Probabilities, len(entries))
	for i, e := range entries {
		values[i], err = s.solve(e.State)
		if err != nil {
			return nil, err
		}
	}

	totals := weigh(entries, values, len(matchups))
	glog.V(1).Infof("aggregated %d initial deals over %d states: %v = %v",
		len(entries), s.MemoSize(), matchupNames(matchups), totals)
	return totals, nil
}

// AggregateParallel is Aggregate with the initial deals spread over p workers.
// Each worker owns its Solver, so oracles in roster must be safe for
// concurrent use. The result equals that of Aggregate.
func AggregateParallel(g *bj.Game, matchups []Matchup, roster Roster, p int) (Probabilities, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrParallelism, p)
	}

	solvers := make([]*Solver, p)
	for i := range solvers {
		s, err := New(g, matchups, roster)
		if err != nil {
			return nil, err
		}
		solvers[i] = s
	}

	entries, err := InitialStates(g)
	if err != nil {
		return nil, err
	}

	values := make([]Probabilities, len(entries))
	err = parallel.For(len(entries), p, func(workerId, idx int) error {
		ps, err := solvers[workerId].solve(entries[idx].State)
		if err != nil {
			return err
		}
		values[idx] = ps
		return nil
	})
	if err != nil {
		return nil, err
	}

	totals := weigh(entries, values, len(matchups))
	glog.V(1).Infof("aggregated %d initial deals on %d workers: %v = %v",
		len(entries), p, matchupNames(matchups), totals)
	return totals, nil
}

func weigh(entries []Entry, values []Probabilities, width int) Probabilities {
	weights := make([]float64, len(entries))
	for i, e := range entries {
		weights[i] = e.Probability
	}

	column := make([]float64, len(entries))
	totals := make(Probabilities, width)
	for j := range totals {
		for i, v := range values {
			column[i] = v[j]
		}
		totals[j] = floats.Dot(weights, column)
	}
	return totals
}

// TheoreticalWinProbabilities aggregates the analytical matchups of the
// game's variant: AnalyticalMatchups(g.Variant()).
func TheoreticalWinProbabilities(g *bj.Game) (Probabilities, error) {
	return Aggregate(g, AnalyticalMatchups(g.Variant()), Roster{})
}

// PolicyWinProbabilities aggregates the policy matchups of the game's
// variant: PolicyMatchups(g.Variant()).
func PolicyWinProbabilities(g *bj.Game, roster Roster) (Probabilities, error) {
	return Aggregate(g, PolicyMatchups(g.Variant()), roster)
}

// SkillScore is 1 - baseline/skilled, the share of the skilled win probability
// that the baseline does not reach.
func SkillScore(skilled, baseline float64) float64 {
	return 1.0 - baseline/(skilled+1e-15)
}
