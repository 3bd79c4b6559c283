package solver_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/winrate/agent"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
	"github.com/sw965/winrate/solver"
)

func TestAggregateParallel(t *testing.T) {
	for _, cfg := range []bj.Config{bj.OnePlayerConfig(), bj.TwoPlayerConfig()} {
		t.Run(cfg.Variant.String(), func(t *testing.T) {
			g := newGame(t, cfg)
			matchups := solver.AnalyticalMatchups(cfg.Variant)

			want, err := solver.Aggregate(g, matchups, solver.Roster{})
			require.NoError(t, err)

			for _, p := range []int{1, 3, 8} {
				got, err := solver.AggregateParallel(g, matchups, solver.Roster{}, p)
				require.NoError(t, err)
				assert.Equal(t, want, got, "p=%d", p)
			}
		})
	}

	_, err := solver.AggregateParallel(newGame(t, bj.OnePlayerConfig()), solver.OnePlayerAnalytical, solver.Roster{}, 0)
	assert.ErrorIs(t, err, solver.ErrParallelism)
}

func TestAggregateWithLinearAgent(t *testing.T) {
	g := newGame(t, bj.TwoPlayerConfig())
	rng := rand.New(rand.NewPCG(7, 11))
	player := agent.NewLinear(g.FeatureSize(), 0.01, rng)
	dealer := agent.NewLinear(g.FeatureSize(), 0.01, rng)
	roster := solver.Roster{Player: player, Dealer: dealer}

	want, err := solver.PolicyWinProbabilities(g, roster)
	require.NoError(t, err)
	require.Len(t, want, len(solver.TwoPlayerPolicy))

	got, err := solver.AggregateParallel(g, solver.TwoPlayerPolicy, roster, 4)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	analytical, err := solver.TheoreticalWinProbabilities(g)
	require.NoError(t, err)
	// 方策は最適なプレイヤー以上に勝てず、最適なディーラー以上に負かせない
	assert.LessOrEqual(t, want[1], analytical[1]+solver.Tolerance)
	assert.GreaterOrEqual(t, want[2]+solver.Tolerance, analytical[2])
	for _, p := range want {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}
