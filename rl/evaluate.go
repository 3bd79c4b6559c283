package rl

import (
	"fmt"
	"math/rand/v2"

	bj "github.com/sw965/winrate/game/sequential/blackjack"
)

// Evaluate plays n games between the two actors and returns the fraction
// won by the player. Initial deals are drawn from rngs[0]; games are then
// spread over len(rngs) workers.
func Evaluate(g *bj.Game, player, dealer Actor, n int, rngs []*rand.Rand) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNoEpisodes, n)
	}

	engine := g.NewEngine()
	actor, err := engine.CombineActors(map[bj.Role]Actor{
		bj.Player: player,
		bj.Dealer: dealer,
	})
	if err != nil {
		return 0, err
	}

	inits := make([]bj.State, n)
	for i := range inits {
		inits[i] = g.Reset(rngs[0])
	}

	finals, err := engine.Playouts(inits, actor, rngs)
	if err != nil {
		return 0, err
	}

	wins := 0
	for _, final := range finals {
		if _, outcome := g.IsGameOver(final); outcome == bj.Win {
			wins++
		}
	}
	return float64(wins) / float64(n), nil
}
