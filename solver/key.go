package solver

import (
	bj "github.com/sw965/winrate/game/sequential/blackjack"
)

// Key identifies a state up to everything that can affect the rest of the
// game: the two hand sums, the contents of the remaining deck and the turn.
// Hand composition and deck order are not part of the key.
type Key struct {
	DealerSum int
	PlayerSum int
	Deck      bj.Counts
	Turn      bj.Turn
}

func Canonicalize(state bj.State) Key {
	return Key{
		DealerSum: state.Dealer.Sum(),
		PlayerSum: state.Player.Sum(),
		Deck:      state.Deck.Counts(),
		Turn:      state.Turn,
	}
}

// MemoTable caches solved states. It belongs to a single Solver.
type MemoTable map[Key]Probabilities
