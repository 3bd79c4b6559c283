// Package blackjack implements a reduced-deck blackjack in which aces count as
// 1 and ties always go to the dealer.
//
// blackjackパッケージは、エースを1として数え、引き分けは常にディーラーの勝ちとなる
// 縮小デッキのブラックジャックを実装します。
package blackjack

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/sw965/winrate/game/sequential"
	"github.com/sw965/winrate/mathx"
)

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrIllegalAction = errors.New("illegal action")
	ErrEmptyDeck     = errors.New("deck is empty")
	ErrCardNotInDeck = errors.New("card is not in the deck")
)

// Game holds a validated Config and implements the rules over States.
//
// Gameは検証済みのConfigを保持し、Stateに対するルールを実装します。
type Game struct {
	config Config
	// 設定された山札の異なる値(昇順)。特徴量の並びを決める
	values []Card
}

func New(cfg Config) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	return &Game{
		config: cfg,
		values: Deck(cfg.Deck).Counts().Distinct(),
	}, nil
}

func (g *Game) Config() Config {
	return g.config.Clone()
}

func (g *Game) Variant() Variant {
	return g.config.Variant
}

func (g *Game) BustThreshold() int {
	return g.config.BustThreshold
}

func (g *Game) FullDeck() Deck {
	return Deck(g.config.Deck).Clone()
}

// Reset shuffles a copy of the full deck and deals one card to the dealer and
// two to the player from the top.
//
// Resetは山札をシャッフルし、上からディーラーに1枚、プレイヤーに2枚配ります。
func (g *Game) Reset(rng *rand.Rand) State {
	deck := g.FullDeck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	n := len(deck)
	return State{
		Dealer: Hand{deck[n-1]},
		Player: Hand{deck[n-2], deck[n-3]},
		Deck:   deck[:n-InitialDealSize:n-InitialDealSize],
		Turn:   PlayerTurn,
	}
}

// Deal returns the state right after the dealer received dealerCard and the
// player received p1 and p2.
func (g *Game) Deal(dealerCard, p1, p2 Card) (State, error) {
	deck := g.FullDeck()
	dealt := []Card{dealerCard, p1, p2}
	for _, card := range dealt {
		if err := card.Validate(); err != nil {
			return State{}, err
		}
		var ok bool
		deck, ok = deck.Without(card)
		if !ok {
			return State{}, fmt.Errorf("%w: %d", ErrCardNotInDeck, card)
		}
	}
	return State{
		Dealer: Hand{dealerCard},
		Player: Hand{p1, p2},
		Deck:   deck,
		Turn:   PlayerTurn,
	}, nil
}

func (g *Game) CurrentRole(state State) Role {
	if state.Turn == PlayerTurn {
		return Player
	}
	return Dealer
}

func (g *Game) LegalMoves(state State) []Action {
	if over, _ := g.IsGameOver(state); over {
		return nil
	}

	moves := make([]Action, 0, len(Actions))
	if state.Turn == PlayerTurn || g.config.Variant == FreeDealer {
		moves = append(moves, Stay)
	}
	if len(state.Deck) > 0 {
		moves = append(moves, Hit)
	}
	return moves
}

// ApplyAction returns the state after the turn owner takes the action.
// Hit deals the top card of the deck to the turn owner; Stay passes the turn.
//
// ApplyActionは手番のプレイヤーが行動した後の状態を返します。
func (g *Game) ApplyAction(state State, action Action) (State, error) {
	if err := action.Validate(); err != nil {
		return State{}, err
	}

	if over, _ := g.IsGameOver(state); over {
		return State{}, fmt.Errorf("%w: the game is over", ErrIllegalAction)
	}

	switch action {
	case Stay:
		if state.Turn == DealerTurn && g.config.Variant == FixedDealer {
			return State{}, fmt.Errorf("%w: a fixed dealer cannot stay", ErrIllegalAction)
		}
		return g.Stay(state), nil
	default:
		top, ok := state.Deck.Top()
		if !ok {
			return State{}, ErrEmptyDeck
		}
		return g.Draw(state, top)
	}
}

// Draw returns a copy of state in which the turn owner received one card of
// the given value taken from the deck. The turn does not change.
func (g *Game) Draw(state State, card Card) (State, error) {
	deck, ok := state.Deck.Without(card)
	if !ok {
		return State{}, fmt.Errorf("%w: %d", ErrCardNotInDeck, card)
	}

	next := State{
		Dealer: state.Dealer.Clone(),
		Player: state.Player.Clone(),
		Deck:   deck,
		Turn:   state.Turn,
	}
	role := g.CurrentRole(state)
	hand := append(next.HandOf(role), card)
	if role == Dealer {
		next.Dealer = hand
	} else {
		next.Player = hand
	}
	return next, nil
}

// Stay returns a copy of state with the turn passed on.
func (g *Game) Stay(state State) State {
	next := state.Clone()
	if next.Turn < DealerStayed {
		next.Turn++
	}
	return next
}

// IsGameOver reports whether the game has ended and, if so, the player's outcome.
//
// IsGameOverはゲームが終了したかどうかと、終了した場合のプレイヤーの結果を返します。
func (g *Game) IsGameOver(state State) (bool, Outcome) {
	dealer := state.Dealer.Sum()
	player := state.Player.Sum()
	bust := g.config.BustThreshold

	settle := func() Outcome {
		if player > dealer {
			return Win
		}
		return Loss
	}

	switch state.Turn {
	case PlayerTurn:
		if player > bust {
			return true, Loss
		}
	case DealerTurn:
		if dealer > bust {
			return true, Win
		}
		if g.config.Variant == FixedDealer && dealer >= g.config.DealerLimit {
			return true, settle()
		}
	case DealerStayed:
		return true, settle()
	}
	return false, Loss
}

// FeatureSize is the length of the vectors returned by Features.
func (g *Game) FeatureSize() int {
	return 2 + len(g.values)
}

// Features encodes the state as [dealerSum/bust, playerSum/bust] followed by the
// probability of drawing each distinct configured value, in ascending order,
// from the remaining deck. The vector depends only on the two sums and the
// deck's contents.
//
// Featuresは状態を特徴量ベクトルに変換します。
func (g *Game) Features(state State) []float32 {
	bust := float32(g.config.BustThreshold)
	features := make([]float32, 0, g.FeatureSize())
	features = append(features,
		mathx.ConvertScale(float32(state.Dealer.Sum()), 0, bust, 0, 1),
		mathx.ConvertScale(float32(state.Player.Sum()), 0, bust, 0, 1),
	)

	counts := state.Deck.Counts()
	n := float32(len(state.Deck))
	for _, card := range g.values {
		if n == 0 {
			features = append(features, 0)
			continue
		}
		features = append(features, float32(counts.Count(card))/n)
	}
	return features
}

func (g *Game) RankByAgent(state State) (sequential.RankByAgent[Role], error) {
	over, outcome := g.IsGameOver(state)
	if !over {
		return sequential.RankByAgent[Role]{}, nil
	}
	if outcome == Win {
		return sequential.NewRankByAgent([][]Role{{Player}, {Dealer}})
	}
	return sequential.NewRankByAgent([][]Role{{Dealer}, {Player}})
}

// NewEngine wires the game into the generic sequential engine. The winner
// scores 1.0 and the loser 0.0.
func (g *Game) NewEngine() sequential.Engine[State, Action, Role] {
	engine := sequential.Engine[State, Action, Role]{
		Logic: sequential.Logic[State, Action, Role]{
			LegalMovesFunc:   g.LegalMoves,
			MoveFunc:         g.ApplyAction,
			EqualFunc:        State.Equal,
			CurrentAgentFunc: g.CurrentRole,
		},
		RankByAgentFunc: g.RankByAgent,
		Agents:          slices.Clone(Roles),
	}
	engine.SetStandardResultScoreByAgentFunc()
	return engine
}
