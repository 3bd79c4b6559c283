package blackjack

import (
	"fmt"
	"slices"
)

// Turn tells whose move it is. DealerStayed only occurs when the dealer
// is a free agent, and ends the game.
//
// Turnは手番を表します。DealerStayedはディーラーが自由に行動できる場合のみ現れ、ゲームを終了させます。
type Turn int

const (
	PlayerTurn Turn = iota
	DealerTurn
	DealerStayed
)

func (t Turn) String() string {
	switch t {
	case PlayerTurn:
		return "player_turn"
	case DealerTurn:
		return "dealer_turn"
	case DealerStayed:
		return "dealer_stayed"
	}
	return fmt.Sprintf("Turn(%d)", int(t))
}

// Role is a participant of the game and the agent of the sequential engine.
//
// Roleはゲームの参加者であり、sequentialエンジンにおけるエージェントです。
type Role int

const (
	Player Role = iota
	Dealer
)

var Roles = []Role{Player, Dealer}

func (r Role) String() string {
	switch r {
	case Player:
		return "player"
	case Dealer:
		return "dealer"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

type Action int

const (
	Stay Action = iota
	Hit
)

var Actions = []Action{Stay, Hit}

func (a Action) Validate() error {
	if a != Stay && a != Hit {
		return fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}
	return nil
}

func (a Action) String() string {
	switch a {
	case Stay:
		return "stay"
	case Hit:
		return "hit"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Variant selects the game topology.
//
// Variantはゲームの形式を選択します。
type Variant int

const (
	// FixedDealer: the dealer hits until its sum reaches the dealer limit or it busts.
	//
	// FixedDealer: ディーラーは合計がディーラーリミットに達するかバーストするまでヒットし続けます。
	FixedDealer Variant = iota
	// FreeDealer: the dealer chooses to stay or hit like the player.
	//
	// FreeDealer: ディーラーもプレイヤーと同様にステイかヒットを選択します。
	FreeDealer
)

func (v Variant) Validate() error {
	if v != FixedDealer && v != FreeDealer {
		return fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	return nil
}

func (v Variant) String() string {
	switch v {
	case FixedDealer:
		return "fixed"
	case FreeDealer:
		return "free"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

func ParseVariant(s string) (Variant, error) {
	switch s {
	case "fixed", "one_player":
		return FixedDealer, nil
	case "free", "two_player":
		return FreeDealer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Outcome is the result from the player's point of view. Ties are losses.
type Outcome float64

const (
	Loss Outcome = 0.0
	Win  Outcome = 1.0
)

// State is a snapshot of a game. States are values: every operation of Game
// returns a fresh State and never mutates its argument.
//
// Stateはゲームの状態です。Gameの操作は常に新しいStateを返し、引数を変更しません。
type State struct {
	Dealer Hand
	Player Hand
	Deck   Deck
	Turn   Turn
}

// Clone returns a deep copy that shares no backing arrays with s.
func (s State) Clone() State {
	return State{
		Dealer: s.Dealer.Clone(),
		Player: s.Player.Clone(),
		Deck:   s.Deck.Clone(),
		Turn:   s.Turn,
	}
}

func (s State) Equal(other State) bool {
	return s.Turn == other.Turn &&
		slices.Equal(s.Dealer, other.Dealer) &&
		slices.Equal(s.Player, other.Player) &&
		slices.Equal(s.Deck, other.Deck)
}

// HandOf returns the hand of the given role.
func (s State) HandOf(role Role) Hand {
	if role == Dealer {
		return s.Dealer
	}
	return s.Player
}

func (s State) String() string {
	return fmt.Sprintf("dealer=%v(%d) player=%v(%d) deck=%v %v",
		s.Dealer, s.Dealer.Sum(), s.Player, s.Player.Sum(), s.Deck, s.Turn)
}
