package blackjack

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Card is the face value of a card. Aces count as 1 only.
//
// Cardはカードの数値を表します。エースは常に1として扱います。
type Card int

const (
	MinCard Card = 1
	MaxCard Card = 10
)

func (c Card) Validate() error {
	if c < MinCard || c > MaxCard {
		return fmt.Errorf("%w: %d (must be in [%d, %d])", ErrInvalidCard, c, MinCard, MaxCard)
	}
	return nil
}

// ParseCards parses a comma separated list such as "1,2,3,4".
func ParseCards(s string) ([]Card, error) {
	fields := strings.Split(s, ",")
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCard, f)
		}
		card := Card(v)
		if err := card.Validate(); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Counts is the multiset of a deck: Counts[v-1] copies of value v remain.
// Being a comparable array, it identifies a deck's contents irrespective of order.
//
// Countsは山札の多重集合です。順序に依存せず山札の中身を識別できます。
type Counts [MaxCard]uint8

func (c Counts) Count(card Card) int {
	return int(c[card-1])
}

func (c Counts) Len() int {
	n := 0
	for _, k := range c {
		n += int(k)
	}
	return n
}

func (c *Counts) Add(card Card) {
	if c[card-1] == 255 {
		panic(fmt.Sprintf("BUG: count of card %d overflows", card))
	}
	c[card-1]++
}

func (c *Counts) Remove(card Card) {
	if c[card-1] == 0 {
		panic(fmt.Sprintf("BUG: count of card %d would become negative", card))
	}
	c[card-1]--
}

// Distinct returns the values with a non-zero count in ascending order.
func (c Counts) Distinct() []Card {
	cards := make([]Card, 0, len(c))
	for i, k := range c {
		if k > 0 {
			cards = append(cards, Card(i+1))
		}
	}
	return cards
}

// Deck is an ordered pile of cards. The top of the deck is the last element.
//
// Deckは順序付きの山札です。末尾の要素が山札の一番上になります。
type Deck []Card

func (d Deck) Clone() Deck {
	return slices.Clone(d)
}

func (d Deck) Counts() Counts {
	var c Counts
	for _, card := range d {
		c.Add(card)
	}
	return c
}

// Top returns the card that the next hit will deal.
func (d Deck) Top() (Card, bool) {
	if len(d) == 0 {
		return 0, false
	}
	return d[len(d)-1], true
}

// Without returns a copy of the deck with one card of the given value removed.
func (d Deck) Without(card Card) (Deck, bool) {
	idx := slices.Index(d, card)
	if idx < 0 {
		return nil, false
	}
	return slices.Delete(d.Clone(), idx, idx+1), true
}

type Hand []Card

func (h Hand) Sum() int {
	sum := 0
	for _, card := range h {
		sum += int(card)
	}
	return sum
}

func (h Hand) Clone() Hand {
	return slices.Clone(h)
}
