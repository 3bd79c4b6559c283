package blackjack

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	ErrDeckTooSmall           = errors.New("deck must hold at least 3 cards")
	ErrInvalidCard            = errors.New("invalid card")
	ErrTooManyCopies          = errors.New("too many copies of a card")
	ErrNonPositiveThreshold   = errors.New("bust threshold must be positive")
	ErrNonPositiveDealerLimit = errors.New("dealer limit must be positive")
	ErrUnknownVariant         = errors.New("unknown variant")
	ErrEnvConfig              = errors.New("invalid environment configuration")
)

const (
	// InitialDealSize is the number of cards dealt before the first move:
	// one to the dealer, two to the player.
	InitialDealSize = 3
	maxCopies       = 255
)

const (
	EnvVariant       = "BLACKJACK_VARIANT"
	EnvDeck          = "BLACKJACK_DECK"
	EnvBustThreshold = "BLACKJACK_BUST_THRESHOLD"
	EnvDealerLimit   = "BLACKJACK_DEALER_LIMIT"
)

// Config describes one reduced-deck game.
//
// Configは縮小デッキのゲームを1つ記述します。
type Config struct {
	Variant Variant
	// Deck is the full deck before the initial deal.
	Deck []Card
	// BustThreshold is the largest hand sum that does not bust.
	BustThreshold int
	// DealerLimit is the sum at which a fixed dealer stops hitting.
	// It is ignored by FreeDealer.
	DealerLimit int
}

func (c Config) Validate() error {
	if err := c.Variant.Validate(); err != nil {
		return err
	}

	if len(c.Deck) < InitialDealSize {
		return fmt.Errorf("%w: got %d", ErrDeckTooSmall, len(c.Deck))
	}

	copies := map[Card]int{}
	for _, card := range c.Deck {
		if err := card.Validate(); err != nil {
			return err
		}
		copies[card]++
		if copies[card] > maxCopies {
			return fmt.Errorf("%w: card %d appears more than %d times", ErrTooManyCopies, card, maxCopies)
		}
	}

	if c.BustThreshold <= 0 {
		return fmt.Errorf("%w: got %d", ErrNonPositiveThreshold, c.BustThreshold)
	}

	if c.Variant == FixedDealer && c.DealerLimit <= 0 {
		return fmt.Errorf("%w: got %d", ErrNonPositiveDealerLimit, c.DealerLimit)
	}
	return nil
}

func (c Config) Clone() Config {
	c.Deck = slices.Clone(c.Deck)
	return c
}

func defaultDeck() []Card {
	return []Card{1, 2, 3, 4, 1, 2, 3, 4}
}

// OnePlayerConfig returns the fixed-dealer preset: deck [1,2,3,4]x2,
// bust threshold 8, dealer limit 6.
func OnePlayerConfig() Config {
	return Config{
		Variant:       FixedDealer,
		Deck:          defaultDeck(),
		BustThreshold: 8,
		DealerLimit:   6,
	}
}

// TwoPlayerConfig returns the free-dealer preset: deck [1,2,3,4]x2, bust threshold 8.
func TwoPlayerConfig() Config {
	return Config{
		Variant:       FreeDealer,
		Deck:          defaultDeck(),
		BustThreshold: 8,
	}
}

func PresetConfig(v Variant) (Config, error) {
	switch v {
	case FixedDealer:
		return OnePlayerConfig(), nil
	case FreeDealer:
		return TwoPlayerConfig(), nil
	}
	return Config{}, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
}

// ConfigFromEnv builds a Config from the BLACKJACK_* environment variables,
// starting from the preset of the selected variant. The given dotenv files are
// loaded first; variables already set in the process take precedence.
//
// ConfigFromEnvは環境変数BLACKJACK_*からConfigを構築します。
func ConfigFromEnv(files ...string) (Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrEnvConfig, err)
		}
	}

	variant := FixedDealer
	if s, ok := os.LookupEnv(EnvVariant); ok {
		v, err := ParseVariant(s)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrEnvConfig, EnvVariant, err)
		}
		variant = v
	}

	cfg, err := PresetConfig(variant)
	if err != nil {
		return Config{}, err
	}

	if s, ok := os.LookupEnv(EnvDeck); ok {
		deck, err := ParseCards(s)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrEnvConfig, EnvDeck, err)
		}
		cfg.Deck = deck
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvBustThreshold, &cfg.BustThreshold},
		{EnvDealerLimit, &cfg.DealerLimit},
	}
	for _, e := range ints {
		s, ok := os.LookupEnv(e.key)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrEnvConfig, e.key, err)
		}
		*e.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
