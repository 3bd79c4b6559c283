package solver

import (
	"fmt"
	"slices"
	"strings"

	bj "github.com/sw965/winrate/game/sequential/blackjack"
)

// Mode is how a role picks between staying and hitting.
type Mode int

const (
	// Optimal maximises the player's win probability on player turns and
	// minimises it on dealer turns.
	Optimal Mode = iota
	// Random stays or hits with probability one half each.
	Random
	// Policy follows the role's Oracle.
	Policy
	// Fixed is the dealer that hits until it reaches the dealer limit.
	Fixed
)

func (m Mode) String() string {
	switch m {
	case Optimal:
		return "optimal"
	case Random:
		return "random"
	case Policy:
		return "policy"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Matchup assigns a Mode to each role. Every matchup a Solver is built with
// owns one slot of the Probabilities it returns.
type Matchup struct {
	Player Mode
	Dealer Mode
}

func (m Matchup) ModeOf(role bj.Role) Mode {
	if role == bj.Dealer {
		return m.Dealer
	}
	return m.Player
}

func (m Matchup) String() string {
	return fmt.Sprintf("%v_player_vs_%v_dealer", m.Player, m.Dealer)
}

var (
	OnePlayerAnalytical = []Matchup{
		{Player: Optimal, Dealer: Fixed},
		{Player: Random, Dealer: Fixed},
	}
	TwoPlayerAnalytical = []Matchup{
		{Player: Optimal, Dealer: Optimal},
		{Player: Optimal, Dealer: Random},
		{Player: Random, Dealer: Optimal},
		{Player: Random, Dealer: Random},
	}
	OnePlayerPolicy = []Matchup{
		{Player: Policy, Dealer: Fixed},
	}
	TwoPlayerPolicy = []Matchup{
		{Player: Policy, Dealer: Policy},
		{Player: Policy, Dealer: Random},
		{Player: Random, Dealer: Policy},
	}
)

// AnalyticalMatchups returns a copy of the analytical matchup set of the variant.
func AnalyticalMatchups(v bj.Variant) []Matchup {
	if v == bj.FixedDealer {
		return slices.Clone(OnePlayerAnalytical)
	}
	return slices.Clone(TwoPlayerAnalytical)
}

// PolicyMatchups returns a copy of the policy matchup set of the variant.
func PolicyMatchups(v bj.Variant) []Matchup {
	if v == bj.FixedDealer {
		return slices.Clone(OnePlayerPolicy)
	}
	return slices.Clone(TwoPlayerPolicy)
}

// Oracle chooses an action from the features of a decision state.
// Oracles used by AggregateParallel must be safe for concurrent use.
type Oracle interface {
	ChooseAction(features []float32) (bj.Action, error)
}

type OracleFunc func(features []float32) (bj.Action, error)

func (f OracleFunc) ChooseAction(features []float32) (bj.Action, error) {
	return f(features)
}

// Roster binds an Oracle to each role. An oracle is only required for the
// roles that some matchup plays in Policy mode.
type Roster struct {
	Player Oracle
	Dealer Oracle
}

func (r Roster) OracleOf(role bj.Role) Oracle {
	if role == bj.Dealer {
		return r.Dealer
	}
	return r.Player
}

func validateMatchups(v bj.Variant, matchups []Matchup, roster Roster) error {
	if len(matchups) == 0 {
		return ErrNoMatchups
	}

	for _, m := range matchups {
		for _, role := range bj.Roles {
			mode := m.ModeOf(role)
			switch mode {
			case Optimal, Random, Policy:
				if role == bj.Dealer && v == bj.FixedDealer {
					return fmt.Errorf("%w: %v dealer in %v variant", ErrModeForVariant, mode, v)
				}
			case Fixed:
				if role == bj.Player || v != bj.FixedDealer {
					return fmt.Errorf("%w: fixed %v in %v variant", ErrModeForVariant, role, v)
				}
			default:
				return fmt.Errorf("%w: %v for %v", ErrModeForVariant, mode, role)
			}

			if mode == Policy && roster.OracleOf(role) == nil {
				return fmt.Errorf("%w: %v (matchup %v)", ErrMissingOracle, role, m)
			}
		}
	}
	return nil
}

func matchupNames(matchups []Matchup) string {
	names := make([]string, len(matchups))
	for i, m := range matchups {
		names[i] = m.String()
	}
	return strings.Join(names, ",")
}

// combine folds the stay and hit values of one slot according to the mode of
// the turn owner. chosen is only read in Policy mode.
func combine(mode Mode, role bj.Role, stay, hit float64, chosen bj.Action) float64 {
	switch mode {
	case Optimal:
		if role == bj.Player {
			return max(stay, hit)
		}
		return min(stay, hit)
	case Random:
		return 0.5*stay + 0.5*hit
	case Policy:
		if chosen == bj.Stay {
			return stay
		}
		return hit
	}
	panic(fmt.Sprintf("BUG: mode %v cannot choose for %v", mode, role))
}
