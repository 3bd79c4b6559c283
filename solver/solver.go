// Package solver computes exact win probabilities of the reduced-deck
// blackjack by memoized recursion over every reachable state.
//
// A Solver is built with a list of Matchups. Each call to Solve returns one
// win probability per matchup, all computed in the same traversal.
package solver

import (
	"errors"
	"fmt"
	"slices"

	"github.com/golang/glog"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
)

var (
	ErrNoMatchups     = errors.New("matchups must not be empty")
	ErrModeForVariant = errors.New("mode is not allowed for the role in this variant")
	ErrMissingOracle  = errors.New("policy mode requires an oracle")
	ErrOracle         = errors.New("oracle failed")
	ErrParallelism    = errors.New("parallelism must be positive")
)

// Probabilities holds the player's win probability for each matchup,
// in the order the matchups were given.
type Probabilities []float64

func uniform(n int, v float64) Probabilities {
	ps := make(Probabilities, n)
	for i := range ps {
		ps[i] = v
	}
	return ps
}

// Branches are the values of staying and of hitting at a decision state.
// Stay is nil where staying is not allowed.
type Branches struct {
	Stay Probabilities
	Hit  Probabilities
}

type Solver struct {
	game     *bj.Game
	matchups []Matchup
	roster   Roster
	memo     MemoTable
	// needsOracle[role]は、いずれかのマッチアップでそのroleがPolicyモードかどうか
	needsOracle [2]bool
	// onlyPolicy[role]は、全てのマッチアップでそのroleがPolicyモードかどうか
	onlyPolicy [2]bool
}

func New(g *bj.Game, matchups []Matchup, roster Roster) (*Solver, error) {
	if err := validateMatchups(g.Variant(), matchups, roster); err != nil {
		return nil, err
	}

	s := &Solver{
		game:     g,
		matchups: slices.Clone(matchups),
		roster:   roster,
		memo:     MemoTable{},
	}
	for _, role := range bj.Roles {
		s.onlyPolicy[role] = true
		for _, m := range matchups {
			if m.ModeOf(role) == Policy {
				s.needsOracle[role] = true
			} else {
				s.onlyPolicy[role] = false
			}
		}
	}
	return s, nil
}

func (s *Solver) Matchups() []Matchup {
	return slices.Clone(s.matchups)
}

// MemoSize reports how many states have been solved and cached.
func (s *Solver) MemoSize() int {
	return len(s.memo)
}

// Solve returns the win probability of every matchup from state onwards.
// Results are cached for the lifetime of the Solver.
func (s *Solver) Solve(state bj.State) (Probabilities, error) {
	ps, err := s.solve(state)
	if err != nil {
		return nil, err
	}
	return slices.Clone(ps), nil
}

// Branches returns the stay and hit values of a state that is not over.
func (s *Solver) Branches(state bj.State) (Branches, error) {
	if over, _ := s.game.IsGameOver(state); over {
		return Branches{}, fmt.Errorf("%w: the game is over", bj.ErrIllegalAction)
	}
	b, err := s.branches(state)
	if err != nil {
		return Branches{}, err
	}
	return Branches{Stay: slices.Clone(b.Stay), Hit: slices.Clone(b.Hit)}, nil
}

// 返り値はメモと共有されるため、呼び出し側で変更してはならない
func (s *Solver) solve(state bj.State) (Probabilities, error) {
	key := Canonicalize(state)
	if ps, ok := s.memo[key]; ok {
		return ps, nil
	}

	if over, outcome := s.game.IsGameOver(state); over {
		return uniform(len(s.matchups), float64(outcome)), nil
	}

	role := s.game.CurrentRole(state)
	var ps Probabilities
	if role == bj.Dealer && s.game.Variant() == bj.FixedDealer {
		hit, err := s.hit(state)
		if err != nil {
			return nil, err
		}
		ps = hit
	} else {
		chosen, err := s.choose(state, role)
		if err != nil {
			return nil, err
		}

		if s.onlyPolicy[role] {
			// 選ばれなかった枝は探索しない
			ps, err = s.follow(state, chosen)
			if err != nil {
				return nil, err
			}
		} else {
			b, err := s.branches(state)
			if err != nil {
				return nil, err
			}

			ps = make(Probabilities, len(s.matchups))
			for i, m := range s.matchups {
				ps[i] = combine(m.ModeOf(role), role, b.Stay[i], b.Hit[i], chosen)
			}
		}
	}

	s.memo[key] = ps
	return ps, nil
}

func (s *Solver) branches(state bj.State) (Branches, error) {
	var b Branches
	if state.Turn == bj.PlayerTurn || s.game.Variant() == bj.FreeDealer {
		stay, err := s.solve(s.game.Stay(state))
		if err != nil {
			return Branches{}, err
		}
		b.Stay = stay
	}

	hit, err := s.hit(state)
	if err != nil {
		return Branches{}, err
	}
	b.Hit = hit
	return b, nil
}

// follow solves only the branch of action.
func (s *Solver) follow(state bj.State, action bj.Action) (Probabilities, error) {
	if action == bj.Hit {
		return s.hit(state)
	}
	stay, err := s.solve(s.game.Stay(state))
	if err != nil {
		return nil, err
	}
	return slices.Clone(stay), nil
}

// hit weighs the value after drawing each distinct remaining value by its
// draw probability. An empty deck yields all zeros.
func (s *Solver) hit(state bj.State) (Probabilities, error) {
	ps := make(Probabilities, len(s.matchups))
	counts := state.Deck.Counts()
	n := float64(len(state.Deck))
	for _, card := range counts.Distinct() {
		p := float64(counts.Count(card)) / n
		next, err := s.game.Draw(state, card)
		if err != nil {
			panic(fmt.Sprintf("BUG: drawing %d from %v: %v", card, state.Deck, err))
		}

		sub, err := s.solve(next)
		if err != nil {
			return nil, err
		}
		for i := range ps {
			ps[i] += p * sub[i]
		}
	}
	return ps, nil
}

func (s *Solver) choose(state bj.State, role bj.Role) (bj.Action, error) {
	if !s.needsOracle[role] {
		return bj.Stay, nil
	}

	action, err := s.roster.OracleOf(role).ChooseAction(s.game.Features(state))
	if err != nil {
		return 0, fmt.Errorf("%w: %v: %w", ErrOracle, role, err)
	}

	if err := action.Validate(); err != nil {
		return 0, fmt.Errorf("%v oracle: %w", role, err)
	}

	if glog.V(2) {
		glog.Infof("%v oracle chose %v at %v", role, action, state)
	}
	return action, nil
}
