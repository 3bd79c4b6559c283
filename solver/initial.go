package solver

import (
	"cmp"
	"maps"
	"slices"

	"github.com/golang/glog"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"
)

// Tolerance bounds the floating-point drift accepted when comparing
// probabilities that should be equal, such as the sum of all initial deals.
const Tolerance = 1e-9

// Entry is one distinct initial deal and the probability of being dealt it.
type Entry struct {
	State       bj.State
	Probability float64
}

type deal struct {
	dealer bj.Card
	low    bj.Card
	high   bj.Card
}

func compareDeal(a, b deal) int {
	return cmp.Or(
		cmp.Compare(a.dealer, b.dealer),
		cmp.Compare(a.low, b.low),
		cmp.Compare(a.high, b.high),
	)
}

// InitialStates enumerates every ordered draw of three distinct deck positions,
// so that repeated face values keep their full multiplicity, and groups the
// draws into deals. The player's two cards are unordered. Entries are sorted by
// (dealer card, lower player card, higher player card).
func InitialStates(g *bj.Game) ([]Entry, error) {
	deck := g.FullDeck()
	n := len(deck)

	counts := map[deal]int{}
	gen := combin.NewPermutationGenerator(n, bj.InitialDealSize)
	perm := make([]int, bj.InitialDealSize)
	for gen.Next() {
		gen.Permutation(perm)
		p1, p2 := deck[perm[1]], deck[perm[2]]
		counts[deal{dealer: deck[perm[0]], low: min(p1, p2), high: max(p1, p2)}]++
	}

	total := float64(combin.NumPermutations(n, bj.InitialDealSize))
	deals := slices.SortedFunc(maps.Keys(counts), compareDeal)
	entries := make([]Entry, 0, len(deals))
	for _, d := range deals {
		state, err := g.Deal(d.dealer, d.low, d.high)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			State:       state,
			Probability: float64(counts[d]) / total,
		})
	}

	glog.V(1).Infof("enumerated %d initial deals from %d permutations", len(entries), int(total))
	return entries, nil
}

// NewEnumeration validates cfg and enumerates its initial deals.
func NewEnumeration(cfg bj.Config) ([]Entry, error) {
	g, err := bj.New(cfg)
	if err != nil {
		return nil, err
	}
	return InitialStates(g)
}

// TotalProbability sums the probabilities of the entries.
func TotalProbability(entries []Entry) float64 {
	ps := make([]float64, len(entries))
	for i, e := range entries {
		ps[i] = e.Probability
	}
	return floats.Sum(ps)
}
