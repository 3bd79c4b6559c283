package rl

import (
	"fmt"
	"math/rand/v2"

	"github.com/golang/glog"
	"github.com/sw965/winrate/agent"
	"github.com/sw965/winrate/game/sequential"
	bj "github.com/sw965/winrate/game/sequential/blackjack"
	"github.com/sw965/winrate/mathx/randx"
	"github.com/sw965/winrate/ql"
	"github.com/sw965/winrate/solver"
)

type Record = sequential.Record[bj.State, bj.Action, bj.Role]

type Checkpoint struct {
	Episode int
	// Theoretical is the exact win probability of the greedy policies.
	Theoretical float64
	// Empirical is the win rate observed over EvaluationEpisodes greedy games.
	Empirical float64
}

// Lineup is one policy matchup together with the agents that play its
// Policy roles. The agent of a role that is not in Policy mode is nil.
type Lineup struct {
	Matchup solver.Matchup
	Player  agent.Model
	Dealer  agent.Model
	History []Checkpoint
}

func (l *Lineup) Name() string {
	return l.Matchup.String()
}

func (l *Lineup) AgentOf(role bj.Role) agent.Model {
	if role == bj.Dealer {
		return l.Dealer
	}
	return l.Player
}

// Roster returns the agents as solver oracles.
func (l *Lineup) Roster() solver.Roster {
	return solver.Roster{Player: l.Player, Dealer: l.Dealer}
}

type Experience struct {
	Features []float32
	Action   bj.Action
	Target   float32
}

// Experiences turns the moves of role in record into regression targets for
// model: the discounted value of the role's next decision, or the discounted
// result after its last one.
func Experiences(g *bj.Game, record Record, role bj.Role, model agent.Model, discountRate float32) ([]Experience, error) {
	steps := record.StepsOf(role)
	reward := record.ResultScoreByAgent[role]
	experiences := make([]Experience, len(steps))
	for i, step := range steps {
		var target float32
		if i+1 < len(steps) {
			nextMaxQ, err := model.MaxActionValue(g.Features(steps[i+1].State))
			if err != nil {
				return nil, err
			}
			target = ql.TDTarget(0, nextMaxQ, discountRate)
		} else {
			target = ql.TerminalTarget(reward, discountRate)
		}

		experiences[i] = Experience{
			Features: g.Features(step.State),
			Action:   step.Move,
			Target:   target,
		}
	}
	return experiences, nil
}

// Trainer trains one Lineup per policy matchup of the game's variant and
// tracks how the exact and the empirical win probabilities evolve.
type Trainer struct {
	Game    *bj.Game
	Config  Config
	Lineups []*Lineup
	engine  sequential.Engine[bj.State, bj.Action, bj.Role]
}

func NewTrainer(g *bj.Game, cfg Config, rng *rand.Rand) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	matchups := solver.PolicyMatchups(g.Variant())
	lineups := make([]*Lineup, len(matchups))
	for i, m := range matchups {
		l := &Lineup{Matchup: m}
		if m.Player == solver.Policy {
			model, err := newModel(g, cfg, rng)
			if err != nil {
				return nil, err
			}
			l.Player = model
		}
		if m.Dealer == solver.Policy {
			model, err := newModel(g, cfg, rng)
			if err != nil {
				return nil, err
			}
			l.Dealer = model
		}
		lineups[i] = l
	}

	return &Trainer{
		Game:    g,
		Config:  cfg,
		Lineups: lineups,
		engine:  g.NewEngine(),
	}, nil
}

func newModel(g *bj.Game, cfg Config, rng *rand.Rand) (agent.Model, error) {
	if len(cfg.HiddenUnits) == 0 {
		return agent.NewLinear(g.FeatureSize(), cfg.LearningRate, rng), nil
	}
	return agent.NewMLP(g.FeatureSize(), cfg.HiddenUnits, cfg.LearningRate, rng)
}

func (t *Trainer) actor(l *Lineup, role bj.Role, epsilon float32) (Actor, error) {
	switch mode := l.Matchup.ModeOf(role); mode {
	case solver.Policy:
		if epsilon == 0 {
			return GreedyActor(t.Game, l.AgentOf(role)), nil
		}
		return EpsilonGreedyActor(t.Game, l.AgentOf(role), epsilon), nil
	case solver.Random:
		return sequential.NewRandomActor[bj.State, bj.Action, bj.Role](), nil
	case solver.Fixed:
		return DealerRuleActor(), nil
	default:
		return Actor{}, fmt.Errorf("%w: %v cannot be played by %v", solver.ErrModeForVariant, role, mode)
	}
}

func (t *Trainer) actors(l *Lineup, epsilon float32) (Actor, Actor, error) {
	player, err := t.actor(l, bj.Player, epsilon)
	if err != nil {
		return Actor{}, Actor{}, err
	}
	dealer, err := t.actor(l, bj.Dealer, epsilon)
	if err != nil {
		return Actor{}, Actor{}, err
	}
	return player, dealer, nil
}

// Episode plays one exploratory game of the lineup and updates its agents.
func (t *Trainer) Episode(l *Lineup, rng *rand.Rand) error {
	player, dealer, err := t.actors(l, t.Config.ExplorationRate)
	if err != nil {
		return err
	}

	actor, err := t.engine.CombineActors(map[bj.Role]Actor{bj.Player: player, bj.Dealer: dealer})
	if err != nil {
		return err
	}

	state := t.Game.Reset(rng)
	records, err := t.engine.RecordPlayouts([]bj.State{state}, actor, len(state.Deck)+1, []*rand.Rand{rng})
	if err != nil {
		return err
	}

	for _, role := range bj.Roles {
		model := l.AgentOf(role)
		if model == nil {
			continue
		}

		experiences, err := Experiences(t.Game, records[0], role, model, t.Config.DiscountRate)
		if err != nil {
			return err
		}
		for _, e := range experiences {
			if err := model.Update(e.Features, e.Action, e.Target); err != nil {
				return err
			}
		}
	}
	return nil
}

// Measure appends a Checkpoint for the current greedy policies of l.
func (t *Trainer) Measure(l *Lineup, episode int, rngs []*rand.Rand) (Checkpoint, error) {
	theoretical, err := solver.AggregateParallel(t.Game, []solver.Matchup{l.Matchup}, l.Roster(), len(rngs))
	if err != nil {
		return Checkpoint{}, err
	}

	player, dealer, err := t.actors(l, 0)
	if err != nil {
		return Checkpoint{}, err
	}

	empirical, err := Evaluate(t.Game, player, dealer, t.Config.EvaluationEpisodes, rngs)
	if err != nil {
		return Checkpoint{}, err
	}

	c := Checkpoint{Episode: episode, Theoretical: theoretical[0], Empirical: empirical}
	l.History = append(l.History, c)
	glog.Infof("episode %d %s: theoretical %.4f empirical %.4f", episode, l.Name(), c.Theoretical, c.Empirical)
	return c, nil
}

// Run evaluates every lineup once before training and then after every
// Interval episodes.
func (t *Trainer) Run(rng *rand.Rand) error {
	rngs := randx.NewRNGs(t.Config.Parallelism, rng)
	for _, l := range t.Lineups {
		if _, err := t.Measure(l, 0, rngs); err != nil {
			return err
		}
	}

	for episode := 1; episode <= t.Config.Episodes; episode++ {
		for _, l := range t.Lineups {
			if err := t.Episode(l, rng); err != nil {
				return fmt.Errorf("episode %d %s: %w", episode, l.Name(), err)
			}
		}

		if episode%t.Config.Interval != 0 {
			continue
		}
		for _, l := range t.Lineups {
			if _, err := t.Measure(l, episode, rngs); err != nil {
				return err
			}
		}
	}
	return nil
}
