package sequential

import (
	"errors"
	"fmt"
)

var (
	ErrNilFunc        = errors.New("func must not be nil")
	ErrNoAgents       = errors.New("agents list must not be empty")
	ErrNoLegalMoves   = errors.New("game is not ended but no legal moves are available")
	ErrUnknownAgent   = errors.New("no actor registered for agent")
	ErrDuplicateAgent = errors.New("duplicate agent detected")
	ErrEmptyRank      = errors.New("agents list for a rank cannot be empty")
	ErrInvalidRank    = errors.New("invalid rank")
)

type LegalMovesFunc[S any, M comparable] func(S) []M
type MoveFunc[S any, M comparable] func(S, M) (S, error)
type EqualFunc[S any] func(S, S) bool
type CurrentAgentFunc[S any, A comparable] func(S) A

type Logic[S any, M, A comparable] struct {
	LegalMovesFunc   LegalMovesFunc[S, M]
	MoveFunc         MoveFunc[S, M]
	EqualFunc        EqualFunc[S]
	CurrentAgentFunc CurrentAgentFunc[S, A]
}

func (l Logic[S, M, A]) Validate() error {
	if l.LegalMovesFunc == nil {
		return fmt.Errorf("%w: LegalMovesFunc", ErrNilFunc)
	}
	if l.MoveFunc == nil {
		return fmt.Errorf("%w: MoveFunc", ErrNilFunc)
	}
	if l.EqualFunc == nil {
		return fmt.Errorf("%w: EqualFunc", ErrNilFunc)
	}
	if l.CurrentAgentFunc == nil {
		return fmt.Errorf("%w: CurrentAgentFunc", ErrNilFunc)
	}
	return nil
}

// Engine drives a turn-based game through its Logic and reports the
// final ranking of every agent once the game is over.
type Engine[S any, M, A comparable] struct {
	Logic                  Logic[S, M, A]
	RankByAgentFunc        RankByAgentFunc[S, A]
	ResultScoreByAgentFunc ResultScoreByAgentFunc[A]
	Agents                 []A
}

func (e Engine[S, M, A]) Validate() error {
	if err := e.Logic.Validate(); err != nil {
		return err
	}

	if e.RankByAgentFunc == nil {
		return fmt.Errorf("%w: RankByAgentFunc", ErrNilFunc)
	}

	if e.ResultScoreByAgentFunc == nil {
		return fmt.Errorf("%w: ResultScoreByAgentFunc", ErrNilFunc)
	}

	if len(e.Agents) == 0 {
		return ErrNoAgents
	}
	return nil
}

func (e Engine[S, M, A]) IsEnd(state S) (bool, error) {
	rankByAgent, err := e.RankByAgentFunc(state)
	return len(rankByAgent) != 0, err
}
