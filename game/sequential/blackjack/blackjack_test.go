package blackjack_test

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	bj "github.com/sw965/winrate/game/sequential/blackjack"
)

func newGame(t *testing.T, cfg bj.Config) *bj.Game {
	t.Helper()
	g, err := bj.New(cfg)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	return g
}

func TestCounts(t *testing.T) {
	deck := bj.Deck{4, 1, 3, 1}
	counts := deck.Counts()
	if got := counts.Count(1); got != 2 {
		t.Errorf("want: %d, got: %d", 2, got)
	}
	if got := counts.Len(); got != 4 {
		t.Errorf("want: %d, got: %d", 4, got)
	}
	if got, want := counts.Distinct(), []bj.Card{1, 3, 4}; !slices.Equal(got, want) {
		t.Errorf("want: %v, got: %v", want, got)
	}

	// 順序が異なっても同じ多重集合なら等しい
	if other := (bj.Deck{1, 1, 3, 4}).Counts(); other != counts {
		t.Errorf("want: %v, got: %v", counts, other)
	}

	t.Run("異常_負の枚数", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Errorf("panicを期待したが、発生しなかった")
			}
		}()
		counts.Remove(2)
	})
}

func TestStateClone(t *testing.T) {
	state := bj.State{
		Dealer: bj.Hand{1},
		Player: bj.Hand{2, 3},
		Deck:   bj.Deck{4, 4},
		Turn:   bj.PlayerTurn,
	}
	clone := state.Clone()
	if !clone.Equal(state) {
		t.Fatalf("want: %v, got: %v", state, clone)
	}

	clone.Dealer[0] = 9
	clone.Player[0] = 9
	clone.Deck[0] = 9
	if state.Dealer[0] != 1 || state.Player[0] != 2 || state.Deck[0] != 4 {
		t.Errorf("cloneへの変更が元の状態に影響した: %v", state)
	}
}

func TestReset(t *testing.T) {
	cfg := bj.OnePlayerConfig()
	g := newGame(t, cfg)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 16 {
		state := g.Reset(rng)
		if len(state.Dealer) != 1 || len(state.Player) != 2 {
			t.Fatalf("初期配布の枚数が不正: %v", state)
		}
		if len(state.Deck) != len(cfg.Deck)-bj.InitialDealSize {
			t.Fatalf("want: %d, got: %d", len(cfg.Deck)-bj.InitialDealSize, len(state.Deck))
		}
		if state.Turn != bj.PlayerTurn {
			t.Fatalf("want: %v, got: %v", bj.PlayerTurn, state.Turn)
		}

		all := slices.Concat(state.Dealer, state.Player, state.Deck)
		if got, want := bj.Deck(all).Counts(), bj.Deck(cfg.Deck).Counts(); got != want {
			t.Fatalf("カードの多重集合が保存されていない: want: %v, got: %v", want, got)
		}
	}
}

func TestDeal(t *testing.T) {
	g := newGame(t, bj.OnePlayerConfig())

	state, err := g.Deal(1, 2, 2)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	if got, want := state.Deck.Counts(), (bj.Deck{1, 3, 3, 4, 4}).Counts(); got != want {
		t.Errorf("want: %v, got: %v", want, got)
	}

	if _, err := g.Deal(2, 2, 2); !errors.Is(err, bj.ErrCardNotInDeck) {
		t.Errorf("want: %v, got: %v", bj.ErrCardNotInDeck, err)
	}
	if _, err := g.Deal(0, 2, 2); !errors.Is(err, bj.ErrInvalidCard) {
		t.Errorf("want: %v, got: %v", bj.ErrInvalidCard, err)
	}
}

func TestLegalMoves(t *testing.T) {
	one := newGame(t, bj.OnePlayerConfig())
	two := newGame(t, bj.TwoPlayerConfig())

	tests := []struct {
		name  string
		game  *bj.Game
		state bj.State
		want  []bj.Action
	}{
		{
			name:  "正常_プレイヤー手番",
			game:  one,
			state: bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{4}, Turn: bj.PlayerTurn},
			want:  []bj.Action{bj.Stay, bj.Hit},
		},
		{
			name:  "正常_固定ディーラーはヒットのみ",
			game:  one,
			state: bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{4}, Turn: bj.DealerTurn},
			want:  []bj.Action{bj.Hit},
		},
		{
			name:  "正常_自由ディーラー",
			game:  two,
			state: bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{4}, Turn: bj.DealerTurn},
			want:  []bj.Action{bj.Stay, bj.Hit},
		},
		{
			name:  "正常_山札が空ならヒット不可",
			game:  one,
			state: bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{}, Turn: bj.PlayerTurn},
			want:  []bj.Action{bj.Stay},
		},
		{
			name:  "正常_終了後は合法手なし",
			game:  two,
			state: bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{4}, Turn: bj.DealerStayed},
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Helper()
			got := tc.game.LegalMoves(tc.state)
			if !slices.Equal(got, tc.want) {
				t.Errorf("want: %v, got: %v", tc.want, got)
			}
		})
	}
}

func TestApplyAction(t *testing.T) {
	one := newGame(t, bj.OnePlayerConfig())
	base := bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{4, 1}, Turn: bj.PlayerTurn}

	t.Run("正常_ヒットは山札の一番上を配る", func(t *testing.T) {
		got, err := one.ApplyAction(base, bj.Hit)
		if err != nil {
			t.Fatalf("予期せぬエラーが発生した: %v", err)
		}
		want := bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3, 1}, Deck: bj.Deck{4}, Turn: bj.PlayerTurn}
		if !got.Equal(want) {
			t.Errorf("want: %v, got: %v", want, got)
		}
		if len(base.Deck) != 2 || len(base.Player) != 2 {
			t.Errorf("引数の状態が変更された: %v", base)
		}
	})

	t.Run("正常_ステイで手番が移る", func(t *testing.T) {
		got, err := one.ApplyAction(base, bj.Stay)
		if err != nil {
			t.Fatalf("予期せぬエラーが発生した: %v", err)
		}
		if got.Turn != bj.DealerTurn {
			t.Errorf("want: %v, got: %v", bj.DealerTurn, got.Turn)
		}
	})

	t.Run("正常_ディーラーのヒット", func(t *testing.T) {
		dealerTurn := base.Clone()
		dealerTurn.Turn = bj.DealerTurn
		got, err := one.ApplyAction(dealerTurn, bj.Hit)
		if err != nil {
			t.Fatalf("予期せぬエラーが発生した: %v", err)
		}
		if want := (bj.Hand{1, 1}); !slices.Equal(got.Dealer, want) {
			t.Errorf("want: %v, got: %v", want, got.Dealer)
		}
	})

	errTests := []struct {
		name    string
		state   bj.State
		action  bj.Action
		wantErr error
	}{
		{
			name:    "異常_不正な行動",
			state:   base,
			action:  bj.Action(7),
			wantErr: bj.ErrInvalidAction,
		},
		{
			name:    "異常_固定ディーラーのステイ",
			state:   bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{4}, Turn: bj.DealerTurn},
			action:  bj.Stay,
			wantErr: bj.ErrIllegalAction,
		},
		{
			name:    "異常_山札が空",
			state:   bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{}, Turn: bj.PlayerTurn},
			action:  bj.Hit,
			wantErr: bj.ErrEmptyDeck,
		},
		{
			name:    "異常_終了後の行動",
			state:   bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{4, 4, 3}, Deck: bj.Deck{2}, Turn: bj.PlayerTurn},
			action:  bj.Hit,
			wantErr: bj.ErrIllegalAction,
		},
	}

	for _, tc := range errTests {
		t.Run(tc.name, func(t *testing.T) {
			t.Helper()
			_, err := one.ApplyAction(tc.state, tc.action)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("want: %v, got: %v", tc.wantErr, err)
			}
		})
	}
}

func TestDraw(t *testing.T) {
	two := newGame(t, bj.TwoPlayerConfig())
	state := bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{4, 1, 4}, Turn: bj.DealerTurn}

	got, err := two.Draw(state, 4)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	if want := (bj.Hand{1, 4}); !slices.Equal(got.Dealer, want) {
		t.Errorf("want: %v, got: %v", want, got.Dealer)
	}
	if want := (bj.Deck{1, 4}).Counts(); got.Deck.Counts() != want {
		t.Errorf("want: %v, got: %v", want, got.Deck.Counts())
	}

	if _, err := two.Draw(state, 3); !errors.Is(err, bj.ErrCardNotInDeck) {
		t.Errorf("want: %v, got: %v", bj.ErrCardNotInDeck, err)
	}
}

func TestDrawGoesToTurnOwner(t *testing.T) {
	two := newGame(t, bj.TwoPlayerConfig())
	tests := []struct {
		name  string
		turn  bj.Turn
		owner bj.Role
		other bj.Role
	}{
		{name: "正常_プレイヤーの手番", turn: bj.PlayerTurn, owner: bj.Player, other: bj.Dealer},
		{name: "正常_ディーラーの手番", turn: bj.DealerTurn, owner: bj.Dealer, other: bj.Player},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state := bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Deck: bj.Deck{4, 1}, Turn: tc.turn}
			got, err := two.Draw(state, 4)
			if err != nil {
				t.Fatalf("予期せぬエラーが発生した: %v", err)
			}

			want := append(state.HandOf(tc.owner).Clone(), 4)
			if !slices.Equal(got.HandOf(tc.owner), want) {
				t.Errorf("want: %v, got: %v", want, got.HandOf(tc.owner))
			}
			if !slices.Equal(got.HandOf(tc.other), state.HandOf(tc.other)) {
				t.Errorf("want: %v, got: %v", state.HandOf(tc.other), got.HandOf(tc.other))
			}
			// 元の状態は変更されない
			if n := len(state.HandOf(tc.owner)); n != len(want)-1 {
				t.Errorf("want: %d, got: %d", len(want)-1, n)
			}
		})
	}
}

func TestIsGameOver(t *testing.T) {
	one := newGame(t, bj.OnePlayerConfig())
	two := newGame(t, bj.TwoPlayerConfig())

	tests := []struct {
		name        string
		game        *bj.Game
		state       bj.State
		wantOver    bool
		wantOutcome bj.Outcome
	}{
		{
			name:     "正常_継続中",
			game:     one,
			state:    bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Turn: bj.PlayerTurn},
			wantOver: false,
		},
		{
			name:        "正常_プレイヤーのバースト",
			game:        one,
			state:       bj.State{Dealer: bj.Hand{3, 4}, Player: bj.Hand{4, 4, 1}, Turn: bj.PlayerTurn},
			wantOver:    true,
			wantOutcome: bj.Loss,
		},
		{
			name:        "正常_ディーラーのバースト",
			game:        two,
			state:       bj.State{Dealer: bj.Hand{4, 4, 1}, Player: bj.Hand{2}, Turn: bj.DealerTurn},
			wantOver:    true,
			wantOutcome: bj.Win,
		},
		{
			name:        "正常_固定ディーラーがリミット到達_プレイヤー勝ち",
			game:        one,
			state:       bj.State{Dealer: bj.Hand{3, 3}, Player: bj.Hand{4, 3}, Turn: bj.DealerTurn},
			wantOver:    true,
			wantOutcome: bj.Win,
		},
		{
			name:        "正常_引き分けはディーラーの勝ち",
			game:        one,
			state:       bj.State{Dealer: bj.Hand{4, 3}, Player: bj.Hand{4, 3}, Turn: bj.DealerTurn},
			wantOver:    true,
			wantOutcome: bj.Loss,
		},
		{
			name:     "正常_固定ディーラーがリミット未満",
			game:     one,
			state:    bj.State{Dealer: bj.Hand{4, 1}, Player: bj.Hand{4, 3}, Turn: bj.DealerTurn},
			wantOver: false,
		},
		{
			name:     "正常_自由ディーラーにリミットはない",
			game:     two,
			state:    bj.State{Dealer: bj.Hand{4, 3}, Player: bj.Hand{4, 4}, Turn: bj.DealerTurn},
			wantOver: false,
		},
		{
			name:        "正常_ディーラーのステイで決着",
			game:        two,
			state:       bj.State{Dealer: bj.Hand{4, 3}, Player: bj.Hand{4, 4}, Turn: bj.DealerStayed},
			wantOver:    true,
			wantOutcome: bj.Win,
		},
		{
			name:        "正常_プレイヤー手番でのバースト判定はプレイヤーのみ",
			game:        one,
			state:       bj.State{Dealer: bj.Hand{4, 3}, Player: bj.Hand{4, 4, 1}, Turn: bj.PlayerTurn},
			wantOver:    true,
			wantOutcome: bj.Loss,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Helper()
			over, outcome := tc.game.IsGameOver(tc.state)
			if over != tc.wantOver {
				t.Fatalf("want: %t, got: %t", tc.wantOver, over)
			}
			if over && outcome != tc.wantOutcome {
				t.Errorf("want: %v, got: %v", tc.wantOutcome, outcome)
			}
		})
	}
}

func TestFeatures(t *testing.T) {
	g := newGame(t, bj.OnePlayerConfig())

	state := bj.State{Dealer: bj.Hand{2}, Player: bj.Hand{1, 3}, Deck: bj.Deck{1, 4, 4, 2}, Turn: bj.PlayerTurn}
	got := g.Features(state)
	want := []float32{0.25, 0.5, 0.25, 0.25, 0, 0.5}
	if !slices.Equal(got, want) {
		t.Errorf("want: %v, got: %v", want, got)
	}
	if len(got) != g.FeatureSize() {
		t.Errorf("want: %d, got: %d", g.FeatureSize(), len(got))
	}

	// 手札の構成や山札の順序ではなく、合計と山札の中身のみに依存する
	other := bj.State{Dealer: bj.Hand{1, 1}, Player: bj.Hand{4}, Deck: bj.Deck{2, 4, 1, 4}, Turn: bj.DealerTurn}
	if o := g.Features(other); !slices.Equal(o, got) {
		t.Errorf("want: %v, got: %v", got, o)
	}

	empty := bj.State{Dealer: bj.Hand{2}, Player: bj.Hand{1, 3}, Turn: bj.PlayerTurn}
	if e := g.Features(empty); !slices.Equal(e, []float32{0.25, 0.5, 0, 0, 0, 0}) {
		t.Errorf("空の山札の特徴量が不正: %v", e)
	}
}

func TestRankByAgent(t *testing.T) {
	g := newGame(t, bj.TwoPlayerConfig())
	engine := g.NewEngine()

	ongoing := bj.State{Dealer: bj.Hand{1}, Player: bj.Hand{2, 3}, Turn: bj.PlayerTurn}
	if end, err := engine.IsEnd(ongoing); err != nil || end {
		t.Fatalf("want: false, got: %t (err: %v)", end, err)
	}

	won := bj.State{Dealer: bj.Hand{4, 4, 1}, Player: bj.Hand{2, 3}, Turn: bj.DealerTurn}
	scores, err := engine.EvaluateResultScoreByAgent(won)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	if scores[bj.Player] != 1.0 || scores[bj.Dealer] != 0.0 {
		t.Errorf("want: player 1.0 dealer 0.0, got: %v", scores)
	}

	lost := bj.State{Dealer: bj.Hand{4, 1}, Player: bj.Hand{2, 3}, Turn: bj.DealerStayed}
	scores, err = engine.EvaluateResultScoreByAgent(lost)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	if scores[bj.Player] != 0.0 || scores[bj.Dealer] != 1.0 {
		t.Errorf("want: player 0.0 dealer 1.0, got: %v", scores)
	}
}
