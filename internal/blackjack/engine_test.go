package blackjack

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	return NewEngine(cfg, NewContext(), deck.NewRNG(42), quietLogger())
}

func rigShoe(e *Engine, ranks ...deck.Rank) {
	e.StackShoe(ranks...)
}

func TestFreshShoeSize(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{NumDecks: 1})
	assert.Equal(t, deck.CardsPerDeck, e.ShoeSize())

	e6 := newTestEngine(t, Config{NumDecks: 6})
	assert.Equal(t, 6*deck.CardsPerDeck, e6.ShoeSize())
}

func TestDrawBelowThresholdRebuildsShoe(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{NumDecks: 1, ShuffleThreshold: 15})

	// Draw down to one card below the threshold.
	for i := 0; i < deck.CardsPerDeck-14; i++ {
		_, err := e.DrawCard()
		require.NoError(t, err)
	}
	require.Equal(t, 14, e.ShoeSize())

	// The next draw rebuilds to full size and resets the count first.
	card, err := e.DrawCard()
	require.NoError(t, err)
	assert.Equal(t, deck.CardsPerDeck-1, e.ShoeSize())
	assert.Equal(t, e.rules.Weight(card), e.RunningCount(),
		"running count after reshuffle reflects only the post-shuffle draw")
}

func TestDrawUpdatesRunningCount(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{NumDecks: 1, ShuffleThreshold: 1})

	want := 0
	for i := 0; i < 10; i++ {
		card, err := e.DrawCard()
		require.NoError(t, err)
		want += e.rules.Weight(card)
	}
	assert.Equal(t, want, e.RunningCount())
}

func TestDrawRank(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{NumDecks: 1})

	card, err := e.DrawRank(deck.Ace)
	require.NoError(t, err)
	assert.Equal(t, deck.Ace, card)
	assert.Equal(t, -1, e.RunningCount())
	assert.Equal(t, deck.CardsPerDeck-1, e.ShoeSize())
}

func TestDrawRankMissing(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{NumDecks: 1})
	rigShoe(e, deck.Five, deck.Five)

	_, err := e.DrawRank(deck.King)
	var notFound RankNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, deck.King, notFound.Rank)
}

func TestTrueCountFloorsDecksRemaining(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{NumDecks: 1, ShuffleThreshold: 1})

	// Draw down to ten cards: 10/52 decks remaining is floored at 0.5.
	want := 0
	for i := 0; i < deck.CardsPerDeck-10; i++ {
		card, err := e.DrawCard()
		require.NoError(t, err)
		want += e.rules.Weight(card)
	}
	assert.InDelta(t, float64(want)/0.5, e.TrueCount(), 0.005)
}

func TestValidateBet(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100, MinBet: 5, MaxBet: 50})

	tests := []struct {
		name   string
		bet    int
		reason string
	}{
		{"negative", -1, "bet must be positive"},
		{"zero", 0, "bet must be positive"},
		{"below minimum", 4, "minimum bet is $5"},
		{"above maximum", 51, "maximum bet is $50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateBet(tt.bet)
			var invalid InvalidBetError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.reason, invalid.Reason)
		})
	}

	assert.NoError(t, e.ValidateBet(5))
	assert.NoError(t, e.ValidateBet(50))

	// Within limits but beyond the bankroll.
	poor := newTestEngine(t, Config{StartingBankroll: 20, MinBet: 5, MaxBet: 500})
	err := poor.ValidateBet(30)
	var invalid InvalidBetError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "insufficient funds", invalid.Reason)
}

func TestStartRoundDealsAndDebits(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{})

	var dealt int
	e.Extension().Bus.Subscribe(EventCardDealt, func(Event) { dealt++ })
	var started bool
	e.Extension().Bus.Subscribe(EventRoundStarted, func(ev Event) {
		started = true
		assert.Equal(t, 10, ev.(*RoundStartedEvent).Bet)
	})

	require.NoError(t, e.StartRound(10))

	assert.Equal(t, 490, e.Bankroll())
	assert.Equal(t, 2, e.Dealer().CardCount())
	require.Len(t, e.Hands(), 1)
	assert.Equal(t, 2, e.Hands()[0].CardCount())
	assert.Equal(t, 10, e.Hands()[0].Bet)
	assert.Len(t, e.History(), 4)
	assert.Equal(t, 1, e.Stats().HandsPlayed)
	assert.Equal(t, 10, e.Stats().TotalWagered)
	assert.Equal(t, 4, dealt)
	assert.True(t, started)
}

func TestStartRoundRejectsBadBet(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{})
	err := e.StartRound(0)
	var invalid InvalidBetError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 500, e.Bankroll())
	assert.Zero(t, e.Stats().HandsPlayed)
}

func TestHitToTwentyOneDoesNotFinishHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{ShuffleThreshold: 1})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Ten, deck.Five}},
		10,
	))
	rigShoe(e, deck.Six, deck.Six)

	require.NoError(t, e.ExecuteAction(0, Hit))

	hand := e.Hands()[0]
	assert.Equal(t, 21, hand.Value())
	assert.False(t, hand.Finished, "hitting to exactly 21 leaves the hand open")
}

func TestHitBustFinishesHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{ShuffleThreshold: 1})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Ten, deck.Five}},
		10,
	))
	rigShoe(e, deck.King, deck.King)

	require.NoError(t, e.ExecuteAction(0, Hit))

	hand := e.Hands()[0]
	assert.True(t, hand.IsBust())
	assert.True(t, hand.Finished)
}

func TestStandFinishesHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Ten, deck.Seven}},
		10,
	))

	require.NoError(t, e.ExecuteAction(0, Stand))
	assert.True(t, e.Hands()[0].Finished)
}

func TestDoubleDebitsAndFinishes(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100, ShuffleThreshold: 1})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Five, deck.Six}},
		10,
	))
	rigShoe(e, deck.Ten, deck.Ten)
	require.Equal(t, 90, e.Bankroll())

	require.NoError(t, e.ExecuteAction(0, Double))

	hand := e.Hands()[0]
	assert.Equal(t, 80, e.Bankroll())
	assert.Equal(t, 20, hand.Bet)
	assert.Equal(t, 3, hand.CardCount())
	assert.True(t, hand.Doubled)
	assert.True(t, hand.Finished)
}

func TestSplitProducesTwoHands(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100, ShuffleThreshold: 1})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Eight, deck.Eight}},
		10,
	))
	rigShoe(e, deck.Three, deck.Three, deck.Three, deck.Three)
	require.Equal(t, 90, e.Bankroll())

	require.NoError(t, e.ExecuteAction(0, Split))

	require.Len(t, e.Hands(), 2)
	assert.Equal(t, 80, e.Bankroll(), "split debits one additional wager")
	for _, h := range e.Hands() {
		assert.Equal(t, 2, h.CardCount())
		assert.Equal(t, 10, h.Bet)
		assert.Equal(t, deck.Eight, h.Cards()[0], "each hand keeps one original card")
		assert.False(t, h.Finished)
	}
}

func TestSplitIneligible(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Eight, deck.Nine}},
		10,
	))

	err := e.ExecuteAction(0, Split)
	var invalid InvalidActionError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, e.Hands(), 1)
}

func TestSurrenderCreditsHalfWager(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Ten, deck.Five}},
		15,
	))
	require.Equal(t, 85, e.Bankroll())

	require.NoError(t, e.ExecuteAction(0, Surrender))

	hand := e.Hands()[0]
	assert.True(t, hand.Surrendered)
	assert.True(t, hand.Finished)
	assert.Equal(t, 92, e.Bankroll(), "half the wager rounded down")
}

func TestExecuteActionRejections(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Ten, deck.Seven}},
		10,
	))

	var invalid InvalidActionError
	require.ErrorAs(t, e.ExecuteAction(5, Hit), &invalid)
	require.ErrorAs(t, e.ExecuteAction(0, Action("teleport")), &invalid)

	require.NoError(t, e.ExecuteAction(0, Stand))
	require.ErrorAs(t, e.ExecuteAction(0, Hit), &invalid, "finished hands reject actions")
}

func TestDealerHitsSoftSeventeen(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{ShuffleThreshold: 1})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ace, deck.Six},
		[][]deck.Rank{{deck.Ten, deck.Seven}},
		10,
	))
	rigShoe(e, deck.Ten, deck.Ten)

	require.NoError(t, e.DealerPlay())

	assert.Equal(t, 3, e.Dealer().CardCount(), "soft 17 must hit")
	assert.Equal(t, 17, e.Dealer().Value())
}

func TestDealerStandsHardSeventeen(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{ShuffleThreshold: 1})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Seven},
		[][]deck.Rank{{deck.Ten, deck.Seven}},
		10,
	))
	rigShoe(e, deck.Ten, deck.Ten)

	require.NoError(t, e.DealerPlay())
	assert.Equal(t, 2, e.Dealer().CardCount())
}

func resolveScripted(t *testing.T, e *Engine, dealer []deck.Rank, player []deck.Rank, bet int) HandResult {
	t.Helper()
	require.NoError(t, e.StartScriptedRound(dealer, [][]deck.Rank{player}, bet))
	require.NoError(t, e.ExecuteAction(0, Stand))
	results, err := e.ResolveRound()
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func TestResolvePushOnDoubleNatural(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100})
	res := resolveScripted(t, e,
		[]deck.Rank{deck.Ace, deck.King},
		[]deck.Rank{deck.Ace, deck.Jack}, 10)

	assert.Equal(t, OutcomePush, res.Outcome)
	assert.Equal(t, 10, res.Payout)
	assert.Equal(t, 100, e.Bankroll())
	assert.Equal(t, 1, e.Stats().HandsPushed)
	assert.Zero(t, e.Stats().Blackjacks)
}

func TestResolveBlackjackWin(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100})
	res := resolveScripted(t, e,
		[]deck.Rank{deck.King, deck.Nine},
		[]deck.Rank{deck.Ace, deck.Jack}, 10)

	assert.Equal(t, OutcomeBlackjack, res.Outcome)
	assert.Equal(t, 25, res.Payout, "wager plus floor(1.5x)")
	assert.Equal(t, 115, e.Bankroll())
	assert.Equal(t, 1, e.Stats().Blackjacks)
	assert.Equal(t, 1, e.Stats().HandsWon)
}

func TestResolvePlayerBust(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.King, deck.King, deck.Five}},
		10,
	))
	e.Hands()[0].Finished = true

	results, err := e.ResolveRound()
	require.NoError(t, err)
	assert.Equal(t, OutcomeBust, results[0].Outcome)
	assert.Zero(t, results[0].Payout)
	assert.Equal(t, 90, e.Bankroll())
	assert.Equal(t, 1, e.Stats().HandsLost)
}

func TestResolveDealerBust(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100, ShuffleThreshold: 1})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Six},
		[][]deck.Rank{{deck.Ten, deck.Seven}},
		10,
	))
	rigShoe(e, deck.King, deck.King)
	require.NoError(t, e.ExecuteAction(0, Stand))

	results, err := e.ResolveRound()
	require.NoError(t, err)
	assert.Equal(t, OutcomeDealerBust, results[0].Outcome)
	assert.Equal(t, 20, results[0].Payout)
	assert.Equal(t, 110, e.Bankroll())
}

func TestResolveStandoffLoss(t *testing.T) {
	t.Parallel()
	// The reference scenario: $1000 bankroll, $10 bet, player 17 stands
	// into dealer 20.
	e := newTestEngine(t, Config{StartingBankroll: 1000, MinBet: 10, MaxBet: 500, NumDecks: 6})
	res := resolveScripted(t, e,
		[]deck.Rank{deck.Ace, deck.Nine},
		[]deck.Rank{deck.Ten, deck.Seven}, 10)

	assert.Equal(t, OutcomeLose, res.Outcome)
	assert.Zero(t, res.Payout)
	assert.Equal(t, 990, e.Bankroll())
	assert.Equal(t, 1, e.Stats().HandsLost)
	assert.Equal(t, -10, e.Stats().SessionProfit)
}

func TestResolveSurrenderedHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ten, deck.Nine},
		[][]deck.Rank{{deck.Ten, deck.Five}},
		10,
	))
	require.NoError(t, e.ExecuteAction(0, Surrender))

	results, err := e.ResolveRound()
	require.NoError(t, err)
	assert.Equal(t, OutcomeSurrender, results[0].Outcome)
	assert.Zero(t, results[0].Payout, "half wager was settled at surrender time")
	assert.Equal(t, 95, e.Bankroll())
}

func TestResolvePublishesRoundResolved(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100})

	var got []HandResult
	e.Extension().Bus.Subscribe(EventRoundResolved, func(ev Event) {
		got = ev.(*RoundResolvedEvent).Results
	})

	res := resolveScripted(t, e,
		[]deck.Rank{deck.Ten, deck.Nine},
		[]deck.Rank{deck.Ten, deck.Seven}, 10)

	require.Len(t, got, 1)
	assert.Equal(t, res, got[0])
	assert.True(t, e.Snapshot().RoundComplete)
}

func TestResolveUpdatesPeakBankrollAndProfit(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100})
	resolveScripted(t, e,
		[]deck.Rank{deck.Ten, deck.Seven},
		[]deck.Rank{deck.Ten, deck.Nine}, 20)

	assert.Equal(t, 120, e.Bankroll())
	assert.Equal(t, 120, e.Stats().MaxBankroll)
	assert.Equal(t, 20, e.Stats().SessionProfit)
}

func TestCanTakeInsurance(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Nine, deck.Ace},
		[][]deck.Rank{{deck.Ten, deck.Seven}},
		10,
	))
	assert.True(t, e.CanTakeInsurance(), "visible card is the second dealt")

	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Ace, deck.Nine},
		[][]deck.Rank{{deck.Ten, deck.Seven}},
		10,
	))
	assert.False(t, e.CanTakeInsurance())
}

func TestSnapshotShape(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Config{StartingBankroll: 100})
	require.NoError(t, e.StartScriptedRound(
		[]deck.Rank{deck.Nine, deck.Ace},
		[][]deck.Rank{{deck.Five, deck.Five}},
		10,
	))

	snap := e.Snapshot()
	assert.Equal(t, deck.Ace, snap.DealerUpcard)
	assert.Zero(t, snap.DealerValue, "dealer total hidden until round complete")
	assert.Equal(t, 90, snap.Bankroll)
	require.Len(t, snap.PlayerHands, 1)
	assert.Equal(t, 10, snap.PlayerHands[0].Value)
	assert.Contains(t, snap.PlayerHands[0].LegalActions, Split)
	assert.False(t, snap.RoundComplete)

	_, err := e.ResolveRound()
	require.NoError(t, err)
	assert.NotZero(t, e.Snapshot().DealerValue)
}

func TestEmptyShoeIsFatal(t *testing.T) {
	t.Parallel()
	// A negative threshold disables the automatic rebuild so the empty
	// shoe is actually reachable.
	e := newTestEngine(t, Config{ShuffleThreshold: -1})
	e.StackShoe()

	_, err := e.DrawCard()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyShoe))
}
