package blackjack

import "github.com/lox/blackjack/internal/deck"

// Outcome classifies one settled hand.
type Outcome string

const (
	OutcomeWin        Outcome = "win"
	OutcomeLose       Outcome = "lose"
	OutcomePush       Outcome = "push"
	OutcomeBlackjack  Outcome = "blackjack"
	OutcomeBust       Outcome = "bust"
	OutcomeDealerBust Outcome = "dealer_bust"
	OutcomeSurrender  Outcome = "surrender"
)

// String returns the outcome name.
func (o Outcome) String() string {
	return string(o)
}

// Won reports whether the outcome pays out as a win.
func (o Outcome) Won() bool {
	return o == OutcomeWin || o == OutcomeBlackjack || o == OutcomeDealerBust
}

// Lost reports whether the outcome forfeits the wager.
func (o Outcome) Lost() bool {
	return o == OutcomeLose || o == OutcomeBust
}

// HandResult is the terminal state of one player hand, read once at
// resolution.
type HandResult struct {
	Cards   []deck.Rank
	Bet     int
	Outcome Outcome
	Payout  int
}

// HandSnapshot is the read-only view of one player hand embedded in every
// prompt.
type HandSnapshot struct {
	Cards        []deck.Rank
	Value        int
	Bet          int
	Finished     bool
	Blackjack    bool
	Bust         bool
	LegalActions []Action
}

// Snapshot is the engine state returned on demand and embedded in prompts.
type Snapshot struct {
	PlayerHands      []HandSnapshot
	DealerHand       []deck.Rank
	DealerUpcard     deck.Rank // second dealt card; "" before the deal
	DealerValue      int       // populated only once the round is complete
	Bankroll         int
	RunningCount     int
	TrueCount        float64
	CanTakeInsurance bool
	RoundComplete    bool
	Stats            Stats
}
