package blackjack

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
)

// Config holds the immutable per-session table settings.
type Config struct {
	NumDecks         int
	StartingBankroll int
	MinBet           int
	MaxBet           int
	BlackjackPayout  float64
	ShuffleThreshold int // rebuild the shoe before drawing below this many cards
}

// DefaultConfig returns the standard six-deck table.
func DefaultConfig() Config {
	return Config{
		NumDecks:         6,
		StartingBankroll: 500,
		MinBet:           5,
		MaxBet:           500,
		BlackjackPayout:  1.5,
		ShuffleThreshold: 15,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NumDecks == 0 {
		c.NumDecks = d.NumDecks
	}
	if c.StartingBankroll == 0 {
		c.StartingBankroll = d.StartingBankroll
	}
	if c.MinBet == 0 {
		c.MinBet = d.MinBet
	}
	if c.MaxBet == 0 {
		c.MaxBet = d.MaxBet
	}
	if c.BlackjackPayout == 0 {
		c.BlackjackPayout = d.BlackjackPayout
	}
	if c.ShuffleThreshold == 0 {
		c.ShuffleThreshold = d.ShuffleThreshold
	}
	return c
}

// Engine runs betting rounds against the dealer: shoe management with Hi-Lo
// counting, action execution, dealer play and payout resolution. Every
// mutating operation routes through the extension context's bus and registry,
// so rule modules can observe and extend play without the engine knowing
// about any specific module.
type Engine struct {
	cfg    Config
	ext    *Context
	rules  *Rules
	rng    *rand.Rand
	logger *log.Logger

	shoe         *deck.Shoe
	runningCount int
	bankroll     int

	dealer        *Hand
	hands         []*Hand
	history       []deck.Rank // cards drawn this round
	roundComplete bool

	stats Stats
}

// NewEngine creates an engine with the given table config and extension
// context. Zero config fields fall back to defaults. The RNG drives shoe
// shuffles; pass a seeded one for deterministic play.
func NewEngine(cfg Config, ext *Context, rng *rand.Rand, logger *log.Logger) *Engine {
	if ext == nil {
		ext = NewContext()
	}
	if rng == nil {
		rng = deck.NewRNG(time.Now().UnixNano())
	}
	if logger == nil {
		logger = log.Default()
	}
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:      cfg,
		ext:      ext,
		rules:    NewRules(ext.Registry),
		rng:      rng,
		logger:   logger,
		bankroll: cfg.StartingBankroll,
		dealer:   &Hand{},
	}
	e.dealer.rules = e.rules
	e.stats.MaxBankroll = e.bankroll
	e.shoe = e.buildShoe()

	logger.Info("engine initialized", "decks", cfg.NumDecks, "bankroll", e.bankroll)
	return e
}

// buildShoe composes a fresh shoe from the rule table (built-in plus
// registered ranks) and publishes deck_created with its contents.
func (e *Engine) buildShoe() *deck.Shoe {
	var ranks []deck.Rank
	for _, r := range e.rules.DeckRanks() {
		for i := 0; i < deck.CopiesPerDeck*e.cfg.NumDecks; i++ {
			ranks = append(ranks, r)
		}
	}
	s := deck.New(ranks, e.rng)
	e.ext.Bus.Publish(&DeckCreatedEvent{Shoe: s.Ranks()})
	return s
}

// reshuffle rebuilds the shoe at full size, resets the running count and
// publishes deck_shuffled.
func (e *Engine) reshuffle() {
	e.shoe = e.buildShoe()
	e.runningCount = 0
	e.ext.Bus.Publish(&DeckShuffledEvent{Shoe: e.shoe.Ranks(), Engine: e})
	e.logger.Info("shoe reshuffled, running count reset")
}

// DrawCard pops the front card, keeping the running count, round history and
// card_dealt subscribers in step. The shoe is rebuilt first if it has dropped
// below the shuffle threshold.
func (e *Engine) DrawCard() (deck.Rank, error) {
	if e.shoe.Len() < e.cfg.ShuffleThreshold {
		e.reshuffle()
	}
	card, ok := e.shoe.Draw()
	if !ok {
		return "", ErrEmptyShoe
	}
	e.recordDraw(card)
	return card, nil
}

// DrawRank removes a specific rank from anywhere in the shoe. Used by
// scripted tests and rule modules that steer draws. Counting and events
// behave exactly as for DrawCard.
func (e *Engine) DrawRank(rank deck.Rank) (deck.Rank, error) {
	if e.shoe.Len() < e.cfg.ShuffleThreshold {
		e.reshuffle()
	}
	if !e.shoe.Remove(rank) {
		return "", RankNotFoundError{Rank: rank}
	}
	e.recordDraw(rank)
	return rank, nil
}

func (e *Engine) recordDraw(card deck.Rank) {
	e.runningCount += e.rules.Weight(card)
	e.history = append(e.history, card)
	e.ext.Bus.Publish(&CardDealtEvent{Card: card, Engine: e})
	e.logger.Debug("card drawn", "card", card, "runningCount", e.runningCount, "remaining", e.shoe.Len())
}

// TrueCount normalizes the running count by decks remaining, floored at half
// a deck to avoid blow-ups late in the shoe. Rounded to two decimals.
func (e *Engine) TrueCount() float64 {
	decksRemaining := math.Max(float64(e.shoe.Len())/float64(deck.CardsPerDeck), 0.5)
	return math.Round(float64(e.runningCount)/decksRemaining*100) / 100
}

// ValidateBet checks a bet against the table limits and bankroll.
func (e *Engine) ValidateBet(bet int) error {
	switch {
	case bet <= 0:
		return InvalidBetError{Reason: "bet must be positive"}
	case bet < e.cfg.MinBet:
		return InvalidBetError{Reason: fmt.Sprintf("minimum bet is $%d", e.cfg.MinBet)}
	case bet > e.cfg.MaxBet:
		return InvalidBetError{Reason: fmt.Sprintf("maximum bet is $%d", e.cfg.MaxBet)}
	case bet > e.bankroll:
		return InvalidBetError{Reason: "insufficient funds"}
	}
	return nil
}

// StartRound validates the bet, debits it, deals two cards to the dealer and
// two to the player, and publishes round_started.
func (e *Engine) StartRound(bet int) error {
	if err := e.ValidateBet(bet); err != nil {
		return err
	}

	e.bankroll -= bet
	e.stats.TotalWagered += bet
	e.history = nil
	e.roundComplete = false

	e.dealer = NewHand(e.rules, nil, 0)
	for i := 0; i < 2; i++ {
		card, err := e.DrawCard()
		if err != nil {
			return err
		}
		e.dealer.AddCard(card)
	}

	player := NewHand(e.rules, nil, bet)
	for i := 0; i < 2; i++ {
		card, err := e.DrawCard()
		if err != nil {
			return err
		}
		player.AddCard(card)
	}
	e.hands = []*Hand{player}

	e.stats.HandsPlayed++
	e.ext.Bus.Publish(&RoundStartedEvent{Bet: bet, Engine: e})
	e.logger.Info("round started", "bet", bet, "dealerUpcard", e.dealer.cards[1], "player", player.String())
	return nil
}

// StartScriptedRound starts a round with fixed hands instead of drawing from
// the shoe. Test and module support: the shoe and running count are left
// untouched and no round_started is published.
func (e *Engine) StartScriptedRound(dealerCards []deck.Rank, playerHands [][]deck.Rank, bet int) error {
	if err := e.ValidateBet(bet); err != nil {
		return err
	}

	e.bankroll -= bet
	e.stats.TotalWagered += bet
	e.history = nil
	e.roundComplete = false

	e.dealer = NewHand(e.rules, dealerCards, 0)
	e.hands = nil
	for _, cards := range playerHands {
		e.hands = append(e.hands, NewHand(e.rules, cards, bet))
	}

	e.stats.HandsPlayed++
	return nil
}

// StackShoe replaces the shoe contents with the given ranks in draw order.
// Scripted-draw support alongside StartScriptedRound; the running count is
// left untouched and no deck_created is published.
func (e *Engine) StackShoe(ranks ...deck.Rank) {
	e.shoe = deck.NewStacked(ranks)
}

// LegalActions returns the advertised actions for one hand: built-ins in
// fixed order, then registered actions in registration order where their
// predicates pass. Registered names that shadow a built-in are not listed
// twice.
func (e *Engine) LegalActions(handIndex int) []Action {
	if handIndex < 0 || handIndex >= len(e.hands) {
		return nil
	}
	hand := e.hands[handIndex]
	actions := hand.LegalActions(e.bankroll)
	if hand.Finished {
		return actions
	}
	for _, custom := range e.ext.Registry.CustomActions() {
		if containsAction(actions, custom.Name) {
			continue
		}
		if custom.Eligible(e, handIndex) {
			actions = append(actions, custom.Name)
		}
	}
	return actions
}

func containsAction(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

// ExecuteAction applies one action to the hand at handIndex. Registered
// actions take precedence over built-ins of the same name, so modules may
// replace built-in behavior. Unknown or ineligible actions leave all state
// unchanged.
func (e *Engine) ExecuteAction(handIndex int, action Action) error {
	if handIndex < 0 || handIndex >= len(e.hands) {
		return InvalidActionError{Action: action, Reason: "hand index out of range"}
	}
	hand := e.hands[handIndex]
	if hand.Finished {
		return InvalidActionError{Action: action, Reason: "hand already finished"}
	}

	if custom, ok := e.ext.Registry.CustomAction(action); ok {
		if !custom.Eligible(e, handIndex) {
			return InvalidActionError{Action: action, Reason: "not currently eligible"}
		}
		return custom.Handler(e, handIndex)
	}

	switch action {
	case Hit:
		card, err := e.DrawCard()
		if err != nil {
			return err
		}
		hand.AddCard(card)
		// Hitting to exactly 21 does not auto-stand; only busts finish
		// the hand.
		if hand.IsBust() {
			hand.Finished = true
		}

	case Stand:
		hand.Finished = true

	case Double:
		if !hand.CanDouble(e.bankroll) {
			return InvalidActionError{Action: action, Reason: "double not available"}
		}
		e.bankroll -= hand.Bet
		card, err := e.DrawCard()
		if err != nil {
			return err
		}
		hand.AddCard(card)
		hand.Bet *= 2
		hand.Doubled = true
		hand.Finished = true

	case Split:
		if !hand.CanSplit() || e.bankroll < hand.Bet {
			return InvalidActionError{Action: action, Reason: "split not available"}
		}
		e.bankroll -= hand.Bet
		first, err := e.splitHand(hand.cards[0], hand.Bet)
		if err != nil {
			return err
		}
		second, err := e.splitHand(hand.cards[1], hand.Bet)
		if err != nil {
			return err
		}
		replaced := make([]*Hand, 0, len(e.hands)+1)
		replaced = append(replaced, e.hands[:handIndex]...)
		replaced = append(replaced, first, second)
		replaced = append(replaced, e.hands[handIndex+1:]...)
		e.hands = replaced

	case Surrender:
		if !hand.CanSurrender() {
			return InvalidActionError{Action: action, Reason: "surrender not available"}
		}
		hand.Surrendered = true
		hand.Finished = true
		e.bankroll += hand.Bet / 2

	default:
		return InvalidActionError{Action: action, Reason: "unknown action"}
	}

	e.logger.Debug("action executed", "action", action, "hand", handIndex)
	return nil
}

// splitHand builds one of the two replacement hands from a retained card plus
// a fresh draw.
func (e *Engine) splitHand(kept deck.Rank, bet int) (*Hand, error) {
	card, err := e.DrawCard()
	if err != nil {
		return nil, err
	}
	return NewHand(e.rules, []deck.Rank{kept, card}, bet), nil
}

// DealerPlay draws for the dealer until reaching a hard 17 or better. A soft
// 17 hits.
func (e *Engine) DealerPlay() error {
	for {
		v := e.dealer.Value()
		if v < 17 || (v == 17 && e.dealer.HasSoftAce()) {
			card, err := e.DrawCard()
			if err != nil {
				return err
			}
			e.dealer.AddCard(card)
			continue
		}
		return nil
	}
}

// ResolveRound runs dealer play and settles every player hand in order,
// crediting payouts and updating statistics. Publishes round_resolved with
// the full result list and marks the round complete.
func (e *Engine) ResolveRound() ([]HandResult, error) {
	if err := e.DealerPlay(); err != nil {
		return nil, err
	}
	e.roundComplete = true

	dealerValue := e.dealer.Value()
	dealerBlackjack := e.dealer.IsBlackjack()

	results := make([]HandResult, 0, len(e.hands))
	for _, hand := range e.hands {
		res := HandResult{
			Cards: hand.Cards(),
			Bet:   hand.Bet,
		}

		switch {
		case hand.Surrendered:
			// Half the wager was already returned at surrender.
			res.Outcome = OutcomeSurrender

		case hand.IsBlackjack():
			if dealerBlackjack {
				res.Outcome = OutcomePush
				res.Payout = hand.Bet
			} else {
				res.Outcome = OutcomeBlackjack
				res.Payout = hand.Bet + int(e.cfg.BlackjackPayout*float64(hand.Bet))
				e.stats.Blackjacks++
			}

		case hand.IsBust():
			res.Outcome = OutcomeBust

		case dealerValue > 21:
			res.Outcome = OutcomeDealerBust
			res.Payout = hand.Bet * 2

		case hand.Value() > dealerValue:
			res.Outcome = OutcomeWin
			res.Payout = hand.Bet * 2

		case hand.Value() == dealerValue:
			res.Outcome = OutcomePush
			res.Payout = hand.Bet

		default:
			res.Outcome = OutcomeLose
		}

		e.bankroll += res.Payout

		switch {
		case res.Outcome.Won():
			e.stats.HandsWon++
		case res.Outcome.Lost():
			e.stats.HandsLost++
		default:
			// Pushes and surrenders settle without a win or loss.
			e.stats.HandsPushed++
		}

		results = append(results, res)
	}

	if e.bankroll > e.stats.MaxBankroll {
		e.stats.MaxBankroll = e.bankroll
	}
	e.stats.SessionProfit = e.bankroll - e.cfg.StartingBankroll

	e.ext.Bus.Publish(&RoundResolvedEvent{Results: results, Engine: e})
	e.logger.Info("round resolved", "dealerValue", dealerValue, "bankroll", e.bankroll)
	return results, nil
}

// AllHandsFinished reports whether every player hand is done.
func (e *Engine) AllHandsFinished() bool {
	for _, h := range e.hands {
		if !h.Finished {
			return false
		}
	}
	return true
}

// CanTakeInsurance reports whether the dealer's visible card is an ace.
// Insurance is advertised for drivers to offer as a side bet; settlement is
// not implemented.
func (e *Engine) CanTakeInsurance() bool {
	return e.dealer.CardCount() >= 2 && e.rules.Value(e.dealer.cards[1]) == 11
}

// Snapshot returns the full observable state for drivers and prompts.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		DealerHand:       e.dealer.Cards(),
		Bankroll:         e.bankroll,
		RunningCount:     e.runningCount,
		TrueCount:        e.TrueCount(),
		CanTakeInsurance: e.CanTakeInsurance(),
		RoundComplete:    e.roundComplete,
		Stats:            e.stats,
	}
	if e.dealer.CardCount() > 1 {
		snap.DealerUpcard = e.dealer.cards[1]
	}
	if e.roundComplete {
		snap.DealerValue = e.dealer.Value()
	}
	for i, h := range e.hands {
		snap.PlayerHands = append(snap.PlayerHands, HandSnapshot{
			Cards:        h.Cards(),
			Value:        h.Value(),
			Bet:          h.Bet,
			Finished:     h.Finished,
			Blackjack:    h.IsBlackjack(),
			Bust:         h.IsBust(),
			LegalActions: e.LegalActions(i),
		})
	}
	return snap
}

// Bankroll returns the current bankroll.
func (e *Engine) Bankroll() int {
	return e.bankroll
}

// RunningCount returns the raw Hi-Lo running count.
func (e *Engine) RunningCount() int {
	return e.runningCount
}

// ShoeSize returns the number of cards remaining in the shoe.
func (e *Engine) ShoeSize() int {
	return e.shoe.Len()
}

// Stats returns the session counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Config returns the table configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Hands returns the live player hands. Rule-module handlers mutate hands
// through this.
func (e *Engine) Hands() []*Hand {
	return e.hands
}

// Dealer returns the dealer's hand.
func (e *Engine) Dealer() *Hand {
	return e.dealer
}

// History returns the cards drawn since the round started, in draw order.
func (e *Engine) History() []deck.Rank {
	out := make([]deck.Rank, len(e.history))
	copy(out, e.history)
	return out
}

// Extension returns the engine's extension context.
func (e *Engine) Extension() *Context {
	return e.ext
}
