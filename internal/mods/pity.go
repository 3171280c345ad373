package mods

import (
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/deck"
)

// PityStat names the balance Pity keeps in the registry.
const PityStat = "pity"

// pityUnlock is the balance required before lucky_draw becomes available.
const pityUnlock = 10

// Pity tilts the odds back toward a losing player. Busts and losses build a
// pity balance, wins drain it and a natural resets it. A high enough balance
// rescues busting hits by swapping the drawn card for the one that lands on
// 21, and unlocks a lucky_draw that pulls exactly the card the hand needs.
type Pity struct {
	logger *log.Logger
	reg    *blackjack.Registry
	sub    *blackjack.Subscription
}

// NewPity creates the module.
func NewPity(logger *log.Logger) *Pity {
	if logger == nil {
		logger = log.Default()
	}
	return &Pity{logger: logger}
}

func (m *Pity) Name() string { return "pity" }

// Register declares the pity balance, watches round results and replaces the
// built-in hit with the rescuing variant.
func (m *Pity) Register(ctx *blackjack.Context) error {
	m.reg = ctx.Registry
	m.sub = ctx.Bus.Subscribe(blackjack.EventRoundResolved, m.onRoundResolved)

	if err := ctx.Registry.RegisterStat(PityStat, 0, blackjack.StatInt); err != nil {
		return err
	}
	ctx.Registry.RegisterAction(blackjack.Hit, m.hit, nil)
	ctx.Registry.RegisterAction(ActionLuckyDraw, m.luckyDraw, m.canLuckyDraw)
	return nil
}

// Unregister removes the bus subscription.
func (m *Pity) Unregister(ctx *blackjack.Context) {
	ctx.Bus.Unsubscribe(m.sub)
	m.sub = nil
}

func (m *Pity) balance() int {
	v, ok := m.reg.Stat(PityStat)
	if !ok {
		return 0
	}
	return v.(int)
}

func (m *Pity) setBalance(n int) {
	if err := m.reg.SetStat(PityStat, n); err != nil {
		m.logger.Error("pity: balance update failed", "err", err)
	}
}

// onRoundResolved adjusts the balance from the first hand's outcome.
func (m *Pity) onRoundResolved(ev blackjack.Event) {
	results := ev.(*blackjack.RoundResolvedEvent).Results
	if len(results) == 0 {
		return
	}
	switch results[0].Outcome {
	case blackjack.OutcomeBust:
		m.setBalance(m.balance() + 1)
	case blackjack.OutcomeLose:
		m.setBalance(m.balance() + 2)
	case blackjack.OutcomeWin:
		m.setBalance(m.balance() - 1)
	case blackjack.OutcomeBlackjack:
		m.setBalance(0)
	}
}

// hit replaces the built-in hit. A bust whose overshoot is below the pity
// balance gets the drawn card swapped for whichever rank lands the hand on
// exactly 21.
func (m *Pity) hit(e *blackjack.Engine, handIndex int) error {
	hand := e.Hands()[handIndex]
	card, err := e.DrawCard()
	if err != nil {
		return err
	}
	hand.AddCard(card)
	if !hand.IsBust() {
		return nil
	}

	overshoot := hand.Value() - 21
	if m.balance() <= overshoot {
		hand.Finished = true
		return nil
	}

	hand.PopCard()
	rescue, err := e.DrawRank(rankForValue(21 - hand.Value()))
	if err != nil {
		// The rescue rank is exhausted; the bust stands.
		hand.AddCard(card)
		hand.Finished = true
		return nil
	}
	hand.AddCard(rescue)
	m.logger.Info("pity: rescued a bust", "card", rescue, "balance", m.balance())
	return nil
}

// luckyDraw pulls the exact card that completes 21 out of the shoe.
func (m *Pity) luckyDraw(e *blackjack.Engine, handIndex int) error {
	hand := e.Hands()[handIndex]
	needed := 21 - hand.Value()
	if needed < 1 {
		return nil
	}

	card, err := e.DrawRank(rankForValue(needed))
	if err != nil {
		m.logger.Warn("pity: lucky draw found no card", "needed", needed)
		return nil
	}
	hand.AddCard(card)
	m.logger.Info("pity: lucky draw", "card", card)
	return nil
}

func (m *Pity) canLuckyDraw(e *blackjack.Engine, handIndex int) bool {
	return e.Hands()[handIndex].CardCount() == 2 && m.balance() >= pityUnlock
}

// rankForValue maps a needed total to a drawable rank. Values above ten fall
// back to the ace, which flexes down as required.
func rankForValue(v int) deck.Rank {
	if v >= 2 && v <= 10 {
		return deck.Rank(strconv.Itoa(v))
	}
	return deck.Ace
}
