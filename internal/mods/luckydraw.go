package mods

import (
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/deck"
)

// BonusRank is the negative-value card LuckyDraw adds to the shoe.
const BonusRank deck.Rank = "-2"

// ActionLuckyDraw names the conjuring action shared by LuckyDraw and Pity.
const ActionLuckyDraw blackjack.Action = "lucky_draw"

// LuckyDraw is the demonstration module: it logs the round lifecycle, adds a
// rank worth -2 that counts +1, and offers a lucky_draw action that conjures
// an ace into any two-card hand.
type LuckyDraw struct {
	logger *log.Logger
	subs   []*blackjack.Subscription
}

// NewLuckyDraw creates the module.
func NewLuckyDraw(logger *log.Logger) *LuckyDraw {
	if logger == nil {
		logger = log.Default()
	}
	return &LuckyDraw{logger: logger}
}

func (m *LuckyDraw) Name() string { return "lucky-draw" }

// Register subscribes to the round lifecycle and installs the bonus rank and
// the conjuring action.
func (m *LuckyDraw) Register(ctx *blackjack.Context) error {
	m.subs = append(m.subs,
		ctx.Bus.Subscribe(blackjack.EventRoundStarted, func(ev blackjack.Event) {
			m.logger.Info("lucky-draw: round begun", "bet", ev.(*blackjack.RoundStartedEvent).Bet)
		}),
		ctx.Bus.Subscribe(blackjack.EventCardDealt, func(ev blackjack.Event) {
			m.logger.Debug("lucky-draw: card dealt", "card", ev.(*blackjack.CardDealtEvent).Card)
		}),
		ctx.Bus.Subscribe(blackjack.EventDeckShuffled, func(blackjack.Event) {
			m.logger.Info("lucky-draw: shoe reshuffled")
		}),
	)

	ctx.Registry.RegisterCard(BonusRank, -2, 1)
	ctx.Registry.RegisterAction(ActionLuckyDraw, m.drawAce, m.canDrawAce)
	return nil
}

// Unregister removes the bus subscriptions.
func (m *LuckyDraw) Unregister(ctx *blackjack.Context) {
	for _, s := range m.subs {
		ctx.Bus.Unsubscribe(s)
	}
	m.subs = nil
}

// drawAce conjures an ace out of thin air rather than the shoe, so the count
// and shoe composition are untouched.
func (m *LuckyDraw) drawAce(e *blackjack.Engine, handIndex int) error {
	e.Hands()[handIndex].AddCard(deck.Ace)
	m.logger.Info("lucky-draw: conjured an ace")
	return nil
}

func (m *LuckyDraw) canDrawAce(e *blackjack.Engine, handIndex int) bool {
	return e.Hands()[handIndex].CardCount() == 2
}
