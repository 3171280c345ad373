package blackjack

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Hand is one wagered set of cards. The dealer's cards use the same type with
// a zero bet.
type Hand struct {
	Bet         int
	Finished    bool
	Doubled     bool
	Surrendered bool

	cards []deck.Rank
	rules *Rules

	// value memoization, invalidated on any card mutation
	cachedValue int
	cacheValid  bool
}

// NewHand creates a hand holding the given cards.
func NewHand(rules *Rules, cards []deck.Rank, bet int) *Hand {
	h := &Hand{Bet: bet, rules: rules}
	h.cards = append(h.cards, cards...)
	return h
}

// Cards returns a copy of the hand's cards in deal order.
func (h *Hand) Cards() []deck.Rank {
	out := make([]deck.Rank, len(h.cards))
	copy(out, h.cards)
	return out
}

// CardCount returns the number of cards held.
func (h *Hand) CardCount() int {
	return len(h.cards)
}

// AddCard appends a card to the hand.
func (h *Hand) AddCard(r deck.Rank) {
	h.cards = append(h.cards, r)
	h.cacheValid = false
}

// PopCard removes and returns the most recently added card. Used by rule
// modules that rewrite draws.
func (h *Hand) PopCard() (deck.Rank, bool) {
	if len(h.cards) == 0 {
		return "", false
	}
	r := h.cards[len(h.cards)-1]
	h.cards = h.cards[:len(h.cards)-1]
	h.cacheValid = false
	return r, true
}

// Value returns the best total: aces count 11, then drop to 1 one at a time
// while the total busts.
func (h *Hand) Value() int {
	if h.cacheValid {
		return h.cachedValue
	}
	val := 0
	aces := 0
	for _, c := range h.cards {
		val += h.rules.Value(c)
		if c.IsAce() {
			aces++
		}
	}
	for val > 21 && aces > 0 {
		val -= 10
		aces--
	}
	h.cachedValue = val
	h.cacheValid = true
	return val
}

// HasSoftAce reports whether an ace is still counted as 11.
func (h *Hand) HasSoftAce() bool {
	total := 0
	aces := 0
	for _, c := range h.cards {
		total += h.rules.Value(c)
		if c.IsAce() {
			aces++
		}
	}
	if aces == 0 {
		return false
	}
	return total-(aces-1)*10 <= 21
}

// IsBlackjack reports a natural: exactly two cards totalling 21.
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.Value() == 21
}

// IsBust reports a total over 21.
func (h *Hand) IsBust() bool {
	return h.Value() > 21
}

// CanSplit reports two cards of equal blackjack value.
func (h *Hand) CanSplit() bool {
	return len(h.cards) == 2 && h.rules.Value(h.cards[0]) == h.rules.Value(h.cards[1])
}

// CanDouble reports a two-card hand the bankroll can cover doubling.
func (h *Hand) CanDouble(bankroll int) bool {
	return len(h.cards) == 2 && bankroll >= h.Bet
}

// CanSurrender reports a two-card hand that is not a natural.
func (h *Hand) CanSurrender() bool {
	return len(h.cards) == 2 && !h.IsBlackjack()
}

// LegalActions returns the built-in actions currently legal for this hand in
// fixed order. The engine appends registry actions after these.
func (h *Hand) LegalActions(bankroll int) []Action {
	if h.Finished {
		return nil
	}
	actions := []Action{Hit, Stand}
	if len(h.cards) == 2 {
		if h.CanDouble(bankroll) {
			actions = append(actions, Double)
		}
		if h.CanSplit() && bankroll >= h.Bet {
			actions = append(actions, Split)
		}
		if h.CanSurrender() {
			actions = append(actions, Surrender)
		}
	}
	return actions
}

// String renders the hand for logs.
func (h *Hand) String() string {
	strs := make([]string, len(h.cards))
	for i, c := range h.cards {
		strs[i] = c.String()
	}
	return fmt.Sprintf("[%s] (value %d, bet $%d)", strings.Join(strs, " "), h.Value(), h.Bet)
}
