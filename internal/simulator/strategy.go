package simulator

import (
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/deck"
)

// cardValue mirrors the base valuation table for strategy decisions. Custom
// ranks are unknown to the strategy and count as zero, which degrades toward
// hitting low totals.
var cardValue = map[deck.Rank]int{
	deck.Two: 2, deck.Three: 3, deck.Four: 4, deck.Five: 5, deck.Six: 6,
	deck.Seven: 7, deck.Eight: 8, deck.Nine: 9, deck.Ten: 10,
	deck.Jack: 10, deck.Queen: 10, deck.King: 10, deck.Ace: 11,
}

// isSoft reports whether the cards include an ace still counted as eleven,
// given the hand's best total.
func isSoft(cards []deck.Rank, total int) bool {
	low := 0
	hasAce := false
	for _, c := range cards {
		if c.IsAce() {
			low++
			hasAce = true
		} else {
			low += cardValue[c]
		}
	}
	return hasAce && total == low+10
}

// Decide picks an action for one hand using simplified basic strategy,
// restricted to the advertised options. It always returns a member of
// options.
func Decide(hand blackjack.HandSnapshot, dealerUpcard deck.Rank, options []blackjack.Action) blackjack.Action {
	up := cardValue[dealerUpcard]
	total := hand.Value

	has := func(a blackjack.Action) bool {
		for _, o := range options {
			if o == a {
				return true
			}
		}
		return false
	}
	pick := func(preferred ...blackjack.Action) blackjack.Action {
		for _, a := range preferred {
			if has(a) {
				return a
			}
		}
		if has(blackjack.Stand) {
			return blackjack.Stand
		}
		return options[0]
	}

	// Aces and eights always split; tens and fives never do.
	if has(blackjack.Split) && len(hand.Cards) == 2 {
		first := cardValue[hand.Cards[0]]
		if hand.Cards[0].IsAce() || first == 8 {
			return blackjack.Split
		}
	}

	// Late surrender on the worst matchups.
	if has(blackjack.Surrender) {
		if total == 16 && up >= 9 {
			return blackjack.Surrender
		}
		if total == 15 && up == 10 {
			return blackjack.Surrender
		}
	}

	if isSoft(hand.Cards, total) {
		switch {
		case total <= 17:
			return pick(blackjack.Double, blackjack.Hit)
		case total == 18:
			if up >= 9 {
				return pick(blackjack.Hit)
			}
			return pick(blackjack.Stand)
		default:
			return pick(blackjack.Stand)
		}
	}

	switch {
	case total <= 8:
		return pick(blackjack.Hit)
	case total == 9:
		if up >= 3 && up <= 6 {
			return pick(blackjack.Double, blackjack.Hit)
		}
		return pick(blackjack.Hit)
	case total == 10:
		if up <= 9 {
			return pick(blackjack.Double, blackjack.Hit)
		}
		return pick(blackjack.Hit)
	case total == 11:
		return pick(blackjack.Double, blackjack.Hit)
	case total == 12:
		if up >= 4 && up <= 6 {
			return pick(blackjack.Stand)
		}
		return pick(blackjack.Hit)
	case total <= 16:
		if up >= 2 && up <= 6 {
			return pick(blackjack.Stand)
		}
		return pick(blackjack.Hit)
	default:
		return pick(blackjack.Stand)
	}
}
