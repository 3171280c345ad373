package blackjack

import "github.com/lox/blackjack/internal/deck"

// Built-in blackjack values.
var baseValues = map[deck.Rank]int{
	deck.Two: 2, deck.Three: 3, deck.Four: 4, deck.Five: 5, deck.Six: 6,
	deck.Seven: 7, deck.Eight: 8, deck.Nine: 9, deck.Ten: 10,
	deck.Jack: 10, deck.Queen: 10, deck.King: 10, deck.Ace: 11,
}

// Built-in Hi-Lo count weights.
var baseWeights = map[deck.Rank]int{
	deck.Two: 1, deck.Three: 1, deck.Four: 1, deck.Five: 1, deck.Six: 1,
	deck.Seven: 0, deck.Eight: 0, deck.Nine: 0,
	deck.Ten: -1, deck.Jack: -1, deck.Queen: -1, deck.King: -1, deck.Ace: -1,
}

// Rules resolves rank valuation and counting, merging the built-in tables
// with registry-contributed ranks. Registered ranks are indistinguishable
// from built-ins everywhere the engine consults them.
type Rules struct {
	registry *Registry
}

// NewRules creates a rule table backed by the given registry.
func NewRules(registry *Registry) *Rules {
	return &Rules{registry: registry}
}

// Value returns the blackjack value of a rank. Registered ranks take
// precedence over built-ins; unknown ranks count as zero.
func (r *Rules) Value(rank deck.Rank) int {
	if v, ok := r.registry.CardValue(rank); ok {
		return v
	}
	return baseValues[rank]
}

// Weight returns the Hi-Lo weight of a rank. Unknown ranks weigh zero.
func (r *Rules) Weight(rank deck.Rank) int {
	if w, ok := r.registry.CardWeight(rank); ok {
		return w
	}
	return baseWeights[rank]
}

// DeckRanks returns the playable rank composition of one suit: base ranks
// followed by registered ranks in registration order. Shoe construction
// consults this, not a fixed list, so registered ranks get dealt.
func (r *Rules) DeckRanks() []deck.Rank {
	ranks := deck.BaseRanks()
	return append(ranks, r.registry.CustomRanks()...)
}
