package deck

// Rank represents a blackjack card rank. Suits are irrelevant to blackjack
// valuation and counting, so a card is just its rank. Ranks are open-ended:
// beyond the 13 standard ranks, rule modules may introduce their own.
type Rank string

// Standard ranks.
const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// String returns the rank symbol.
func (r Rank) String() string {
	return string(r)
}

// IsAce returns true if the rank is an Ace.
func (r Rank) IsAce() bool {
	return r == Ace
}

// BaseRanks returns the 13 standard ranks in canonical order.
func BaseRanks() []Rank {
	return []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
}

// CardsPerDeck is the size of one standard deck.
const CardsPerDeck = 52

// CopiesPerDeck is how many of each rank a single deck carries.
const CopiesPerDeck = 4
