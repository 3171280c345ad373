package deck

import "math/rand/v2"

// Shoe is an ordered stack of card ranks consumed from the front. It is a dumb
// container: reshuffle policy, counting and events belong to the game engine.
type Shoe struct {
	ranks []Rank
	rng   *rand.Rand
}

// New builds a shoe from the given rank composition and shuffles it. The
// composition is typically CopiesPerDeck copies of each playable rank times the
// number of decks. The RNG is required so shuffles are reproducible in tests.
func New(ranks []Rank, rng *rand.Rand) *Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	s := &Shoe{
		ranks: make([]Rank, len(ranks)),
		rng:   rng,
	}
	copy(s.ranks, ranks)
	s.shuffle()
	return s
}

// NewStacked builds a shoe holding the given ranks in draw order, without
// shuffling. Used by scripted tests and rule modules that rig draws.
func NewStacked(ranks []Rank) *Shoe {
	s := &Shoe{ranks: make([]Rank, len(ranks))}
	copy(s.ranks, ranks)
	return s
}

// shuffle randomizes the order of the remaining cards.
func (s *Shoe) shuffle() {
	s.rng.Shuffle(len(s.ranks), func(i, j int) {
		s.ranks[i], s.ranks[j] = s.ranks[j], s.ranks[i]
	})
}

// Draw removes and returns the front card. Returns false if the shoe is empty.
func (s *Shoe) Draw() (Rank, bool) {
	if len(s.ranks) == 0 {
		return "", false
	}
	r := s.ranks[0]
	s.ranks = s.ranks[1:]
	return r, true
}

// Remove takes the first matching rank out of the shoe, wherever it sits.
// Returns false if the rank is not present. Used for scripted draws.
func (s *Shoe) Remove(rank Rank) bool {
	for i, r := range s.ranks {
		if r == rank {
			s.ranks = append(s.ranks[:i], s.ranks[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of cards remaining.
func (s *Shoe) Len() int {
	return len(s.ranks)
}

// Ranks returns a copy of the remaining cards in draw order.
func (s *Shoe) Ranks() []Rank {
	out := make([]Rank, len(s.ranks))
	copy(out, s.ranks)
	return out
}
