package blackjack

import (
	"errors"
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

// ErrEmptyShoe indicates the shoe had no cards left even after a rebuild.
// This is a configuration fault (zero decks, empty composition) and is not
// retried.
var ErrEmptyShoe = errors.New("shoe is empty after rebuild")

// InvalidBetError rejects a bet before a round starts. The controller
// recovers from it by re-prompting.
type InvalidBetError struct {
	Reason string
}

func (e InvalidBetError) Error() string {
	return fmt.Sprintf("invalid bet: %s", e.Reason)
}

// RankNotFoundError indicates a scripted draw asked for a rank the shoe does
// not currently hold.
type RankNotFoundError struct {
	Rank deck.Rank
}

func (e RankNotFoundError) Error() string {
	return fmt.Sprintf("rank %q not found in shoe", e.Rank)
}

// InvalidActionError rejects an action that is unknown, ineligible, or aimed
// at a finished or out-of-range hand. Recovered by re-prompting with the
// legal set.
type InvalidActionError struct {
	Action Action
	Reason string
}

func (e InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q: %s", e.Action, e.Reason)
}

// InvalidStatValueError indicates a custom statistic was set to a value its
// declared type cannot represent. The registry is left unchanged.
type InvalidStatValueError struct {
	Name  string
	Type  StatType
	Value any
}

func (e InvalidStatValueError) Error() string {
	return fmt.Sprintf("stat %q: value %v does not fit type %s", e.Name, e.Value, e.Type)
}
