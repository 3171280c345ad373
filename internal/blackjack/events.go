package blackjack

import (
	"time"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
)

// EventType names a signal published by the engine.
type EventType string

// Signals the engine publishes at its fixed interception points.
const (
	EventRoundStarted  EventType = "round_started"
	EventCardDealt     EventType = "card_dealt"
	EventDeckCreated   EventType = "deck_created"
	EventDeckShuffled  EventType = "deck_shuffled"
	EventRoundResolved EventType = "round_resolved"
)

// String returns the signal name.
func (et EventType) String() string {
	return string(et)
}

// Event is a signal payload published on the bus. Events are stamped with the
// bus clock at publish time.
type Event interface {
	Type() EventType
	Timestamp() time.Time
	stamp(time.Time)
}

// occurrence carries the publish timestamp shared by all event types.
type occurrence struct {
	at time.Time
}

func (o *occurrence) Timestamp() time.Time { return o.at }
func (o *occurrence) stamp(t time.Time)    { o.at = t }

// RoundStartedEvent is published after a bet is accepted and the initial deal
// completes.
type RoundStartedEvent struct {
	occurrence
	Bet    int
	Engine *Engine
}

func (e *RoundStartedEvent) Type() EventType { return EventRoundStarted }

// CardDealtEvent is published for every card drawn from the shoe, including
// dealer draws and reshuffle-triggered draws.
type CardDealtEvent struct {
	occurrence
	Card   deck.Rank
	Engine *Engine
}

func (e *CardDealtEvent) Type() EventType { return EventCardDealt }

// DeckCreatedEvent is published whenever a fresh shoe is composed, carrying
// its full shuffled contents.
type DeckCreatedEvent struct {
	occurrence
	Shoe []deck.Rank
}

func (e *DeckCreatedEvent) Type() EventType { return EventDeckCreated }

// DeckShuffledEvent is published when the shoe is rebuilt mid-session and the
// running count resets.
type DeckShuffledEvent struct {
	occurrence
	Shoe   []deck.Rank
	Engine *Engine
}

func (e *DeckShuffledEvent) Type() EventType { return EventDeckShuffled }

// RoundResolvedEvent is published once per round with the settled per-hand
// results.
type RoundResolvedEvent struct {
	occurrence
	Results []HandResult
	Engine  *Engine
}

func (e *RoundResolvedEvent) Type() EventType { return EventRoundResolved }

// Handler receives published events for one signal.
type Handler func(Event)

// Subscription identifies one registered handler so it can be removed.
type Subscription struct {
	signal EventType
	id     int
}

type busEntry struct {
	id int
	fn Handler
}

// EventBus is a synchronous named-signal bus. Handlers run in subscription
// order on the publisher's goroutine. A handler failure (panic) propagates to
// the publisher; there is no isolation.
type EventBus struct {
	clock  quartz.Clock
	nextID int
	signal map[EventType][]busEntry
}

// NewEventBus creates a bus stamping events with the real clock.
func NewEventBus() *EventBus {
	return NewEventBusWithClock(quartz.NewReal())
}

// NewEventBusWithClock creates a bus with an injected clock for tests.
func NewEventBusWithClock(clock quartz.Clock) *EventBus {
	return &EventBus{
		clock:  clock,
		signal: make(map[EventType][]busEntry),
	}
}

// Subscribe registers a handler for one signal and returns its subscription
// handle.
func (b *EventBus) Subscribe(signal EventType, fn Handler) *Subscription {
	b.nextID++
	b.signal[signal] = append(b.signal[signal], busEntry{id: b.nextID, fn: fn})
	return &Subscription{signal: signal, id: b.nextID}
}

// Unsubscribe removes a previously registered handler. Unknown subscriptions
// are ignored.
func (b *EventBus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	entries := b.signal[sub.signal]
	for i, e := range entries {
		if e.id == sub.id {
			b.signal[sub.signal] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Publish stamps the event and delivers it to the signal's handlers in
// subscription order.
func (b *EventBus) Publish(ev Event) {
	ev.stamp(b.clock.Now())
	for _, e := range b.signal[ev.Type()] {
		e.fn(ev)
	}
}

// Context is the process-wide extension surface handed to the engine and to
// rule modules: one bus, one registry. It is created at startup and cleared
// explicitly on module unload, never implicitly mid-round.
type Context struct {
	Bus      *EventBus
	Registry *Registry
}

// NewContext creates a fresh extension context.
func NewContext() *Context {
	return &Context{
		Bus:      NewEventBus(),
		Registry: NewRegistry(),
	}
}

// NewContextWithClock creates a context whose bus stamps events from the
// given clock.
func NewContextWithClock(clock quartz.Clock) *Context {
	return &Context{
		Bus:      NewEventBusWithClock(clock),
		Registry: NewRegistry(),
	}
}
