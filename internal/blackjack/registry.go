package blackjack

import "github.com/lox/blackjack/internal/deck"

// Action identifies a player action, built-in or registered by a rule module.
type Action string

// Built-in actions in their fixed advertisement order.
const (
	Hit       Action = "hit"
	Stand     Action = "stand"
	Double    Action = "double"
	Split     Action = "split"
	Surrender Action = "surrender"
)

// String returns the action name.
func (a Action) String() string {
	return string(a)
}

// StatType constrains the values a custom statistic may hold.
type StatType int

const (
	StatInt StatType = iota
	StatFloat
	StatBool
	StatString
)

// String returns the type name.
func (t StatType) String() string {
	switch t {
	case StatInt:
		return "int"
	case StatFloat:
		return "float"
	case StatBool:
		return "bool"
	case StatString:
		return "string"
	default:
		return "unknown"
	}
}

// fits reports whether v is representable by the stat type.
func (t StatType) fits(v any) bool {
	switch t {
	case StatInt:
		_, ok := v.(int)
		return ok
	case StatFloat:
		_, ok := v.(float64)
		return ok
	case StatBool:
		_, ok := v.(bool)
		return ok
	case StatString:
		_, ok := v.(string)
		return ok
	default:
		return false
	}
}

// ActionHandler executes a registered action against the engine. It runs in
// place of the built-in dispatch and may draw cards, mutate hands, or settle
// funds through the engine's exported operations.
type ActionHandler func(e *Engine, handIndex int) error

// ActionPredicate reports whether a registered action is currently legal for
// the given hand.
type ActionPredicate func(e *Engine, handIndex int) bool

// CustomAction pairs a handler with its eligibility predicate.
type CustomAction struct {
	Name     Action
	Handler  ActionHandler
	Eligible ActionPredicate
}

type customCard struct {
	value  int
	weight int
}

type customStat struct {
	typ   StatType
	value any
}

// Registry is the mutable store of module-contributed ranks, actions and
// statistics. The engine consults it wherever built-in rules would otherwise
// be hardcoded, so registered entries behave exactly like built-ins.
//
// The registry assumes single-threaded access, matching the engine's
// concurrency model. Callers in concurrent environments must serialize.
type Registry struct {
	cards       map[deck.Rank]customCard
	cardOrder   []deck.Rank
	actions     map[Action]CustomAction
	actionOrder []Action
	stats       map[string]*customStat
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.cards = make(map[deck.Rank]customCard)
	r.cardOrder = nil
	r.actions = make(map[Action]CustomAction)
	r.actionOrder = nil
	r.stats = make(map[string]*customStat)
}

// RegisterCard adds a rank with its blackjack value and Hi-Lo count weight.
// The rank joins the valuation and count tables immediately and appears in
// every shoe built afterwards.
func (r *Registry) RegisterCard(rank deck.Rank, value, weight int) {
	if _, exists := r.cards[rank]; !exists {
		r.cardOrder = append(r.cardOrder, rank)
	}
	r.cards[rank] = customCard{value: value, weight: weight}
}

// RegisterAction adds a named action. A nil predicate means always eligible.
// Registering an existing name replaces its handler but keeps its position in
// the advertisement order.
func (r *Registry) RegisterAction(name Action, handler ActionHandler, eligible ActionPredicate) {
	if eligible == nil {
		eligible = func(*Engine, int) bool { return true }
	}
	if _, exists := r.actions[name]; !exists {
		r.actionOrder = append(r.actionOrder, name)
	}
	r.actions[name] = CustomAction{Name: name, Handler: handler, Eligible: eligible}
}

// RegisterStat declares a named statistic with a base value. The base value
// must fit the declared type.
func (r *Registry) RegisterStat(name string, base any, typ StatType) error {
	if !typ.fits(base) {
		return InvalidStatValueError{Name: name, Type: typ, Value: base}
	}
	r.stats[name] = &customStat{typ: typ, value: base}
	return nil
}

// Stat returns the current value of a registered statistic.
func (r *Registry) Stat(name string) (any, bool) {
	s, ok := r.stats[name]
	if !ok {
		return nil, false
	}
	return s.value, true
}

// SetStat updates a registered statistic. Values that do not fit the declared
// type leave the registry unchanged and return InvalidStatValueError.
func (r *Registry) SetStat(name string, value any) error {
	s, ok := r.stats[name]
	if !ok {
		return InvalidStatValueError{Name: name, Value: value}
	}
	if !s.typ.fits(value) {
		return InvalidStatValueError{Name: name, Type: s.typ, Value: value}
	}
	s.value = value
	return nil
}

// CustomAction looks up a registered action by name.
func (r *Registry) CustomAction(name Action) (CustomAction, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// CustomActions returns all registered actions in registration order.
func (r *Registry) CustomActions() []CustomAction {
	out := make([]CustomAction, 0, len(r.actionOrder))
	for _, name := range r.actionOrder {
		out = append(out, r.actions[name])
	}
	return out
}

// CardValue returns the blackjack value of a registered rank.
func (r *Registry) CardValue(rank deck.Rank) (int, bool) {
	c, ok := r.cards[rank]
	return c.value, ok
}

// CardWeight returns the Hi-Lo weight of a registered rank.
func (r *Registry) CardWeight(rank deck.Rank) (int, bool) {
	c, ok := r.cards[rank]
	return c.weight, ok
}

// CustomRanks returns registered ranks in registration order.
func (r *Registry) CustomRanks() []deck.Rank {
	out := make([]deck.Rank, len(r.cardOrder))
	copy(out, r.cardOrder)
	return out
}

// Clear wipes all registered cards, actions and statistics. Called on module
// unload; never implicitly mid-round.
func (r *Registry) Clear() {
	r.reset()
}
