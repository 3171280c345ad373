// Package mods contains the rule-module contract and the bundled modules.
//
// A module extends play exclusively through the extension context: bus
// subscriptions for observing rounds, registry entries for custom cards,
// actions and statistics. The engine never imports this package; modules are
// loaded by the binary that assembles the game.
package mods

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
)

// Mod is a rule module. Register wires the module's cards, actions,
// statistics and event handlers into the extension context.
type Mod interface {
	Name() string
	Register(ctx *blackjack.Context) error
}

// Unregisterer is implemented by modules that need teardown beyond the
// registry wipe, typically removing their bus subscriptions.
type Unregisterer interface {
	Unregister(ctx *blackjack.Context)
}

// Manager loads modules against one extension context and unloads them as a
// group.
type Manager struct {
	ctx    *blackjack.Context
	logger *log.Logger
	loaded []Mod
}

// NewManager creates a manager for the given context.
func NewManager(ctx *blackjack.Context, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{ctx: ctx, logger: logger}
}

// Load registers each module in order. A registration failure stops the load
// and leaves earlier modules active.
func (m *Manager) Load(mods ...Mod) error {
	for _, mod := range mods {
		if err := mod.Register(m.ctx); err != nil {
			return fmt.Errorf("loading mod %q: %w", mod.Name(), err)
		}
		m.loaded = append(m.loaded, mod)
		m.logger.Info("mod loaded", "name", mod.Name())
	}
	return nil
}

// Loaded returns the names of active modules in load order.
func (m *Manager) Loaded() []string {
	names := make([]string, len(m.loaded))
	for i, mod := range m.loaded {
		names[i] = mod.Name()
	}
	return names
}

// UnloadAll unregisters every module and wipes the registry. Event
// subscriptions are removed by the modules themselves via Unregisterer.
func (m *Manager) UnloadAll() {
	for _, mod := range m.loaded {
		if u, ok := mod.(Unregisterer); ok {
			u.Unregister(m.ctx)
		}
		m.logger.Info("mod unloaded", "name", mod.Name())
	}
	m.loaded = nil
	m.ctx.Registry.Clear()
}
