package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	engine := blackjack.NewEngine(blackjack.Config{ShuffleThreshold: 1}, blackjack.NewContext(), deck.NewRNG(9), logger)
	// All tens so every walk is deterministic: both sides stand on 20.
	engine.StackShoe(deck.Ten, deck.Ten, deck.Ten, deck.Ten, deck.Ten, deck.Ten, deck.Ten, deck.Ten)
	return New(blackjack.NewController(engine), logger)
}

func enter(m *Model, value string) {
	m.input.SetValue(value)
	m.submit()
}

func TestModelStartsAtBetPrompt(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, blackjack.PromptBet, m.prompt.Kind)
	assert.True(t, m.prompt.ExpectsInput())
}

func TestModelPlaysRound(t *testing.T) {
	m := testModel(t)

	enter(m, "10")
	require.Equal(t, blackjack.PromptAction, m.prompt.Kind,
		"round start is informational and drains through")

	enter(m, "stand")
	require.Equal(t, blackjack.PromptContinue, m.prompt.Kind)

	joined := strings.Join(m.gameLog, "\n")
	assert.Contains(t, joined, "PUSH")

	enter(m, "no")
	assert.True(t, m.ctrl.Done())

	// Enter on the terminal prompt quits.
	cmd := m.submit()
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestModelLogsErrors(t *testing.T) {
	m := testModel(t)

	enter(m, "not a bet")
	assert.Equal(t, blackjack.PromptBet, m.prompt.Kind,
		"the error drains back to a fresh bet prompt")

	joined := strings.Join(m.gameLog, "\n")
	assert.Contains(t, joined, "Invalid bet amount")
}

func TestModelViewRendersTable(t *testing.T) {
	m := testModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	enter(m, "10")
	view := m.View()

	assert.Contains(t, view, "Dealer")
	assert.Contains(t, view, "Hand 1")
	assert.Contains(t, view, "[??]", "hole card stays hidden mid-round")
	assert.Contains(t, view, "Bankroll $490")
}

func TestModelViewBeforeSize(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, "Loading...", m.View())
}
