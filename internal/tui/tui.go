// Package tui renders an interactive blackjack table with Bubble Tea. It is a
// thin driver over the prompt sequence: every prompt that expects input is
// answered from the text field, informational prompts stream into the game
// log.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/deck"
)

// Model represents the Bubble Tea model for the blackjack game
type Model struct {
	ctrl   *blackjack.Controller
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	// State
	prompt  blackjack.Prompt
	gameLog []string

	// Dimensions
	width  int
	height int

	quitting bool
}

// New creates a model driving the given prompt sequence. The first prompt is
// produced immediately.
func New(ctrl *blackjack.Controller, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter a bet or action (hit, stand, double, split, surrender)"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Prompt = "> "

	m := &Model{
		ctrl:        ctrl,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
	}
	m.prompt = ctrl.Start()
	m.record(m.prompt)
	m.drain()
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			return m, m.submit()
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit answers the current prompt with the text field contents.
func (m *Model) submit() tea.Cmd {
	if m.ctrl.Done() {
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	}

	response := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if m.prompt.ExpectsInput() && response != "" {
		m.appendLog(InfoStyle.Render("> " + response))
	}

	m.prompt = m.ctrl.Next(response)
	m.record(m.prompt)
	m.drain()
	return nil
}

// drain advances through informational prompts until one needs input or the
// game ends.
func (m *Model) drain() {
	for !m.prompt.ExpectsInput() && !m.ctrl.Done() {
		m.prompt = m.ctrl.Next("")
		m.record(m.prompt)
	}
}

// record writes a prompt into the game log.
func (m *Model) record(p blackjack.Prompt) {
	switch p.Kind {
	case blackjack.PromptRoundStart:
		m.appendLog(HandInfoStyle.Render("--- " + p.Message + " ---"))

	case blackjack.PromptActionResult:
		m.appendLog(p.Message)

	case blackjack.PromptError:
		m.appendLog(ErrorStyle.Render(p.Message))

	case blackjack.PromptRoundComplete:
		m.appendLog(HandInfoStyle.Render(fmt.Sprintf("Dealer shows %s (%d)",
			renderCards(p.State.DealerHand, false), p.State.DealerValue)))
		for i, res := range p.Results {
			m.appendLog(renderResult(i, res))
		}

	case blackjack.PromptGameOver:
		m.appendLog(WarningStyle.Render(p.Message))
		m.appendLog(InfoStyle.Render("Press enter to exit"))
	}
}

func (m *Model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.logger.Debug("log", "line", line)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Render(" BLACKJACK ")
	table := m.renderTablePane()
	promptPane := m.renderPromptPane()

	chromeHeight := lipgloss.Height(header) + lipgloss.Height(table) + lipgloss.Height(promptPane) + 2
	logHeight := m.height - chromeHeight
	if logHeight < 3 {
		logHeight = 3
	}
	m.logViewport.Width = m.width - 2
	m.logViewport.Height = logHeight - 2
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.width - 2).
		Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, table, logPane, promptPane)
}

// renderTablePane shows the dealer, the player hands and the running totals.
func (m *Model) renderTablePane() string {
	state := m.prompt.State
	var b strings.Builder

	hideHole := !state.RoundComplete
	dealer := fmt.Sprintf("Dealer  %s", renderCards(state.DealerHand, hideHole))
	if state.RoundComplete && state.DealerValue > 0 {
		dealer += InfoStyle.Render(fmt.Sprintf("  (%d)", state.DealerValue))
	}
	b.WriteString(dealer + "\n")

	for i, hand := range state.PlayerHands {
		line := fmt.Sprintf("Hand %d  %s  ", i+1, renderCards(hand.Cards, false))
		line += HandInfoStyle.Render(fmt.Sprintf("(%d)", hand.Value))
		line += InfoStyle.Render(fmt.Sprintf("  bet $%d", hand.Bet))
		if hand.Blackjack {
			line += "  " + SuccessStyle.Render("blackjack!")
		} else if hand.Bust {
			line += "  " + ErrorStyle.Render("bust")
		}
		if m.prompt.Kind == blackjack.PromptAction && m.prompt.HandIndex == i {
			line += "  " + ActionsStyle.Render("<--")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString(InfoStyle.Render(fmt.Sprintf("Bankroll $%d  |  Count %+d (true %.2f)  |  Won %d  Lost %d  Pushed %d",
		state.Bankroll, state.RunningCount, state.TrueCount,
		state.Stats.HandsWon, state.Stats.HandsLost, state.Stats.HandsPushed)))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7D56F4")).
		Width(m.width - 2).
		Render(b.String())
}

// renderPromptPane shows the active prompt and the input field.
func (m *Model) renderPromptPane() string {
	var b strings.Builder
	b.WriteString(m.prompt.Message + "\n")

	switch m.prompt.Kind {
	case blackjack.PromptAction, blackjack.PromptContinue:
		opts := make([]string, len(m.prompt.Options))
		for i, a := range m.prompt.Options {
			opts[i] = a.String()
		}
		b.WriteString(ActionsStyle.Render("["+strings.Join(opts, " / ")+"]") + "\n")
	case blackjack.PromptBet:
		if m.prompt.Bounds != nil {
			b.WriteString(ActionsStyle.Render(fmt.Sprintf("[$%d - $%d]", m.prompt.Bounds.Min, m.prompt.Bounds.Max)) + "\n")
		}
	}
	b.WriteString(m.input.View())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(m.width - 2).
		Render(b.String())
}

// renderCards renders a hand, optionally hiding the hole card.
func renderCards(cards []deck.Rank, hideFirst bool) string {
	if len(cards) == 0 {
		return InfoStyle.Render("--")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		if hideFirst && i == 0 {
			parts[i] = HiddenCardStyle.Render("[??]")
			continue
		}
		parts[i] = CardStyle.Render("[" + c.String() + "]")
	}
	return strings.Join(parts, " ")
}

// renderResult formats one settled hand for the log.
func renderResult(index int, res blackjack.HandResult) string {
	label := strings.ToUpper(strings.ReplaceAll(string(res.Outcome), "_", " "))
	net := res.Payout - res.Bet

	var styled string
	switch {
	case res.Outcome.Won():
		styled = SuccessStyle.Render(fmt.Sprintf("%s  +$%d", label, net))
	case res.Outcome == blackjack.OutcomePush:
		styled = WarningStyle.Render(label)
	case res.Outcome == blackjack.OutcomeSurrender:
		// Half the wager came back at surrender time.
		styled = WarningStyle.Render(fmt.Sprintf("%s  -$%d", label, res.Bet-res.Bet/2))
	default:
		styled = ErrorStyle.Render(fmt.Sprintf("%s  -$%d", label, -net))
	}
	return fmt.Sprintf("Hand %d: %s", index+1, styled)
}

// Run starts the interactive game and blocks until it exits.
func Run(ctrl *blackjack.Controller, logger *log.Logger) error {
	program := tea.NewProgram(New(ctrl, logger), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
