package blackjack

import (
	"fmt"
	"strconv"
	"strings"
)

// PromptKind tags what a prompt is and what input it expects.
type PromptKind string

// Prompt kinds in their only valid order of occurrence per round.
const (
	PromptBet           PromptKind = "bet_input"      // expects a numeric bet
	PromptRoundStart    PromptKind = "round_start"    // informational
	PromptAction        PromptKind = "action_input"   // expects a legal action
	PromptActionResult  PromptKind = "action_result"  // informational
	PromptError         PromptKind = "error"          // informational, re-requests the same input
	PromptRoundComplete PromptKind = "round_complete" // informational, carries results
	PromptContinue      PromptKind = "continue_input" // expects yes/no
	PromptGameOver      PromptKind = "game_over"      // terminal
)

// BetBounds advertises the valid bet range for a bet prompt.
type BetBounds struct {
	Min int
	Max int
}

// Prompt is one suspended decision point: the state snapshot, a human
// message, and whatever the kind needs (options, bounds, results).
type Prompt struct {
	Kind      PromptKind
	State     Snapshot
	Message   string
	HandIndex int
	Options   []Action
	Bounds    *BetBounds
	Action    Action
	Results   []HandResult
	Reason    string // game_over: "bankrupt" or "completed"
}

// ExpectsInput reports whether the driver must answer this prompt.
func (p Prompt) ExpectsInput() bool {
	switch p.Kind {
	case PromptBet, PromptAction, PromptContinue:
		return true
	}
	return false
}

type controllerPhase int

const (
	phaseBet controllerPhase = iota
	phaseAction
	phaseContinue
	phaseDone
)

// Controller is the single state machine a driver interacts with: a
// resumable sequence of prompts over the engine. Call Start once, then Next
// with a response for every prompt that expects input (empty string
// otherwise). Invalid input produces an error prompt and re-requests the same
// input without advancing state. Exactly one game_over prompt ends the
// sequence; it cannot be restarted mid-stream, only reconstructed.
type Controller struct {
	engine    *Engine
	phase     controllerPhase
	handIndex int
	current   Prompt
	done      bool
}

// NewController wraps an engine in a prompt sequence.
func NewController(engine *Engine) *Controller {
	return &Controller{engine: engine}
}

// Engine exposes the underlying engine.
func (c *Controller) Engine() *Engine {
	return c.engine
}

// Done reports whether the game_over prompt has been produced.
func (c *Controller) Done() bool {
	return c.done
}

// Current returns the last prompt produced.
func (c *Controller) Current() Prompt {
	return c.current
}

// Start produces the first prompt.
func (c *Controller) Start() Prompt {
	if c.engine.Bankroll() < c.engine.Config().MinBet {
		return c.gameOver("completed", "Game session ended")
	}
	return c.emit(c.betPrompt())
}

// Next consumes the driver's response to the current prompt and produces the
// next one. Responses to informational prompts are ignored. After game over
// it keeps returning the terminal prompt.
func (c *Controller) Next(response string) Prompt {
	if c.done {
		return c.current
	}

	switch c.current.Kind {
	case PromptBet:
		return c.handleBet(response)
	case PromptAction:
		return c.handleAction(response)
	case PromptContinue:
		return c.handleContinue(response)
	default:
		// Informational prompt delivered; advance by phase.
		return c.advance()
	}
}

// advance produces the next input prompt for the current phase.
func (c *Controller) advance() Prompt {
	switch c.phase {
	case phaseBet:
		return c.emit(c.betPrompt())
	case phaseAction:
		return c.nextActionPrompt()
	case phaseContinue:
		return c.emit(c.continuePrompt())
	default:
		// Round settled with the bankroll below the table minimum.
		return c.gameOver("bankrupt", "Insufficient funds to continue")
	}
}

func (c *Controller) handleBet(response string) Prompt {
	bet, err := strconv.Atoi(strings.TrimSpace(response))
	if err != nil {
		return c.errorPrompt("Invalid bet amount")
	}
	if err := c.engine.ValidateBet(bet); err != nil {
		return c.errorPrompt(err.Error())
	}
	if err := c.engine.StartRound(bet); err != nil {
		return c.errorPrompt(err.Error())
	}
	c.phase = phaseAction
	c.handIndex = 0
	return c.emit(Prompt{
		Kind:    PromptRoundStart,
		State:   c.engine.Snapshot(),
		Message: "Round started",
	})
}

func (c *Controller) handleAction(response string) Prompt {
	action := Action(strings.ToLower(strings.TrimSpace(response)))
	options := c.engine.LegalActions(c.handIndex)
	if !containsAction(options, action) {
		return c.errorPrompt(fmt.Sprintf("Invalid action. Available: %s", joinActions(options)))
	}
	if err := c.engine.ExecuteAction(c.handIndex, action); err != nil {
		return c.errorPrompt(err.Error())
	}
	return c.emit(Prompt{
		Kind:      PromptActionResult,
		State:     c.engine.Snapshot(),
		Action:    action,
		HandIndex: c.handIndex,
		Message:   fmt.Sprintf("Action %q executed", action),
	})
}

func (c *Controller) handleContinue(response string) Prompt {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y", "1", "true":
		c.phase = phaseBet
		return c.emit(c.betPrompt())
	default:
		return c.gameOver("completed", "Game session ended")
	}
}

// nextActionPrompt walks hand-by-hand until an unfinished hand needs a
// decision, then prompts for it. Once every hand is finished the round
// resolves.
func (c *Controller) nextActionPrompt() Prompt {
	hands := c.engine.Hands()
	for c.handIndex < len(hands) {
		hand := hands[c.handIndex]
		if hand.Finished {
			c.handIndex++
			continue
		}
		options := c.engine.LegalActions(c.handIndex)
		if len(options) == 0 {
			c.handIndex++
			continue
		}
		return c.emit(Prompt{
			Kind:      PromptAction,
			State:     c.engine.Snapshot(),
			HandIndex: c.handIndex,
			Options:   options,
			Message:   fmt.Sprintf("Choose action for hand %d", c.handIndex+1),
		})
	}
	return c.resolveRound()
}

func (c *Controller) resolveRound() Prompt {
	results, err := c.engine.ResolveRound()
	if err != nil {
		// EmptyShoe and friends are fatal configuration errors; surface
		// and terminate.
		return c.gameOver("completed", err.Error())
	}

	c.current = Prompt{
		Kind:    PromptRoundComplete,
		State:   c.engine.Snapshot(),
		Results: results,
		Message: "Round completed",
	}
	if c.engine.Bankroll() >= c.engine.Config().MinBet {
		c.phase = phaseContinue
	} else {
		c.phase = phaseDone
	}
	return c.current
}

func (c *Controller) betPrompt() Prompt {
	cfg := c.engine.Config()
	max := cfg.MaxBet
	if c.engine.Bankroll() < max {
		max = c.engine.Bankroll()
	}
	return Prompt{
		Kind:    PromptBet,
		State:   c.engine.Snapshot(),
		Message: fmt.Sprintf("Enter bet ($%d-$%d)", cfg.MinBet, cfg.MaxBet),
		Bounds:  &BetBounds{Min: cfg.MinBet, Max: max},
	}
}

func (c *Controller) continuePrompt() Prompt {
	return Prompt{
		Kind:    PromptContinue,
		State:   c.engine.Snapshot(),
		Message: "Continue playing?",
		Options: []Action{"yes", "no"},
	}
}

func (c *Controller) errorPrompt(message string) Prompt {
	return c.emit(Prompt{
		Kind:    PromptError,
		State:   c.engine.Snapshot(),
		Message: message,
	})
}

// gameOver produces the single terminal prompt. The reason distinguishes a
// bankroll below the table minimum ("bankrupt") from a chosen or natural end
// ("completed").
func (c *Controller) gameOver(reason, message string) Prompt {
	c.phase = phaseDone
	c.done = true
	return c.emit(Prompt{
		Kind:    PromptGameOver,
		State:   c.engine.Snapshot(),
		Message: message,
		Reason:  reason,
	})
}

func (c *Controller) emit(p Prompt) Prompt {
	c.current = p
	return p
}

func joinActions(actions []Action) string {
	strs := make([]string, len(actions))
	for i, a := range actions {
		strs[i] = a.String()
	}
	return strings.Join(strs, ", ")
}
