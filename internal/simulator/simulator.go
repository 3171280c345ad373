// Package simulator plays unattended blackjack sessions against the engine
// using simplified basic strategy, aggregating per-session profits into
// summary statistics. Sessions run in parallel, each with an independent
// seeded RNG so runs are reproducible.
package simulator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for running simulations
type Config struct {
	Sessions    int // Independent sessions to play
	Rounds      int // Betting rounds per session, bankroll permitting
	Bet         int // Flat bet, clamped to the advertised bounds
	Seed        int64
	Concurrency int // Parallel sessions; zero means sequential
	Table       blackjack.Config
	Logger      *log.Logger

	// Setup, when set, prepares each session's extension context before
	// play. Used to load rule mods; sessions never share a context.
	Setup func(*blackjack.Context) error
}

// Simulator runs blackjack session simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Simulator{config: config}
}

// Run executes the simulation and returns aggregated results.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	results := make([]statistics.SessionResult, s.config.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	limit := s.config.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := 0; i < s.config.Sessions; i++ {
		g.Go(func() error {
			// Independent seed per session for replayability.
			seed := s.config.Seed + int64(i)
			result, err := s.playSession(ctx, seed)
			if err != nil {
				return fmt.Errorf("session %d (seed %d): %w", i+1, seed, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playSession drives one full game through the prompt sequence, answering
// every decision with basic strategy and a flat bet.
func (s *Simulator) playSession(ctx context.Context, seed int64) (statistics.SessionResult, error) {
	ext := blackjack.NewContext()
	if s.config.Setup != nil {
		if err := s.config.Setup(ext); err != nil {
			return statistics.SessionResult{}, fmt.Errorf("session setup: %w", err)
		}
	}
	engine := blackjack.NewEngine(s.config.Table, ext, deck.NewRNG(seed), s.config.Logger)
	ctrl := blackjack.NewController(engine)

	rounds := 0
	// Generous ceiling so a driver bug cannot spin forever.
	maxSteps := s.config.Rounds*200 + 100

	prompt := ctrl.Start()
	for step := 0; !ctrl.Done(); step++ {
		if err := ctx.Err(); err != nil {
			return statistics.SessionResult{}, err
		}
		if step > maxSteps {
			return statistics.SessionResult{}, fmt.Errorf("session stalled at prompt %q", prompt.Kind)
		}

		switch prompt.Kind {
		case blackjack.PromptBet:
			prompt = ctrl.Next(strconv.Itoa(clampBet(s.config.Bet, prompt.Bounds)))

		case blackjack.PromptAction:
			hand := prompt.State.PlayerHands[prompt.HandIndex]
			action := Decide(hand, prompt.State.DealerUpcard, prompt.Options)
			prompt = ctrl.Next(string(action))

		case blackjack.PromptRoundComplete:
			rounds++
			prompt = ctrl.Next("")

		case blackjack.PromptContinue:
			if rounds < s.config.Rounds {
				prompt = ctrl.Next("yes")
			} else {
				prompt = ctrl.Next("no")
			}

		case blackjack.PromptError:
			// Basic strategy only answers from the advertised options, so
			// an error prompt means a driver bug.
			return statistics.SessionResult{}, fmt.Errorf("unexpected input rejection: %s", prompt.Message)

		default:
			prompt = ctrl.Next("")
		}
	}

	st := engine.Stats()
	return statistics.SessionResult{
		Seed:          seed,
		NetProfit:     float64(st.SessionProfit),
		FinalBankroll: engine.Bankroll(),
		MaxBankroll:   st.MaxBankroll,
		Rounds:        st.HandsPlayed,
		HandsWon:      st.HandsWon,
		HandsLost:     st.HandsLost,
		HandsPushed:   st.HandsPushed,
		Blackjacks:    st.Blackjacks,
		Busted:        ctrl.Current().Reason == "bankrupt",
	}, nil
}

// clampBet fits the configured flat bet into the advertised bounds.
func clampBet(bet int, bounds *blackjack.BetBounds) int {
	if bounds == nil {
		return bet
	}
	if bet > bounds.Max {
		bet = bounds.Max
	}
	if bet < bounds.Min {
		bet = bounds.Min
	}
	return bet
}

// PrintSummary prints a summary of simulation results
func PrintSummary(stats *statistics.Statistics) {
	mean := stats.Mean()
	low, high := stats.ConfidenceInterval95()

	fmt.Printf("\n=== SESSION RESULTS ===\n")
	fmt.Printf("Sessions played: %d\n", stats.Sessions)
	fmt.Printf("Rounds played: %d\n", stats.Rounds)
	fmt.Printf("Mean profit: $%.2f/session\n", mean)
	fmt.Printf("Median profit: $%.2f/session\n", stats.Median())
	fmt.Printf("Std Dev: $%.2f\n", stats.StdDev())
	fmt.Printf("95%% CI: [$%.2f, $%.2f]/session\n", low, high)
	fmt.Printf("Percentiles: P5=%.0f, P25=%.0f, P75=%.0f, P95=%.0f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Printf("\n=== HAND RESULTS ===\n")
	fmt.Printf("Won: %d, Lost: %d, Pushed: %d (%.1f%% win rate)\n",
		stats.HandsWon, stats.HandsLost, stats.HandsPushed, stats.WinRate()*100)
	fmt.Printf("Blackjacks: %d\n", stats.Blackjacks)
	fmt.Printf("Bankruptcies: %d of %d sessions (%.1f%%)\n",
		stats.Bankruptcies, stats.Sessions, float64(stats.Bankruptcies)/float64(stats.Sessions)*100)
	fmt.Printf("Peak bankroll: $%d\n", stats.MaxBankroll)
}
