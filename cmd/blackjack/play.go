package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/mods"
	"github.com/lox/blackjack/internal/tui"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// PlayCmd runs the interactive table
type PlayCmd struct {
	Config   string   `short:"c" default:"blackjack.hcl" help:"Path to HCL config file"`
	Debug    bool     `help:"Enable debug logging"`
	Bankroll int      `help:"Override the starting bankroll"`
	Decks    int      `help:"Override the number of decks"`
	Seed     *int64   `help:"Deterministic RNG seed (optional)"`
	Mods     []string `help:"Rule mods to load (lucky-draw, pity); overrides the config file"`
}

func (c *PlayCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Bankroll > 0 {
		cfg.Table.Bankroll = c.Bankroll
	}
	if c.Decks > 0 {
		cfg.Table.Decks = c.Decks
	}
	if len(c.Mods) > 0 {
		cfg.Game.Mods = c.Mods
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile := cfg.Game.LogFile
	if logFile == "" {
		logFile = "blackjack.log"
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()

	level := log.InfoLevel
	if c.Debug || cfg.Game.LogLevel == "debug" {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	}

	ext := blackjack.NewContext()
	manager := mods.NewManager(ext, logger)
	loaded, err := buildMods(cfg.Game.Mods, logger)
	if err != nil {
		return err
	}
	if err := manager.Load(loaded...); err != nil {
		return err
	}
	defer manager.UnloadAll()

	engine := blackjack.NewEngine(cfg.TableConfig(), ext, deck.NewRNG(seed), logger)
	ctrl := blackjack.NewController(engine)

	fmt.Print(titleStyle.Render(" ♠ ♥ Blackjack ♦ ♣ "))
	fmt.Println()
	return tui.Run(ctrl, logger)
}

// buildMods maps config names to module instances.
func buildMods(names []string, logger *log.Logger) ([]mods.Mod, error) {
	out := make([]mods.Mod, 0, len(names))
	for _, name := range names {
		switch name {
		case "lucky-draw":
			out = append(out, mods.NewLuckyDraw(logger))
		case "pity":
			out = append(out, mods.NewPity(logger))
		default:
			return nil, fmt.Errorf("unknown mod %q", name)
		}
	}
	return out, nil
}
