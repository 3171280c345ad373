package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd runs unattended basic-strategy sessions
type SimulateCmd struct {
	Config      string   `short:"c" default:"blackjack.hcl" help:"Path to HCL config file"`
	Debug       bool     `help:"Enable debug logging"`
	Sessions    int      `help:"Number of sessions to play (default 100)"`
	Rounds      int      `help:"Betting rounds per session (default 50)"`
	Bet         int      `help:"Flat bet per round (default table minimum)"`
	Seed        int64    `help:"RNG seed (0 for random)"`
	Concurrency int      `help:"Parallel sessions (0 for sequential)"`
	Mods        []string `help:"Rule mods to load into every session"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if len(c.Mods) > 0 {
		cfg.Game.Mods = c.Mods
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := log.InfoLevel
	if c.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	simCfg := simulator.Config{
		Sessions: 100,
		Rounds:   50,
		Bet:      cfg.Table.MinBet,
		Seed:     time.Now().UnixNano(),
		Table:    cfg.TableConfig(),
		Logger:   logger,
	}
	if s := cfg.Simulation; s != nil {
		if s.Sessions > 0 {
			simCfg.Sessions = s.Sessions
		}
		if s.Rounds > 0 {
			simCfg.Rounds = s.Rounds
		}
		if s.Bet > 0 {
			simCfg.Bet = s.Bet
		}
		if s.Seed != 0 {
			simCfg.Seed = s.Seed
		}
		if s.Concurrency > 0 {
			simCfg.Concurrency = s.Concurrency
		}
	}
	if c.Sessions > 0 {
		simCfg.Sessions = c.Sessions
	}
	if c.Rounds > 0 {
		simCfg.Rounds = c.Rounds
	}
	if c.Bet > 0 {
		simCfg.Bet = c.Bet
	}
	if c.Seed != 0 {
		simCfg.Seed = c.Seed
	}
	if c.Concurrency > 0 {
		simCfg.Concurrency = c.Concurrency
	}

	if len(cfg.Game.Mods) > 0 {
		modNames := cfg.Game.Mods
		simCfg.Setup = func(ext *blackjack.Context) error {
			loaded, err := buildMods(modNames, logger)
			if err != nil {
				return err
			}
			for _, mod := range loaded {
				if err := mod.Register(ext); err != nil {
					return err
				}
			}
			return nil
		}
	}

	logger.Info("Starting simulation",
		"sessions", simCfg.Sessions,
		"rounds", simCfg.Rounds,
		"bet", simCfg.Bet,
		"seed", simCfg.Seed,
		"concurrency", simCfg.Concurrency,
		"mods", cfg.Game.Mods)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := simulator.New(simCfg).Run(ctx)
	if err != nil {
		return err
	}
	simulator.PrintSummary(stats)
	return nil
}
