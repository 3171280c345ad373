// Package config loads game configuration from HCL files.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/blackjack"
)

// Config represents the complete game configuration
type Config struct {
	Game       *GameSettings       `hcl:"game,block"`
	Table      *TableSettings      `hcl:"table,block"`
	Simulation *SimulationSettings `hcl:"simulation,block"`
}

// GameSettings contains game-level configuration
type GameSettings struct {
	LogLevel string   `hcl:"log_level,optional"`
	LogFile  string   `hcl:"log_file,optional"`
	Mods     []string `hcl:"mods,optional"`
}

// TableSettings defines the blackjack table rules
type TableSettings struct {
	Decks            int     `hcl:"decks,optional"`
	Bankroll         int     `hcl:"bankroll,optional"`
	MinBet           int     `hcl:"min_bet,optional"`
	MaxBet           int     `hcl:"max_bet,optional"`
	BlackjackPayout  float64 `hcl:"blackjack_payout,optional"`
	ShuffleThreshold int     `hcl:"shuffle_threshold,optional"`
}

// SimulationSettings defines defaults for the simulate command
type SimulationSettings struct {
	Sessions    int   `hcl:"sessions,optional"`
	Rounds      int   `hcl:"rounds,optional"`
	Bet         int   `hcl:"bet,optional"`
	Seed        int64 `hcl:"seed,optional"`
	Concurrency int   `hcl:"concurrency,optional"`
}

// Default returns the default configuration
func Default() *Config {
	table := blackjack.DefaultConfig()
	return &Config{
		Game: &GameSettings{
			LogLevel: "info",
		},
		Table: &TableSettings{
			Decks:            table.NumDecks,
			Bankroll:         table.StartingBankroll,
			MinBet:           table.MinBet,
			MaxBet:           table.MaxBet,
			BlackjackPayout:  table.BlackjackPayout,
			ShuffleThreshold: table.ShuffleThreshold,
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills missing values from the default configuration.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	if c.Table == nil {
		c.Table = &TableSettings{}
	}
	if c.Game.LogLevel == "" {
		c.Game.LogLevel = d.Game.LogLevel
	}
	if c.Table.Decks == 0 {
		c.Table.Decks = d.Table.Decks
	}
	if c.Table.Bankroll == 0 {
		c.Table.Bankroll = d.Table.Bankroll
	}
	if c.Table.MinBet == 0 {
		c.Table.MinBet = d.Table.MinBet
	}
	if c.Table.MaxBet == 0 {
		c.Table.MaxBet = d.Table.MaxBet
	}
	if c.Table.BlackjackPayout == 0 {
		c.Table.BlackjackPayout = d.Table.BlackjackPayout
	}
	if c.Table.ShuffleThreshold == 0 {
		c.Table.ShuffleThreshold = d.Table.ShuffleThreshold
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Table.Decks < 1 || c.Table.Decks > 12 {
		return fmt.Errorf("decks must be between 1 and 12, got %d", c.Table.Decks)
	}
	if c.Table.Bankroll <= 0 {
		return fmt.Errorf("bankroll must be positive, got %d", c.Table.Bankroll)
	}
	if c.Table.MinBet <= 0 {
		return fmt.Errorf("min_bet must be positive, got %d", c.Table.MinBet)
	}
	if c.Table.MaxBet < c.Table.MinBet {
		return fmt.Errorf("max_bet (%d) must be at least min_bet (%d)", c.Table.MaxBet, c.Table.MinBet)
	}
	if c.Table.BlackjackPayout <= 1 {
		return fmt.Errorf("blackjack_payout must exceed even money, got %g", c.Table.BlackjackPayout)
	}
	if c.Table.ShuffleThreshold < 1 {
		return fmt.Errorf("shuffle_threshold must be positive, got %d", c.Table.ShuffleThreshold)
	}

	validMods := map[string]bool{"lucky-draw": true, "pity": true}
	for _, name := range c.Game.Mods {
		if !validMods[name] {
			return fmt.Errorf("unknown mod %q", name)
		}
	}

	if s := c.Simulation; s != nil {
		if s.Sessions < 0 || s.Rounds < 0 || s.Bet < 0 || s.Concurrency < 0 {
			return fmt.Errorf("simulation values must not be negative")
		}
	}
	return nil
}

// TableConfig converts the table settings to an engine configuration.
func (c *Config) TableConfig() blackjack.Config {
	return blackjack.Config{
		NumDecks:         c.Table.Decks,
		StartingBankroll: c.Table.Bankroll,
		MinBet:           c.Table.MinBet,
		MaxBet:           c.Table.MaxBet,
		BlackjackPayout:  c.Table.BlackjackPayout,
		ShuffleThreshold: c.Table.ShuffleThreshold,
	}
}
