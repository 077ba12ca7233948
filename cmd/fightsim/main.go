// Package main provides the fightsim command-line tool: run single matches
// between rosters, simulate round-robin tournaments, enumerate legal fighters,
// and validate roster files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/observability"
)

var (
	configPath string

	cfg    config.Config
	logger *zap.Logger
	rules  *ruleset.Rules
)

var rootCmd = &cobra.Command{
	Use:   "fightsim",
	Short: "Team combat resolution engine and simulator",
	Long: `fightsim resolves turn-based combat between two teams of fighters built
from a point-buy budget, and runs seeded, reproducible batch simulations to
rank fighter builds against each other.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file; empty uses defaults and FIGHTSIM_ environment overrides")

	rootCmd.AddCommand(fightCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(enumerateCmd)
	rootCmd.AddCommand(validateCmd)
}

// setup loads configuration, builds the logger, and converts the rules
// section before any subcommand runs.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err = observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	rules, err = ruleset.FromConfig(cfg.Rules)
	if err != nil {
		return fmt.Errorf("building rules: %w", err)
	}
	return nil
}

// resolveSeed returns the --seed flag when given, else the configured seed,
// else a fresh crypto seed.
func resolveSeed(cmd *cobra.Command, flagSeed uint64) (uint64, error) {
	if cmd.Flags().Changed("seed") {
		return flagSeed, nil
	}
	if cfg.Simulation.Seed != 0 {
		return cfg.Simulation.Seed, nil
	}
	seed, err := dice.NewSeed()
	if err != nil {
		return 0, fmt.Errorf("drawing seed: %w", err)
	}
	return seed, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
