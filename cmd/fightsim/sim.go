package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/report"
	"github.com/cory-johannsen/fightsim/internal/sim"
	"github.com/cory-johannsen/fightsim/internal/storage/postgres"
)

var (
	simRoster    string
	simEnumerate bool
	simStep      int
	simRepeats   int
	simWorkers   int
	simSeed      uint64
	simStore     bool
	simTop       int
	simLogEvents bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a round-robin tournament between fighters",
	Long: `Every fighter fights every other fighter --repeats times, one on one, with
per-match seeds derived from --seed. Fighters come from --roster (a file or a
directory of roster files) or, with --enumerate, from every legal build on the
--step point grid. Standings are ranked by wins.`,
	RunE: runSim,
}

func init() {
	simCmd.Flags().StringVar(&simRoster, "roster", "", "roster file or directory")
	simCmd.Flags().BoolVar(&simEnumerate, "enumerate", false, "enumerate every legal fighter instead of loading a roster")
	simCmd.Flags().IntVar(&simStep, "step", 0, "enumeration point step (default: configured)")
	simCmd.Flags().IntVar(&simRepeats, "repeats", 0, "matches per pairing (default: configured)")
	simCmd.Flags().IntVar(&simWorkers, "workers", -1, "concurrent matches, 0 for GOMAXPROCS (default: configured)")
	simCmd.Flags().Uint64Var(&simSeed, "seed", 0, "parent seed (default: configured or random)")
	simCmd.Flags().BoolVar(&simStore, "store", false, "persist fighters and standings to PostgreSQL")
	simCmd.Flags().IntVar(&simTop, "top", 20, "standings rows to print, 0 for all")
	simCmd.Flags().BoolVar(&simLogEvents, "log-events", false, "log every combat event at debug level")
	simCmd.MarkFlagsMutuallyExclusive("roster", "enumerate")
	simCmd.MarkFlagsOneRequired("roster", "enumerate")
}

func simFighters() ([]*fighter.Fighter, error) {
	if simEnumerate {
		step := cfg.Simulation.EnumerateStep
		if simStep > 0 {
			step = simStep
		}
		return fighter.Enumerate(rules.PointBuy, step)
	}
	rosters, err := fighter.LoadRosters(simRoster, rules.PointBuy)
	if err != nil {
		return nil, err
	}
	return fighter.Flatten(rosters), nil
}

func runSim(cmd *cobra.Command, _ []string) error {
	fighters, err := simFighters()
	if err != nil {
		return err
	}
	seed, err := resolveSeed(cmd, simSeed)
	if err != nil {
		return err
	}

	runner := &sim.Runner{
		Rules:   rules,
		Workers: cfg.Simulation.Workers,
		Repeats: cfg.Simulation.Repeats,
		Logger:  logger,
	}
	if simWorkers >= 0 {
		runner.Workers = simWorkers
	}
	if simRepeats > 0 {
		runner.Repeats = simRepeats
	}
	if simLogEvents {
		runner.Events = func(matchID uuid.UUID, a, b string) combat.Sink {
			return report.NewZapSink(logger.With(zap.String("a", a), zap.String("b", b)), matchID)
		}
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	rep, err := runner.Run(ctx, fighters, seed)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.RenderStandings(rep, simTop))

	if !simStore {
		return nil
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Health(ctx, 5*time.Second); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	if !simEnumerate {
		if err := postgres.NewFighterRepository(pool.DB()).UpsertAll(ctx, fighters); err != nil {
			return err
		}
	}
	if err := postgres.NewRunRepository(pool.DB()).Save(ctx, rep); err != nil {
		return err
	}
	logger.Info("run stored", zap.String("run_id", rep.RunID.String()))
	return nil
}
