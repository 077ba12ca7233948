package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/report"
	"github.com/cory-johannsen/fightsim/internal/sim"
)

var (
	fightRoster    string
	fightVs        string
	fightSeed      uint64
	fightRepeats   int
	fightLogEvents bool
	fightColor     bool
	fightQuiet     bool
	fightLogFile   string
)

var fightCmd = &cobra.Command{
	Use:   "fight",
	Short: "Run a match between two roster files",
	Long: `Run one seeded match between the team in --roster (side A) and the team in
--vs (side B), narrating every event. With --repeats above 1 the teams fight
that many seeded matches and only the tally is printed.

--log-file also writes the uncolored narration and result to a file. When it
names a directory the file is <teamA>Vs<teamB>.txt inside it.`,
	RunE: runFight,
}

func init() {
	fightCmd.Flags().StringVar(&fightRoster, "roster", "", "roster file for team A")
	fightCmd.Flags().StringVar(&fightVs, "vs", "", "roster file for team B")
	fightCmd.Flags().Uint64Var(&fightSeed, "seed", 0, "match seed (default: configured or random)")
	fightCmd.Flags().IntVar(&fightRepeats, "repeats", 1, "number of matches to play")
	fightCmd.Flags().BoolVar(&fightLogEvents, "log-events", false, "log every event and dice draw at debug level")
	fightCmd.Flags().BoolVar(&fightColor, "color", true, "colorize narration")
	fightCmd.Flags().BoolVar(&fightQuiet, "quiet", false, "print only the result")
	fightCmd.Flags().StringVar(&fightLogFile, "log-file", "", "also write narration to this file or directory")
	_ = fightCmd.MarkFlagRequired("roster")
	_ = fightCmd.MarkFlagRequired("vs")
}

func runFight(cmd *cobra.Command, _ []string) error {
	teamA, err := fighter.LoadRoster(fightRoster, rules.PointBuy)
	if err != nil {
		return err
	}
	teamB, err := fighter.LoadRoster(fightVs, rules.PointBuy)
	if err != nil {
		return err
	}
	seed, err := resolveSeed(cmd, fightSeed)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if fightRepeats > 1 {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		runner := &sim.Runner{Rules: rules, Workers: cfg.Simulation.Workers, Logger: logger}
		tally, err := runner.RunTeams(ctx, teamA.Fighters, teamB.Fighters, fightRepeats, seed)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seed %d\n", seed)
		fmt.Fprint(out, report.RenderTeamTally(tally, teamA.Name, teamB.Name))
		return nil
	}

	matchID := uuid.New()
	logger.Info("match starting",
		zap.String("match_id", matchID.String()),
		zap.String("team_a", teamA.Name),
		zap.String("team_b", teamB.Name),
		zap.Uint64("seed", seed),
	)

	var src dice.Source = dice.NewSeededSource(seed)
	var eventLog combat.Sink
	if fightLogEvents {
		src = dice.NewLoggedSource(src, logger)
		eventLog = report.NewZapSink(logger, matchID)
	}
	var narration combat.Sink
	narrator := report.NewNarrator(out, fightColor)
	if !fightQuiet {
		narration = narrator.Sink()
	}

	var logFile *os.File
	var fileNarration combat.Sink
	var fileNarrator *report.Narrator
	if fightLogFile != "" {
		path := matchLogPath(fightLogFile, teamA.Name, teamB.Name)
		if logFile, err = os.Create(path); err != nil {
			return fmt.Errorf("creating match log: %w", err)
		}
		defer logFile.Close()
		fileNarrator = report.NewNarrator(logFile, false)
		fileNarration = fileNarrator.Sink()
		logger.Info("writing match log", zap.String("path", path))
	}

	m := combat.NewMatch(rules, teamA.Fighters, teamB.Fighters, src)
	res := m.Run(report.Multi(narration, fileNarration, eventLog))
	if err := narrator.Err(); err != nil {
		return fmt.Errorf("writing narration: %w", err)
	}

	result := report.RenderResult(res, teamA.Name, teamB.Name)
	if logFile != nil {
		if err := fileNarrator.Err(); err != nil {
			return fmt.Errorf("writing match log: %w", err)
		}
		if _, err := fmt.Fprintf(logFile, "seed %d\n%s", seed, report.StripANSI(result)); err != nil {
			return fmt.Errorf("writing match log: %w", err)
		}
		if err := logFile.Close(); err != nil {
			return fmt.Errorf("closing match log: %w", err)
		}
	}
	if !fightColor {
		result = report.StripANSI(result)
	}
	fmt.Fprintf(out, "seed %d\n", seed)
	fmt.Fprint(out, result)
	return nil
}

// matchLogPath returns path itself, or <teamA>Vs<teamB>.txt inside it when
// path is an existing directory.
func matchLogPath(path, teamA, teamB string) string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path
	}
	clean := func(name string) string {
		return strings.Map(func(r rune) rune {
			if r == ' ' || r == '/' || r == filepath.Separator {
				return -1
			}
			return r
		}, name)
	}
	return filepath.Join(path, clean(teamA)+"Vs"+clean(teamB)+".txt")
}
