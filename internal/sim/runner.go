// Package sim drives batches of matches: round-robin tournaments between
// individual fighters and repeated encounters between two teams, run in
// parallel with reproducible per-match seeds.
package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/observability"
)

// ErrTooFewFighters is returned when a round robin has fewer than two entrants.
var ErrTooFewFighters = errors.New("sim: at least two fighters are required")

// Standing is one fighter's tally over a run.
type Standing struct {
	Name   string
	Wins   int
	Losses int
	Draws  int
}

// Matches returns the number of matches the fighter played.
func (s Standing) Matches() int { return s.Wins + s.Losses + s.Draws }

// WinRate returns Wins / Matches, or 0 when no match was played.
func (s Standing) WinRate() float64 {
	if s.Matches() == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Matches())
}

// Report is the outcome of one round-robin run.
type Report struct {
	RunID     uuid.UUID
	Seed      uint64
	Repeats   int
	Matches   int
	Started   time.Time
	Finished  time.Time
	Standings []Standing
}

// Leader returns the top standing, or false when the report is empty.
func (r *Report) Leader() (Standing, bool) {
	if len(r.Standings) == 0 {
		return Standing{}, false
	}
	return r.Standings[0], true
}

// Runner plays batches of matches under one rule set.
type Runner struct {
	Rules *ruleset.Rules
	// Workers bounds concurrent matches; <= 0 uses GOMAXPROCS.
	Workers int
	// Repeats is the number of matches per pairing; <= 0 means 1.
	Repeats int
	Logger  *zap.Logger
	// Events, when set, supplies a sink for each match. It is called from
	// worker goroutines and must be safe for concurrent use.
	Events func(matchID uuid.UUID, a, b string) combat.Sink
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Runner) repeats() int {
	return max(1, r.Repeats)
}

func (r *Runner) logger() *zap.Logger {
	return observability.NewNopOrLogger(r.Logger)
}

type tally struct {
	wins, losses, draws atomic.Int64
}

// Run plays every pairing of fighters Repeats times, one fighter per side.
// Seeds are drawn from a source seeded with seed in pairing order before each
// pairing is dispatched, so the report depends only on seed and inputs, not
// on scheduling. Sides alternate between repeats.
//
// Precondition: len(fighters) >= 2; r.Rules is non-nil.
// Postcondition: on success every pairing played Repeats matches; on context
// cancellation the partial work is discarded and ctx.Err() is returned.
func (r *Runner) Run(ctx context.Context, fighters []*fighter.Fighter, seed uint64) (*Report, error) {
	if len(fighters) < 2 {
		return nil, ErrTooFewFighters
	}
	logger := r.logger()
	rep := &Report{
		RunID:   uuid.New(),
		Seed:    seed,
		Repeats: r.repeats(),
		Started: time.Now(),
	}
	logger.Info("simulation started",
		zap.String("run_id", rep.RunID.String()),
		zap.Int("fighters", len(fighters)),
		zap.Int("pairings", PairCount(len(fighters))),
		zap.Int("repeats", rep.Repeats),
		zap.Int("workers", r.workers()),
		zap.Uint64("seed", seed),
	)

	tallies := make([]tally, len(fighters))
	var matches atomic.Int64
	parent := dice.NewSeededSource(seed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, j := range Pairings(len(fighters)) {
		if gctx.Err() != nil {
			break
		}
		src := parent.Fork()
		g.Go(func() error {
			for k := 0; k < rep.Repeats; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				a, b := i, j
				if k%2 == 1 {
					a, b = j, i
				}
				res := r.play(fighters[a], fighters[b], src.Fork())
				matches.Add(1)
				switch {
				case res.Draw:
					tallies[a].draws.Add(1)
					tallies[b].draws.Add(1)
				case res.Winner == combat.TeamA:
					tallies[a].wins.Add(1)
					tallies[b].losses.Add(1)
				default:
					tallies[b].wins.Add(1)
					tallies[a].losses.Add(1)
				}
			}
			logger.Debug("pairing complete",
				zap.String("a", fighters[i].Name()),
				zap.String("b", fighters[j].Name()),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sim: run %s: %w", rep.RunID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sim: run %s: %w", rep.RunID, err)
	}

	rep.Matches = int(matches.Load())
	rep.Standings = make([]Standing, len(fighters))
	for i, f := range fighters {
		rep.Standings[i] = Standing{
			Name:   f.Name(),
			Wins:   int(tallies[i].wins.Load()),
			Losses: int(tallies[i].losses.Load()),
			Draws:  int(tallies[i].draws.Load()),
		}
	}
	sort.SliceStable(rep.Standings, func(x, y int) bool {
		sx, sy := rep.Standings[x], rep.Standings[y]
		if sx.Wins != sy.Wins {
			return sx.Wins > sy.Wins
		}
		return sx.Name < sy.Name
	})
	rep.Finished = time.Now()

	logger.Info("simulation finished",
		zap.String("run_id", rep.RunID.String()),
		zap.Int("matches", rep.Matches),
		zap.Duration("elapsed", rep.Finished.Sub(rep.Started)),
	)
	return rep, nil
}

func (r *Runner) play(a, b *fighter.Fighter, src dice.Source) combat.Result {
	var sink combat.Sink
	if r.Events != nil {
		sink = r.Events(uuid.New(), a.Name(), b.Name())
	}
	m := combat.NewMatch(r.Rules, []*fighter.Fighter{a}, []*fighter.Fighter{b}, src)
	return m.Run(sink)
}
