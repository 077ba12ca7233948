package sim

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
)

// ErrEmptyTeam is returned when either side of a team run has no fighters.
var ErrEmptyTeam = errors.New("sim: both teams need at least one fighter")

// TeamTally counts the outcomes of repeated matches between two fixed teams.
type TeamTally struct {
	WinsA   int
	WinsB   int
	Draws   int
	Matches int
	// Turns is the total number of turns over all matches.
	Turns int
}

// MeanTurns returns the average match length, or 0 before any match.
func (t TeamTally) MeanTurns() float64 {
	if t.Matches == 0 {
		return 0
	}
	return float64(t.Turns) / float64(t.Matches)
}

// RunTeams plays teamA against teamB repeats times with teamA always on side A.
// Match seeds are drawn in order from a source seeded with seed.
//
// Precondition: both teams are non-empty; repeats >= 1.
func (r *Runner) RunTeams(ctx context.Context, teamA, teamB []*fighter.Fighter, repeats int, seed uint64) (TeamTally, error) {
	if len(teamA) == 0 || len(teamB) == 0 {
		return TeamTally{}, ErrEmptyTeam
	}
	repeats = max(1, repeats)
	logger := r.logger()

	var winsA, winsB, draws, turns atomic.Int64
	parent := dice.NewSeededSource(seed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for k := 0; k < repeats; k++ {
		if gctx.Err() != nil {
			break
		}
		src := parent.Fork()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var sink combat.Sink
			if r.Events != nil {
				sink = r.Events(uuid.New(), "A", "B")
			}
			res := combat.NewMatch(r.Rules, teamA, teamB, src).Run(sink)
			turns.Add(int64(res.Turns))
			switch {
			case res.Draw:
				draws.Add(1)
			case res.Winner == combat.TeamA:
				winsA.Add(1)
			default:
				winsB.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TeamTally{}, fmt.Errorf("sim: team run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return TeamTally{}, fmt.Errorf("sim: team run: %w", err)
	}

	t := TeamTally{
		WinsA:   int(winsA.Load()),
		WinsB:   int(winsB.Load()),
		Draws:   int(draws.Load()),
		Matches: repeats,
		Turns:   int(turns.Load()),
	}
	logger.Info("team run finished",
		zap.Int("matches", t.Matches),
		zap.Int("wins_a", t.WinsA),
		zap.Int("wins_b", t.WinsB),
		zap.Int("draws", t.Draws),
	)
	return t, nil
}
