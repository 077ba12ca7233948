package sim_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
	"github.com/cory-johannsen/fightsim/internal/sim"
)

func pts(health, attack, defense, speed, accuracy, dodge, conviction int) stats.Points {
	return stats.Points{health, attack, defense, speed, accuracy, dodge, conviction}
}

func roster() []*fighter.Fighter {
	return []*fighter.Fighter{
		fighter.Unchecked("tank", pts(40, 10, 20, 5, 10, 5, 10)),
		fighter.Unchecked("striker", pts(20, 30, 5, 15, 15, 5, 10)),
		fighter.Unchecked("dodger", pts(20, 10, 5, 15, 10, 30, 10)),
		fighter.Unchecked("grinder", pts(30, 15, 15, 10, 10, 10, 10)),
	}
}

func TestPairings(t *testing.T) {
	var got [][2]int
	for i, j := range sim.Pairings(4) {
		got = append(got, [2]int{i, j})
	}
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)

	for range sim.Pairings(1) {
		t.Fatal("one fighter has no pairs")
	}
}

func TestPairings_Property_CountAndOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		count := 0
		for i, j := range sim.Pairings(n) {
			assert.Less(rt, i, j)
			assert.Less(rt, j, n)
			count++
		}
		assert.Equal(rt, sim.PairCount(n), count)
	})
}

func TestPairings_StopsEarly(t *testing.T) {
	count := 0
	for range sim.Pairings(10) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestRunner_Run_Tallies(t *testing.T) {
	r := &sim.Runner{Rules: ruleset.Default(), Workers: 3, Repeats: 4}
	rep, err := r.Run(context.Background(), roster(), 7)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rep.RunID)
	assert.Equal(t, uint64(7), rep.Seed)
	assert.Equal(t, 4, rep.Repeats)
	assert.Equal(t, 6*4, rep.Matches)
	require.Len(t, rep.Standings, 4)

	var wins, losses, draws int
	for i, s := range rep.Standings {
		assert.Equal(t, 3*4, s.Matches(), s.Name)
		wins += s.Wins
		losses += s.Losses
		draws += s.Draws
		if i > 0 {
			prev := rep.Standings[i-1]
			assert.True(t, prev.Wins > s.Wins || (prev.Wins == s.Wins && prev.Name < s.Name))
		}
	}
	assert.Equal(t, wins, losses)
	assert.Zero(t, draws, "unbounded matches never draw")
	assert.False(t, rep.Finished.Before(rep.Started))
}

func TestRunner_Run_IndependentOfWorkerCount(t *testing.T) {
	serial := &sim.Runner{Rules: ruleset.Default(), Workers: 1, Repeats: 5}
	parallel := &sim.Runner{Rules: ruleset.Default(), Workers: 8, Repeats: 5}

	a, err := serial.Run(context.Background(), roster(), 1234)
	require.NoError(t, err)
	b, err := parallel.Run(context.Background(), roster(), 1234)
	require.NoError(t, err)
	assert.Equal(t, a.Standings, b.Standings)
}

func TestRunner_Run_DominantFighterLeads(t *testing.T) {
	fighters := []*fighter.Fighter{
		fighter.Unchecked("weak1", pts(1, 0, 0, 0, 0, 0, 0)),
		fighter.Unchecked("champ", pts(1000, 100, 100, 100, 500, 500, 10)),
		fighter.Unchecked("weak2", pts(1, 0, 0, 0, 0, 0, 0)),
	}
	r := &sim.Runner{Rules: ruleset.Identity(), Repeats: 6}
	rep, err := r.Run(context.Background(), fighters, 99)
	require.NoError(t, err)

	leader, ok := rep.Leader()
	require.True(t, ok)
	assert.Equal(t, "champ", leader.Name)
	assert.Equal(t, 12, leader.Wins)
	assert.Zero(t, leader.Losses)
	assert.InDelta(t, 1.0, leader.WinRate(), 1e-9)
}

func TestRunner_Run_TooFewFighters(t *testing.T) {
	r := &sim.Runner{Rules: ruleset.Default()}
	_, err := r.Run(context.Background(), roster()[:1], 1)
	assert.ErrorIs(t, err, sim.ErrTooFewFighters)
}

func TestRunner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &sim.Runner{Rules: ruleset.Default(), Repeats: 3}
	_, err := r.Run(ctx, roster(), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_Run_LogsAndEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var sinks, overs atomic.Int64
	r := &sim.Runner{
		Rules:   ruleset.Default(),
		Repeats: 2,
		Logger:  zap.New(core),
		Events: func(_ uuid.UUID, _, _ string) combat.Sink {
			sinks.Add(1)
			return func(e combat.Event) {
				if _, ok := e.(combat.MatchOver); ok {
					overs.Add(1)
				}
			}
		},
	}
	rep, err := r.Run(context.Background(), roster(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(rep.Matches), sinks.Load())
	assert.Equal(t, int64(rep.Matches), overs.Load())
	assert.Equal(t, 1, logs.FilterMessage("simulation started").Len())
	finished := logs.FilterMessage("simulation finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, rep.RunID.String(), finished[0].ContextMap()["run_id"])
}

func TestRunner_RunTeams(t *testing.T) {
	r := &sim.Runner{Rules: ruleset.Default(), Workers: 4}
	teamA := roster()[:2]
	teamB := roster()[2:]

	first, err := r.RunTeams(context.Background(), teamA, teamB, 20, 11)
	require.NoError(t, err)
	assert.Equal(t, 20, first.Matches)
	assert.Equal(t, 20, first.WinsA+first.WinsB+first.Draws)
	assert.Positive(t, first.MeanTurns())

	second, err := r.RunTeams(context.Background(), teamA, teamB, 20, 11)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunner_RunTeams_MatchesForkedSources(t *testing.T) {
	rules := ruleset.Default()
	teamA := roster()[:2]
	teamB := roster()[2:]

	parent := dice.NewSeededSource(23)
	var want sim.TeamTally
	for range 6 {
		res := combat.NewMatch(rules, teamA, teamB, parent.Fork()).Run(nil)
		want.Matches++
		want.Turns += res.Turns
		switch {
		case res.Draw:
			want.Draws++
		case res.Winner == combat.TeamA:
			want.WinsA++
		default:
			want.WinsB++
		}
	}

	r := &sim.Runner{Rules: rules, Workers: 3}
	got, err := r.RunTeams(context.Background(), teamA, teamB, 6, 23)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunner_RunTeams_TurnCapDecidedOnHealth(t *testing.T) {
	rules := ruleset.Identity()
	rules.MaxTurns = 1
	// Zero dodge makes the single attack land, leaving the totals unequal.
	teamA := []*fighter.Fighter{fighter.Unchecked("a", pts(100, 0, 0, 0, 0, 0, 0))}
	teamB := []*fighter.Fighter{fighter.Unchecked("b", pts(100, 0, 0, 0, 0, 0, 0))}
	r := &sim.Runner{Rules: rules}

	tally, err := r.RunTeams(context.Background(), teamA, teamB, 10, 3)
	require.NoError(t, err)
	assert.Zero(t, tally.Draws)
	assert.Equal(t, 10, tally.Turns)
}

func TestRunner_RunTeams_EmptyTeam(t *testing.T) {
	r := &sim.Runner{Rules: ruleset.Default()}
	_, err := r.RunTeams(context.Background(), nil, roster(), 1, 1)
	assert.ErrorIs(t, err, sim.ErrEmptyTeam)
}
