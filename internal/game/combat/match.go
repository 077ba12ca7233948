package combat

import (
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
)

// Result is the outcome of a finished match.
type Result struct {
	Winner Team
	// Draw is only possible when the rules cap the number of turns.
	Draw bool
	// Representative is the first living fighter of the winning team, nil on a draw.
	Representative *fighter.Fighter
	Turns          int
	// Health is each team's remaining total health, indexed by Team.
	Health [2]int
}

// Match owns both teams and the random source for one encounter.
type Match struct {
	rules *ruleset.Rules
	arena *Arena
	sched *Scheduler
	res   *Resolver
	turn  int
	over  bool
}

// NewMatch builds a match between teamA and teamB drawing all randomness from src.
//
// Precondition: rules and src are non-nil; both teams are non-empty and their
// fighters already validated.
func NewMatch(rules *ruleset.Rules, teamA, teamB []*fighter.Fighter, src dice.Source) *Match {
	arena := NewArena(rules, teamA, teamB)
	return &Match{
		rules: rules,
		arena: arena,
		sched: NewScheduler(arena, rules, src),
		res:   NewResolver(arena, rules, src),
	}
}

// NewSeededMatch builds a match whose whole event sequence is determined by seed.
func NewSeededMatch(rules *ruleset.Rules, teamA, teamB []*fighter.Fighter, seed uint64) *Match {
	return NewMatch(rules, teamA, teamB, dice.NewSeededSource(seed))
}

// Arena exposes combatant state for inspection between turns.
func (m *Match) Arena() *Arena { return m.arena }

// Turn returns the number of turns played so far.
func (m *Match) Turn() int { return m.turn }

// Over reports whether a team has been eliminated or the turn cap reached.
func (m *Match) Over() bool {
	if m.over {
		return true
	}
	if m.arena.Living(TeamA) == 0 || m.arena.Living(TeamB) == 0 {
		return true
	}
	return m.rules.MaxTurns > 0 && m.turn >= m.rules.MaxTurns
}

// Step plays one turn: pick the attacker, pick a defender, resolve the attack,
// and advance the scheduler. It returns false without playing when the match
// is already over.
func (m *Match) Step(sink Sink) bool {
	if m.Over() {
		return false
	}
	m.turn++
	if sink != nil {
		sink(RoundStarted{Turn: m.turn})
	}

	attacker, elapsed := m.sched.Next()
	defender := m.res.PickDefender(attacker)
	if sink != nil {
		sink(AttackDeclared{
			Attacker:  m.arena.At(attacker).ref,
			Defender:  m.arena.At(defender).ref,
			Readiness: elapsed,
		})
	}
	m.res.Resolve(attacker, defender, sink)
	m.sched.Advance(attacker, elapsed)
	return true
}

// Run plays turns until one team has no living member, or until the turn cap
// when one is configured, then emits MatchOver and returns the result.
// Without a cap the loop is unbounded; readiness rebasing keeps counters small.
func (m *Match) Run(sink Sink) Result {
	for m.Step(sink) {
	}
	m.over = true

	res := Result{
		Turns:  m.turn,
		Health: [2]int{m.arena.TotalHealth(TeamA), m.arena.TotalHealth(TeamB)},
	}
	aliveA, aliveB := m.arena.Living(TeamA), m.arena.Living(TeamB)
	switch {
	case aliveB == 0 && aliveA > 0:
		res.Winner = TeamA
	case aliveA == 0 && aliveB > 0:
		res.Winner = TeamB
	case res.Health[TeamA] > res.Health[TeamB]:
		res.Winner = TeamA
	case res.Health[TeamB] > res.Health[TeamA]:
		res.Winner = TeamB
	default:
		res.Draw = true
	}
	if !res.Draw {
		if rep := m.arena.FirstLiving(res.Winner); rep != nil {
			res.Representative = rep.fighter
		}
	}

	if sink != nil {
		sink(MatchOver{Winner: res.Winner, Draw: res.Draw, Turns: res.Turns})
	}
	return res
}
