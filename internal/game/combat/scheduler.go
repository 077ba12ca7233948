package combat

import (
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// PickMinimum folds over indices [0, n) and returns the eligible index with the
// smallest value, or -1 if none is eligible. The fold carries (best, value,
// ties): a strictly smaller value replaces the best and resets ties; the k-th
// candidate seen at the current minimum replaces the best with probability
// 1/k, so two tied candidates are decided by a fair coin and any number of
// tied candidates is chosen uniformly. Random draws happen only on ties.
func PickMinimum(n int, value func(i int) (v int, eligible bool), src dice.Source) int {
	best, bestValue, ties := -1, 0, 0
	for i := 0; i < n; i++ {
		v, ok := value(i)
		if !ok {
			continue
		}
		switch {
		case best < 0 || v < bestValue:
			best, bestValue, ties = i, v, 1
		case v == bestValue:
			ties++
			if src.Intn(ties) == 0 {
				best = i
			}
		}
	}
	return best
}

// Scheduler picks the next attacker by minimum readiness counter among living
// combatants of both teams, then rebases every counter by the time elapsed.
// Counters are relative, so they stay bounded over unbounded turns.
type Scheduler struct {
	arena *Arena
	die   dice.Expression
	src   dice.Source
}

// NewScheduler creates a Scheduler over arena using rules.ReadyDie.
func NewScheduler(arena *Arena, rules *ruleset.Rules, src dice.Source) *Scheduler {
	return &Scheduler{arena: arena, die: rules.ReadyDie, src: src}
}

// Next returns the index of the next attacker and its readiness counter,
// which is the time elapsed for this turn.
//
// Precondition: at least one combatant is alive.
// Postcondition: the returned combatant is alive and holds the minimum
// readiness counter among living combatants.
func (s *Scheduler) Next() (attacker, elapsed int) {
	attacker = PickMinimum(s.arena.Len(), func(i int) (int, bool) {
		c := s.arena.At(i)
		return c.readiness, c.IsAlive()
	}, s.src)
	if attacker < 0 {
		panic("combat: scheduler has no living combatant")
	}
	return attacker, s.arena.At(attacker).readiness
}

// Advance is called once the attacker's action has resolved. The attacker
// draws increment = max(1, ReadyDie - Speed) and adds it to its counter, then
// every living counter, the attacker's included, is reduced by elapsed,
// saturating at zero.
//
// Postcondition: the attacker's counter is > 0; every living counter is >= 0.
// Returns the increment drawn.
func (s *Scheduler) Advance(attacker, elapsed int) int {
	c := s.arena.At(attacker)
	increment := max(1, stats.SatSub(s.die.Roll(s.src), c.Stat(stats.Speed)))
	c.readiness = stats.SatAdd(c.readiness, increment)

	for i := 0; i < s.arena.Len(); i++ {
		other := s.arena.At(i)
		if !other.IsAlive() {
			continue
		}
		other.readiness = stats.SatSub(other.readiness, elapsed)
	}
	return increment
}
