package combat

import (
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
)

// Arena is the flat store of every combatant in a match. Team A occupies
// indices [0, split) and team B occupies [split, len). The scheduler and the
// resolver address combatants only by index.
type Arena struct {
	combatants []Combatant
	split      int
}

// NewArena lays out teamA followed by teamB.
//
// Precondition: both teams are non-empty.
func NewArena(rules *ruleset.Rules, teamA, teamB []*fighter.Fighter) *Arena {
	if len(teamA) == 0 || len(teamB) == 0 {
		panic("combat: both teams must have at least one fighter")
	}
	a := &Arena{
		combatants: make([]Combatant, len(teamA)+len(teamB)),
		split:      len(teamA),
	}
	for i, f := range teamA {
		a.combatants[i].init(f, TeamA, i, rules)
	}
	for i, f := range teamB {
		a.combatants[a.split+i].init(f, TeamB, i, rules)
	}
	return a
}

// Len returns the number of combatants across both teams.
func (a *Arena) Len() int { return len(a.combatants) }

// At returns the combatant at index i.
func (a *Arena) At(i int) *Combatant { return &a.combatants[i] }

// TeamOf returns the team owning index i.
func (a *Arena) TeamOf(i int) Team {
	if i < a.split {
		return TeamA
	}
	return TeamB
}

// Bounds returns the half-open index range [lo, hi) of team t.
func (a *Arena) Bounds(t Team) (lo, hi int) {
	if t == TeamA {
		return 0, a.split
	}
	return a.split, len(a.combatants)
}

// Members returns the combatants of team t in slot order.
func (a *Arena) Members(t Team) []*Combatant {
	lo, hi := a.Bounds(t)
	out := make([]*Combatant, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, &a.combatants[i])
	}
	return out
}

// Living counts the living members of team t.
func (a *Arena) Living(t Team) int {
	lo, hi := a.Bounds(t)
	n := 0
	for i := lo; i < hi; i++ {
		if a.combatants[i].IsAlive() {
			n++
		}
	}
	return n
}

// LivingIndices appends the indices of living members of t to buf[:0].
func (a *Arena) LivingIndices(t Team, buf []int) []int {
	buf = buf[:0]
	lo, hi := a.Bounds(t)
	for i := lo; i < hi; i++ {
		if a.combatants[i].IsAlive() {
			buf = append(buf, i)
		}
	}
	return buf
}

// TotalHealth sums current health across team t.
func (a *Arena) TotalHealth(t Team) int {
	lo, hi := a.Bounds(t)
	total := 0
	for i := lo; i < hi; i++ {
		total += a.combatants[i].health
	}
	return total
}

// FirstLiving returns the lowest-slot living member of t, or nil.
func (a *Arena) FirstLiving(t Team) *Combatant {
	lo, hi := a.Bounds(t)
	for i := lo; i < hi; i++ {
		if a.combatants[i].IsAlive() {
			return &a.combatants[i]
		}
	}
	return nil
}
