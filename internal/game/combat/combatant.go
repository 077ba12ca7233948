// Package combat implements the turn-based team combat engine: per-match
// combatant state, the readiness scheduler, the attack resolver, the
// knockdown and recovery state machine, and the match loop.
//
// A match is single-threaded and performs no I/O. Narration leaves the engine
// only as structured Events passed to a caller-supplied Sink.
package combat

import (
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// Team identifies one side of a match.
type Team int

const (
	TeamA Team = iota
	TeamB
)

// String returns "A" or "B".
func (t Team) String() string {
	if t == TeamA {
		return "A"
	}
	return "B"
}

// Opponent returns the other team.
func (t Team) Opponent() Team { return 1 - t }

// State is a combatant's position in the knockdown state machine.
type State int

const (
	StateActive State = iota
	StateDowned
	StateEliminated
)

// String returns a lower-case state label.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDowned:
		return "downed"
	case StateEliminated:
		return "eliminated"
	default:
		return "unknown"
	}
}

// Ref identifies a combatant within a match.
type Ref struct {
	Team Team
	Slot int
	Name string
}

// Combatant wraps a shared, read-only Fighter with the mutable state it
// carries through one match.
type Combatant struct {
	fighter *fighter.Fighter
	table   *stats.Table
	rec     *ruleset.Recovery
	ref     Ref

	health     int
	mods       stats.Modifiers
	lastBonus  stats.Modifiers
	readiness  int
	knockdowns int
	eliminated bool
}

// NewCombatant creates fresh match state for f at full health.
//
// Precondition: f and rules must be non-nil.
// Postcondition: Health() == Stat(stats.Health); overlay, readiness, and
// knockdowns are zero.
func NewCombatant(f *fighter.Fighter, team Team, slot int, rules *ruleset.Rules) *Combatant {
	c := &Combatant{}
	c.init(f, team, slot, rules)
	return c
}

func (c *Combatant) init(f *fighter.Fighter, team Team, slot int, rules *ruleset.Rules) {
	*c = Combatant{
		fighter: f,
		table:   &rules.Transforms,
		rec:     &rules.Recovery,
		ref:     Ref{Team: team, Slot: slot, Name: f.Name()},
	}
	c.health = c.Stat(stats.Health)
}

// Fighter returns the underlying fighter definition.
func (c *Combatant) Fighter() *fighter.Fighter { return c.fighter }

// Ref returns the combatant's match identity.
func (c *Combatant) Ref() Ref { return c.ref }

// Name returns the fighter's name.
func (c *Combatant) Name() string { return c.ref.Name }

// Stat returns the effective value of s plus the modifier overlay, floored at
// zero. For stats.Health this is the maximum health, not the current health.
//
// Postcondition: Returns >= 0.
func (c *Combatant) Stat(s stats.Stat) int {
	return stats.ApplyModifier(c.table.EffectiveValue(s, c.fighter.Points(s)), c.mods[s])
}

// Modifiers returns a copy of the modifier overlay.
func (c *Combatant) Modifiers() stats.Modifiers { return c.mods }

// Health returns current health.
//
// Invariant: Health() >= 0.
func (c *Combatant) Health() int { return c.health }

// IsAlive reports whether current health is above zero.
func (c *Combatant) IsAlive() bool { return c.health > 0 }

// State returns the combatant's knockdown state.
func (c *Combatant) State() State {
	switch {
	case c.eliminated:
		return StateEliminated
	case c.health > 0:
		return StateActive
	default:
		return StateDowned
	}
}

// Knockdowns returns how many times health has reached zero this match.
func (c *Combatant) Knockdowns() int { return c.knockdowns }

// Readiness returns the scheduler's readiness counter.
func (c *Combatant) Readiness() int { return c.readiness }

// ApplyDamage subtracts amount from health, saturating at zero. Reaching zero
// from positive health counts a knockdown.
//
// Precondition: amount >= 0.
// Postcondition: Health() >= 0. Returns true iff this call knocked the
// combatant down.
func (c *Combatant) ApplyDamage(amount int) bool {
	if c.health == 0 {
		return false
	}
	c.health = stats.SatSub(c.health, amount)
	if c.health == 0 {
		c.knockdowns++
		return true
	}
	return false
}

// GrantRecoveryBonus applies the get-back-up bundle: Attack, Defense, Speed,
// Accuracy, and Dodge bonuses proportional to Conviction, and a health reset
// proportional to Conviction. With stacking enabled bonuses from every
// recovery accumulate for the rest of the match; otherwise the newest bonus
// replaces the previous one.
//
// Postcondition: Health() == Recovery.ResetHealth(Stat(Conviction)) as read
// before the bonus was applied.
func (c *Combatant) GrantRecoveryBonus() {
	conviction := c.Stat(stats.Conviction)
	bonus := c.rec.Bonus(conviction)
	for _, s := range stats.All {
		if !c.rec.StackBonuses {
			c.mods.Add(s, -c.lastBonus[s])
		}
		c.mods.Add(s, bonus[s])
	}
	c.lastBonus = bonus
	c.health = c.rec.ResetHealth(conviction)
}

func (c *Combatant) eliminate() {
	c.health = 0
	c.eliminated = true
}
