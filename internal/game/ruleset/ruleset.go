// Package ruleset holds the tunable constants of a combat rule set: stat
// transforms, the point-buy budget, roll ranges, critical and damage
// constants, the recovery policy, and the optional turn cap.
package ruleset

import (
	"fmt"

	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// PointBuy bounds how points may be invested into one fighter.
type PointBuy struct {
	Total int
	Min   int
	Max   int
}

// Recovery is the knockdown recovery policy.
type Recovery struct {
	// MaxRecoveries caps how many times one combatant may get back up.
	MaxRecoveries int
	// Chances is the percent chance on the Nth knockdown; the last entry repeats.
	Chances []int
	// ConvictionBonus is added to the chance per point of effective Conviction.
	ConvictionBonus int
	// StackBonuses keeps every recovery bonus when true; when false each
	// recovery replaces the previous one.
	StackBonuses bool
	// PerConviction is the stat bonus granted per point of Conviction.
	// The Health entry is the health a recovered combatant is reset to per point.
	PerConviction stats.Modifiers
}

// Chance returns the percent chance to recover from the given knockdown
// (1 for the first) for a combatant with the given effective Conviction.
// Knockdowns beyond MaxRecoveries never recover.
//
// Postcondition: Returns a value in [0, 100].
func (r Recovery) Chance(knockdown, conviction int) int {
	if knockdown < 1 || knockdown > r.MaxRecoveries || len(r.Chances) == 0 {
		return 0
	}
	idx := min(knockdown-1, len(r.Chances)-1)
	chance := stats.SatAdd(r.Chances[idx], stats.SatMul(conviction, r.ConvictionBonus))
	return max(0, min(100, chance))
}

// Bonus returns the stat overlay granted by one recovery at the given
// Conviction. The Health entry is zero; use ResetHealth for health.
func (r Recovery) Bonus(conviction int) stats.Modifiers {
	var m stats.Modifiers
	for _, s := range stats.All {
		if s == stats.Health || s == stats.Conviction {
			continue
		}
		m[s] = stats.SatMul(conviction, r.PerConviction[s])
	}
	return m
}

// ResetHealth returns the health a recovered combatant stands back up with.
func (r Recovery) ResetHealth(conviction int) int {
	return max(0, stats.SatMul(conviction, r.PerConviction[stats.Health]))
}

// Rules is an immutable, validated rule set shared read-only by every match.
type Rules struct {
	Transforms stats.Table
	PointBuy   PointBuy

	// ReadyDie is the scheduler's uniform_random(1, READY_RANGE).
	ReadyDie  dice.Expression
	HitDie    dice.Expression
	DamageDie dice.Expression

	MinDamage       int
	CritMultiplier  int
	CritBase        int
	CritPerAccuracy int

	// MaxRollAlwaysHits lets the hit die's highest face land through any dodge.
	MaxRollAlwaysHits bool

	// MaxTurns ends a match by health comparison after this many turns; 0 is unbounded.
	MaxTurns int

	Recovery Recovery
}

// CritThreshold returns the hit roll a critical must exceed for an attacker
// with the given raw Accuracy investment. More invested Accuracy lowers the
// threshold, making criticals more likely.
//
// Postcondition: Returns >= 0.
func (r *Rules) CritThreshold(rawAccuracy int) int {
	return stats.SatSub(r.CritBase, stats.SatMul(max(0, rawAccuracy), r.CritPerAccuracy))
}

// AutoHitRoll returns the hit roll that lands regardless of dodge, or 0 when
// every roll must beat dodge.
func (r *Rules) AutoHitRoll() int {
	if !r.MaxRollAlwaysHits {
		return 0
	}
	return r.HitDie.Max()
}

// FromConfig converts validated configuration into Rules.
//
// Precondition: cfg passed config.Config.Validate.
// Postcondition: Returns Rules or an error naming the first bad field.
func FromConfig(cfg config.RulesConfig) (*Rules, error) {
	r := &Rules{
		PointBuy: PointBuy{
			Total: cfg.PointBuy.Total,
			Min:   cfg.PointBuy.Min,
			Max:   cfg.PointBuy.Max,
		},
		MinDamage:       cfg.MinDamage,
		CritMultiplier:  cfg.CritMultiplier,
		CritBase:        cfg.CritBase,
		CritPerAccuracy: cfg.CritPerAccuracy,
		MaxTurns:        cfg.MaxTurns,

		MaxRollAlwaysHits: cfg.MaxRollAlwaysHits,
	}

	var seen [stats.Count]bool
	for name, tr := range cfg.Stats {
		s, err := stats.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("ruleset: stats: %w", err)
		}
		r.Transforms[s] = stats.Transform{Scale: tr.Scale, Offset: tr.Offset}
		seen[s] = true
	}
	for _, s := range stats.All {
		if !seen[s] {
			return nil, fmt.Errorf("ruleset: missing transform for %s", s)
		}
	}

	var err error
	if r.ReadyDie, err = dice.Parse(cfg.ReadyDie); err != nil {
		return nil, fmt.Errorf("ruleset: ready_die: %w", err)
	}
	if r.HitDie, err = dice.Parse(cfg.HitDie); err != nil {
		return nil, fmt.Errorf("ruleset: hit_die: %w", err)
	}
	if r.DamageDie, err = dice.Parse(cfg.DamageDie); err != nil {
		return nil, fmt.Errorf("ruleset: damage_die: %w", err)
	}
	if r.ReadyDie.Min() < 1 {
		return nil, fmt.Errorf("ruleset: ready_die %q can roll below 1", cfg.ReadyDie)
	}

	rc := cfg.Recovery
	r.Recovery = Recovery{
		MaxRecoveries:   rc.MaxRecoveries,
		Chances:         append([]int(nil), rc.Chances...),
		ConvictionBonus: rc.ConvictionBonus,
		StackBonuses:    rc.StackBonuses,
	}
	r.Recovery.PerConviction[stats.Attack] = rc.AttackPerConviction
	r.Recovery.PerConviction[stats.Defense] = rc.DefensePerConviction
	r.Recovery.PerConviction[stats.Speed] = rc.SpeedPerConviction
	r.Recovery.PerConviction[stats.Accuracy] = rc.AccuracyPerConviction
	r.Recovery.PerConviction[stats.Dodge] = rc.DodgePerConviction
	r.Recovery.PerConviction[stats.Health] = rc.HealthPerConviction

	return r, nil
}

// Default returns the rule set built from configuration defaults.
func Default() *Rules {
	r, err := FromConfig(config.Default().Rules)
	if err != nil {
		panic("ruleset: default rules invalid: " + err.Error())
	}
	return r
}

// Identity returns Default with every stat transform set to scale 1, offset 0,
// so effective values equal invested points.
func Identity() *Rules {
	r := Default()
	r.Transforms = stats.IdentityTable()
	return r
}
