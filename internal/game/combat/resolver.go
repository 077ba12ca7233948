package combat

import (
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// Outcome summarises one resolved attack.
type Outcome struct {
	Hit        bool
	Critical   bool
	Roll       int
	DamageRoll int
	Damage     int
	Downed     bool
	Recovered  bool
	Eliminated bool
}

// Resolver picks defenders and resolves attacks against the arena.
type Resolver struct {
	arena *Arena
	rules *ruleset.Rules
	src   dice.Source
	buf   []int
}

// NewResolver creates a Resolver over arena.
func NewResolver(arena *Arena, rules *ruleset.Rules, src dice.Source) *Resolver {
	return &Resolver{arena: arena, rules: rules, src: src, buf: make([]int, 0, arena.Len())}
}

// PickDefender draws a defender uniformly from the living members of the
// attacker's opposing team.
//
// Precondition: the opposing team has a living member. Panics otherwise; that
// is a match-loop bug, not a game state.
// Postcondition: the returned combatant is alive and on the opposing team.
func (r *Resolver) PickDefender(attacker int) int {
	r.buf = r.arena.LivingIndices(r.arena.TeamOf(attacker).Opponent(), r.buf)
	if len(r.buf) == 0 {
		panic("combat: no living defender on the opposing team")
	}
	return r.buf[r.src.Intn(len(r.buf))]
}

// Hits reports whether roll lands: roll + accuracy >= dodge, or roll reaches
// autoHit. An autoHit of 0 disables the automatic hit.
func Hits(roll, accuracy, dodge, autoHit int) bool {
	return (autoHit > 0 && roll >= autoHit) || stats.SatAdd(roll, accuracy) >= dodge
}

// Damage computes max(minDamage, (damageRoll + attack) * multiplier - defense)
// with saturating arithmetic.
//
// Postcondition: Returns >= minDamage.
func Damage(damageRoll, attack, multiplier, defense, minDamage int) int {
	raw := stats.SatMul(stats.SatAdd(damageRoll, attack), multiplier)
	return max(minDamage, stats.SatSub(max(0, raw), defense))
}

// Resolve rolls to hit, applies damage, and runs the knockdown and recovery
// state machine for the defender. Events go to sink when it is non-nil.
//
// Precondition: attacker and defender are alive and on opposing teams.
// Postcondition: a miss changes no health; a hit deals at least MinDamage; a
// defender at zero health afterwards is Eliminated.
func (r *Resolver) Resolve(attacker, defender int, sink Sink) Outcome {
	atk := r.arena.At(attacker)
	def := r.arena.At(defender)

	var out Outcome
	out.Roll = r.rules.HitDie.Roll(r.src)
	accuracy := atk.Stat(stats.Accuracy)
	dodge := def.Stat(stats.Dodge)

	if !Hits(out.Roll, accuracy, dodge, r.rules.AutoHitRoll()) {
		if sink != nil {
			sink(Miss{Attacker: atk.ref, Defender: def.ref, Roll: out.Roll, Accuracy: accuracy, Dodge: dodge})
		}
		return out
	}

	out.Hit = true
	out.Critical = out.Roll > r.rules.CritThreshold(atk.fighter.Points(stats.Accuracy))
	if sink != nil {
		sink(HitResolved{
			Attacker: atk.ref, Defender: def.ref,
			Roll: out.Roll, Accuracy: accuracy, Dodge: dodge, Critical: out.Critical,
		})
	}

	multiplier := 1
	if out.Critical {
		multiplier = r.rules.CritMultiplier
	}
	out.DamageRoll = r.rules.DamageDie.Roll(r.src)
	out.Damage = Damage(out.DamageRoll, atk.Stat(stats.Attack), multiplier, def.Stat(stats.Defense), r.rules.MinDamage)

	out.Downed = def.ApplyDamage(out.Damage)
	if sink != nil {
		sink(Damaged{
			Attacker: atk.ref, Defender: def.ref,
			DamageRoll: out.DamageRoll, Amount: out.Damage, Remaining: def.health,
		})
	}
	if !out.Downed {
		return out
	}

	if sink != nil {
		sink(Downed{Combatant: def.ref, Knockdowns: def.knockdowns})
	}
	if AttemptRecovery(def, r.src) {
		out.Recovered = true
		if sink != nil {
			sink(Recovered{Combatant: def.ref, Health: def.health, Knockdowns: def.knockdowns})
		}
		return out
	}
	out.Eliminated = true
	if sink != nil {
		sink(Eliminated{Combatant: def.ref})
	}
	return out
}
