package combat

import (
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// AttemptRecovery runs the Downed transition for c: once the knockdown count
// exceeds the recovery cap the combatant is eliminated without a roll;
// otherwise one percent roll is made against Recovery.Chance. On success the
// recovery bonus is granted; a reset that leaves zero health still counts as
// elimination.
//
// Precondition: c.State() == StateDowned.
// Postcondition: c.State() is StateActive (returns true) or StateEliminated (returns false).
func AttemptRecovery(c *Combatant, src dice.Source) bool {
	if c.State() != StateDowned {
		panic("combat: recovery attempted on a combatant that is not downed")
	}
	if c.knockdowns > c.rec.MaxRecoveries {
		c.eliminate()
		return false
	}
	chance := c.rec.Chance(c.knockdowns, c.Stat(stats.Conviction))
	if !dice.Percent(src, chance) {
		c.eliminate()
		return false
	}
	c.GrantRecoveryBonus()
	if !c.IsAlive() {
		c.eliminate()
		return false
	}
	return true
}
