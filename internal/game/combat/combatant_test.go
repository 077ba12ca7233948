package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

func TestTeam_Opponent(t *testing.T) {
	assert.Equal(t, combat.TeamB, combat.TeamA.Opponent())
	assert.Equal(t, combat.TeamA, combat.TeamB.Opponent())
	assert.Equal(t, "A", combat.TeamA.String())
	assert.Equal(t, "B", combat.TeamB.String())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "active", combat.StateActive.String())
	assert.Equal(t, "downed", combat.StateDowned.String())
	assert.Equal(t, "eliminated", combat.StateEliminated.String())
	assert.Equal(t, "unknown", combat.State(9).String())

	// Event kinds share the words but are distinct types.
	assert.Equal(t, "downed", combat.Downed{}.Kind())
	assert.Equal(t, "eliminated", combat.Eliminated{}.Kind())
}

func TestNewCombatant_StatsMatchTransforms(t *testing.T) {
	rules := ruleset.Default()
	f := brawler("Alice")
	c := combat.NewCombatant(f, combat.TeamA, 0, rules)

	for _, s := range stats.All {
		assert.Equal(t, rules.Transforms.EffectiveValue(s, f.Points(s)), c.Stat(s), s.String())
	}
	assert.Equal(t, 450, c.Health(), "40 points * 10 + 50")
	assert.Equal(t, c.Stat(stats.Health), c.Health())
	assert.Equal(t, stats.Modifiers{}, c.Modifiers())
	assert.Equal(t, 0, c.Knockdowns())
	assert.Equal(t, 0, c.Readiness())
	assert.Equal(t, combat.StateActive, c.State())
	assert.Equal(t, combat.Ref{Team: combat.TeamA, Slot: 0, Name: "Alice"}, c.Ref())
}

func TestNewCombatant_Property_StatEqualsTransform(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rules := ruleset.Default()
		team := drawTeam(rt, "t")
		for slot, f := range team {
			c := combat.NewCombatant(f, combat.TeamB, slot, rules)
			for _, s := range stats.All {
				assert.Equal(rt, rules.Transforms[s].Apply(f.Points(s)), c.Stat(s))
			}
		}
	})
}

func TestCombatant_ApplyDamage(t *testing.T) {
	c := combat.NewCombatant(fighter.Unchecked("X", points(10, 0, 0, 0, 0, 0, 0)), combat.TeamA, 0, ruleset.Identity())
	assert.False(t, c.ApplyDamage(4))
	assert.Equal(t, 6, c.Health())
	assert.True(t, c.ApplyDamage(100))
	assert.Equal(t, 0, c.Health(), "health saturates at zero")
	assert.Equal(t, 1, c.Knockdowns())
	assert.Equal(t, combat.StateDowned, c.State())
	assert.False(t, c.IsAlive())

	assert.False(t, c.ApplyDamage(5), "a downed combatant cannot be knocked down again")
	assert.Equal(t, 1, c.Knockdowns())
}

func TestCombatant_Property_HealthNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(1, 500).Draw(rt, "hp")
		c := combat.NewCombatant(fighter.Unchecked("X", points(hp, 0, 0, 0, 0, 0, 0)), combat.TeamA, 0, ruleset.Identity())
		hits := rapid.SliceOf(rapid.IntRange(0, 300)).Draw(rt, "hits")
		for _, h := range hits {
			c.ApplyDamage(h)
			assert.GreaterOrEqual(rt, c.Health(), 0)
		}
		assert.LessOrEqual(rt, c.Knockdowns(), 1)
	})
}

func TestCombatant_GrantRecoveryBonus_Stacks(t *testing.T) {
	rules := ruleset.Identity()
	rules.Recovery.StackBonuses = true
	c := combat.NewCombatant(fighter.Unchecked("X", points(10, 5, 5, 5, 5, 5, 3)), combat.TeamA, 0, rules)

	c.GrantRecoveryBonus()
	assert.Equal(t, 5+12, c.Stat(stats.Attack))
	assert.Equal(t, 5+12, c.Stat(stats.Defense))
	assert.Equal(t, 5+12, c.Stat(stats.Speed))
	assert.Equal(t, 5+30, c.Stat(stats.Accuracy))
	assert.Equal(t, 5+30, c.Stat(stats.Dodge))
	assert.Equal(t, 3, c.Stat(stats.Conviction))
	assert.Equal(t, 30, c.Health())

	c.GrantRecoveryBonus()
	assert.Equal(t, 5+24, c.Stat(stats.Attack), "bonuses accumulate across recoveries")
	assert.Equal(t, 5+60, c.Stat(stats.Dodge))
	assert.Equal(t, 30, c.Health())
}

func TestCombatant_GrantRecoveryBonus_Replaces(t *testing.T) {
	rules := ruleset.Identity()
	rules.Recovery.StackBonuses = false
	c := combat.NewCombatant(fighter.Unchecked("X", points(10, 5, 5, 5, 5, 5, 3)), combat.TeamA, 0, rules)

	c.GrantRecoveryBonus()
	c.GrantRecoveryBonus()
	assert.Equal(t, 5+12, c.Stat(stats.Attack), "non-stacking keeps only the latest bonus")
	assert.Equal(t, 5+30, c.Stat(stats.Accuracy))
}

func TestArena_Layout(t *testing.T) {
	rules := ruleset.Default()
	a := combat.NewArena(rules,
		[]*fighter.Fighter{brawler("a0"), brawler("a1")},
		[]*fighter.Fighter{brawler("b0"), brawler("b1"), brawler("b2")},
	)
	require.Equal(t, 5, a.Len())
	lo, hi := a.Bounds(combat.TeamB)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 5, hi)
	assert.Equal(t, combat.TeamA, a.TeamOf(1))
	assert.Equal(t, combat.TeamB, a.TeamOf(2))
	assert.Equal(t, "b1", a.At(3).Name())
	assert.Equal(t, 1, a.At(3).Ref().Slot)
	assert.Equal(t, 3, a.Living(combat.TeamB))
	assert.Len(t, a.Members(combat.TeamA), 2)

	a.At(2).ApplyDamage(10000)
	assert.Equal(t, []int{3, 4}, a.LivingIndices(combat.TeamB, nil))
	assert.Equal(t, "b1", a.FirstLiving(combat.TeamB).Name())
}

func TestArena_EmptyTeamPanics(t *testing.T) {
	assert.Panics(t, func() {
		combat.NewArena(ruleset.Default(), nil, []*fighter.Fighter{brawler("b")})
	})
}
