package combat_test

import (
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// fixedSrc is a deterministic Source returning val clamped into [0, n).
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int { return min(f.val, n-1) }

// scriptSrc returns its values in order, clamped into [0, n), then repeats the last.
type scriptSrc struct {
	vals []int
	pos  int
}

func (s *scriptSrc) Intn(n int) int {
	v := s.vals[min(s.pos, len(s.vals)-1)]
	s.pos++
	return min(v, n-1)
}

// recorder collects every event in order.
type recorder struct{ events []combat.Event }

func (r *recorder) sink(e combat.Event) { r.events = append(r.events, e) }

func points(health, attack, defense, speed, accuracy, dodge, conviction int) stats.Points {
	var p stats.Points
	p[stats.Health] = health
	p[stats.Attack] = attack
	p[stats.Defense] = defense
	p[stats.Speed] = speed
	p[stats.Accuracy] = accuracy
	p[stats.Dodge] = dodge
	p[stats.Conviction] = conviction
	return p
}

func brawler(name string) *fighter.Fighter {
	return fighter.Unchecked(name, points(40, 20, 5, 10, 10, 5, 10))
}

// drawTeam generates a non-empty team of unchecked fighters with positive health.
func drawTeam(rt *rapid.T, label string) []*fighter.Fighter {
	n := rapid.IntRange(1, 3).Draw(rt, label+"_size")
	team := make([]*fighter.Fighter, n)
	for i := range team {
		var p stats.Points
		for _, s := range stats.All {
			lo := 0
			if s == stats.Health {
				lo = 1
			}
			p[s] = rapid.IntRange(lo, 50).Draw(rt, label+"_"+s.String())
		}
		team[i] = fighter.Unchecked(label+string(rune('0'+i)), p)
	}
	return team
}
