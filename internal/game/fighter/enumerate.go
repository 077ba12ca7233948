package fighter

import (
	"fmt"

	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// Enumerate returns every legal fighter under pb whose stat points are all
// multiples of step, in lexicographic order of (health, attack, ..., conviction).
//
// Precondition: step >= 1.
// Postcondition: Every returned fighter passes New with pb; names are unique.
func Enumerate(pb ruleset.PointBuy, step int) ([]*Fighter, error) {
	if step < 1 {
		return nil, fmt.Errorf("enumerate: step must be >= 1, got %d", step)
	}
	if pb.Total%step != 0 {
		return nil, fmt.Errorf("enumerate: total %d is not a multiple of step %d", pb.Total, step)
	}

	lo := (pb.Min + step - 1) / step
	hi := pb.Max / step
	units := pb.Total / step

	var out []*Fighter
	var points stats.Points
	var fill func(i, remaining int)
	fill = func(i, remaining int) {
		slots := stats.Count - i - 1
		if slots == 0 {
			if remaining < lo || remaining > hi {
				return
			}
			points[i] = remaining * step
			out = append(out, &Fighter{name: EnumeratedName(points), points: points})
			return
		}
		for u := lo; u <= hi && u <= remaining; u++ {
			rest := remaining - u
			if rest < slots*lo || rest > slots*hi {
				continue
			}
			points[i] = u * step
			fill(i+1, rest)
		}
	}
	fill(0, units)
	return out, nil
}

// EnumeratedName builds a compact deterministic name such as
// "h40a10d0s20y30x0c0" (y is accuracy, x is dodge).
func EnumeratedName(p stats.Points) string {
	return fmt.Sprintf("h%da%dd%ds%dy%dx%dc%d",
		p[stats.Health], p[stats.Attack], p[stats.Defense], p[stats.Speed],
		p[stats.Accuracy], p[stats.Dodge], p[stats.Conviction])
}
