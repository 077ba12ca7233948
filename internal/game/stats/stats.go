// Package stats defines the closed set of combat attributes, the affine
// transforms mapping invested points to effective values, and the saturating
// arithmetic every stat and health computation goes through.
package stats

import (
	"fmt"
	"math"
	"strings"
)

// Stat is one combat attribute.
type Stat int

const (
	Health Stat = iota
	Attack
	Defense
	Speed
	Accuracy
	Dodge
	Conviction
)

// Count is the number of stats.
const Count = 7

// All lists every stat in declaration order.
var All = [Count]Stat{Health, Attack, Defense, Speed, Accuracy, Dodge, Conviction}

var names = [Count]string{"health", "attack", "defense", "speed", "accuracy", "dodge", "conviction"}

// String returns the lower-case stat name.
func (s Stat) String() string {
	if s < 0 || int(s) >= Count {
		return "unknown"
	}
	return names[s]
}

// Parse resolves a stat by name, case-insensitively.
//
// Postcondition: Returns the matching Stat, or an error naming the input.
func Parse(name string) (Stat, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range names {
		if candidate == n {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("stats: unknown stat %q", name)
}

// Points holds invested points indexed by Stat.
type Points [Count]int

// Get returns the points invested in s.
func (p Points) Get(s Stat) int { return p[s] }

// Total returns the sum of all invested points.
func (p Points) Total() int {
	total := 0
	for _, v := range p {
		total += v
	}
	return total
}

// Modifiers is an additive overlay of deltas indexed by Stat.
type Modifiers [Count]int

// Add accumulates delta into the overlay for s, saturating at the int range.
func (m *Modifiers) Add(s Stat, delta int) {
	m[s] = SatAdd(m[s], delta)
}

// Transform maps invested points to an effective value: points*Scale + Offset.
//
// Invariant: Scale >= 0, so the transform is monotonic non-decreasing.
type Transform struct {
	Scale  int
	Offset int
}

// Apply returns the effective value for points, floored at zero.
//
// Postcondition: Returns >= 0.
func (t Transform) Apply(points int) int {
	return ApplyModifier(SatMul(points, t.Scale), t.Offset)
}

// Table holds one Transform per stat.
type Table [Count]Transform

// IdentityTable returns a Table in which every effective value equals its points.
func IdentityTable() Table {
	var t Table
	for i := range t {
		t[i] = Transform{Scale: 1}
	}
	return t
}

// EffectiveValue applies the transform configured for s to points.
//
// Postcondition: Returns >= 0. Pure and total.
func (t Table) EffectiveValue(s Stat, points int) int {
	return t[s].Apply(points)
}

// ApplyModifier adds delta to base, clamping the result to [0, MaxInt].
//
// Postcondition: Returns >= 0; never overflows.
func ApplyModifier(base, delta int) int {
	v := SatAdd(base, delta)
	if v < 0 {
		return 0
	}
	return v
}

// SatSub returns a-b floored at zero.
//
// Precondition: a >= 0 and b >= 0.
func SatSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}

// SatAdd returns a+b clamped to the int range.
func SatAdd(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// SatMul returns a*b clamped to the int range.
func SatMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		if (a > 0) == (b > 0) {
			return math.MaxInt
		}
		return math.MinInt
	}
	return p
}
