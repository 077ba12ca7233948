// Package fighter defines the immutable Fighter identity and the collaborators
// around it: point-buy validation, YAML roster persistence, and enumeration of
// every legal fighter for batch simulation.
package fighter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

var (
	// ErrEmptyName is returned when a fighter has no name.
	ErrEmptyName = errors.New("fighter name must not be empty")
	// ErrPointTotal is returned when invested points do not sum to the budget.
	ErrPointTotal = errors.New("fighter point total does not match the budget")
	// ErrStatOutOfRange is returned when a single stat is outside the legal range.
	ErrStatOutOfRange = errors.New("fighter stat out of range")
)

// StatError reports one stat outside the per-stat legal range.
type StatError struct {
	Stat  stats.Stat
	Value int
	Min   int
	Max   int
}

func (e *StatError) Error() string {
	return fmt.Sprintf("%s = %d, must be %d-%d", e.Stat, e.Value, e.Min, e.Max)
}

// Unwrap lets errors.Is match ErrStatOutOfRange.
func (e *StatError) Unwrap() error { return ErrStatOutOfRange }

// Fighter is a named, immutable distribution of invested stat points.
// A Fighter is safe to share read-only across concurrent matches.
type Fighter struct {
	name   string
	points stats.Points
}

// New validates points against pb and returns a Fighter.
//
// Postcondition: Returns a Fighter whose points sum to pb.Total with every stat
// in [pb.Min, pb.Max], or an error wrapping ErrEmptyName, ErrStatOutOfRange,
// or ErrPointTotal.
func New(name string, points stats.Points, pb ruleset.PointBuy) (*Fighter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	for _, s := range stats.All {
		v := points[s]
		if v < pb.Min || v > pb.Max {
			return nil, fmt.Errorf("fighter %q: %w", name, &StatError{Stat: s, Value: v, Min: pb.Min, Max: pb.Max})
		}
	}
	if total := points.Total(); total != pb.Total {
		return nil, fmt.Errorf("fighter %q: %w: got %d, want %d", name, ErrPointTotal, total, pb.Total)
	}
	return &Fighter{name: name, points: points}, nil
}

// Unchecked returns a Fighter without point-buy validation. It is meant for
// scripted scenarios and tests that deliberately step outside the budget.
func Unchecked(name string, points stats.Points) *Fighter {
	return &Fighter{name: name, points: points}
}

// Name returns the fighter's name.
func (f *Fighter) Name() string { return f.name }

// Points returns the raw points invested in s.
func (f *Fighter) Points(s stats.Stat) int { return f.points[s] }

// AllPoints returns a copy of every invested value.
func (f *Fighter) AllPoints() stats.Points { return f.points }

// Total returns the sum of invested points.
func (f *Fighter) Total() int { return f.points.Total() }

// String renders the fighter as "name [health=.. attack=.. ...]".
func (f *Fighter) String() string {
	var b strings.Builder
	b.WriteString(f.name)
	b.WriteString(" [")
	for i, s := range stats.All {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%d", s, f.points[s])
	}
	b.WriteByte(']')
	return b.String()
}
