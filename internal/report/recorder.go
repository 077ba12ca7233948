// Package report holds the consumers of combat events: an in-memory
// recorder, a structured zap logging sink, and an ANSI text narrator for
// matches and batch standings.
package report

import "github.com/cory-johannsen/fightsim/internal/game/combat"

// Recorder keeps every event it receives, in order.
//
// A Recorder is not safe for concurrent use; give each match its own.
type Recorder struct {
	events []combat.Event
}

// Sink returns a combat.Sink appending to r.
func (r *Recorder) Sink() combat.Sink {
	return func(e combat.Event) { r.events = append(r.events, e) }
}

// Events returns the recorded events. The slice is shared; do not modify it.
func (r *Recorder) Events() []combat.Event { return r.events }

// Count returns how many recorded events have the given kind.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.events {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// Reset discards every recorded event.
func (r *Recorder) Reset() { r.events = r.events[:0] }

// Multi fans each event out to every non-nil sink in order. It returns nil
// when no sink is non-nil, so the engine skips event construction entirely.
func Multi(sinks ...combat.Sink) combat.Sink {
	live := make([]combat.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(e combat.Event) {
		for _, s := range live {
			s(e)
		}
	}
}
