package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
)

// Narrator renders events as one line of text each.
type Narrator struct {
	w     io.Writer
	color bool
	err   error
}

// NewNarrator creates a Narrator writing to w, with ANSI colors when color is true.
func NewNarrator(w io.Writer, color bool) *Narrator {
	return &Narrator{w: w, color: color}
}

// Sink returns a combat.Sink writing each rendered event to the narrator's
// writer. After the first write error the sink stops writing; see Err.
func (n *Narrator) Sink() combat.Sink {
	return func(e combat.Event) {
		if n.err != nil {
			return
		}
		line := RenderEvent(e)
		if line == "" {
			return
		}
		if !n.color {
			line = StripANSI(line)
		}
		_, n.err = io.WriteString(n.w, line+"\n")
	}
}

// Err returns the first write error, if any.
func (n *Narrator) Err() error { return n.err }

// RenderEvent formats e as colored text. RoundStarted renders as a dim turn marker.
func RenderEvent(e combat.Event) string {
	switch ev := e.(type) {
	case combat.RoundStarted:
		return Colorf(Dim, "-- turn %d --", ev.Turn)
	case combat.AttackDeclared:
		return fmt.Sprintf("%s attacks %s", name(ev.Attacker), name(ev.Defender))
	case combat.Miss:
		return Colorf(White, "  %s misses (roll %d + %d vs dodge %d)", ev.Attacker.Name, ev.Roll, ev.Accuracy, ev.Dodge)
	case combat.HitResolved:
		if ev.Critical {
			return Colorf(BrightYellow, "  CRITICAL HIT! (roll %d + %d vs dodge %d)", ev.Roll, ev.Accuracy, ev.Dodge)
		}
		return Colorf(Yellow, "  hit (roll %d + %d vs dodge %d)", ev.Roll, ev.Accuracy, ev.Dodge)
	case combat.Damaged:
		return Colorf(Red, "  %s takes %d damage, %d health left", ev.Defender.Name, ev.Amount, ev.Remaining)
	case combat.Downed:
		return Colorf(BrightRed, "  %s is knocked down (%s)", ev.Combatant.Name, ordinal(ev.Knockdowns))
	case combat.Recovered:
		return Colorf(BrightGreen, "  %s gets back up with %d health!", ev.Combatant.Name, ev.Health)
	case combat.Eliminated:
		return Colorf(Magenta, "  %s is eliminated", ev.Combatant.Name)
	case combat.MatchOver:
		if ev.Draw {
			return Colorf(Bold+BrightWhite, "Draw after %d turns", ev.Turns)
		}
		return Colorf(Bold+BrightWhite, "Team %s wins after %d turns", ev.Winner, ev.Turns)
	}
	return ""
}

// RenderResult summarises a finished match between the named teams.
func RenderResult(res combat.Result, teamA, teamB string) string {
	var b strings.Builder
	names := [2]string{teamA, teamB}
	if res.Draw {
		b.WriteString(Colorf(BrightCyan, "Draw: %s and %s", teamA, teamB))
	} else {
		b.WriteString(Colorf(BrightCyan, "Winner: %s", names[res.Winner]))
		if res.Representative != nil {
			b.WriteString(Colorf(Cyan, " (%s)", res.Representative.Name()))
		}
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  turns %d, remaining health %s %d / %s %d\n",
		res.Turns, teamA, res.Health[combat.TeamA], teamB, res.Health[combat.TeamB]))
	return b.String()
}

func name(r combat.Ref) string {
	color := BrightCyan
	if r.Team == combat.TeamB {
		color = BrightYellow
	}
	return Colorize(color, r.Name)
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
