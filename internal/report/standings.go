package report

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/fightsim/internal/sim"
)

// RenderStandings formats a run report as a ranked table. At most limit rows
// are rendered; limit <= 0 renders all of them.
func RenderStandings(rep *sim.Report, limit int) string {
	var b strings.Builder
	b.WriteString(Colorf(BrightYellow, "Run %s", rep.RunID))
	b.WriteString(fmt.Sprintf("  seed %d, %d matches, %d repeats per pairing\n", rep.Seed, rep.Matches, rep.Repeats))
	b.WriteString(Colorize(Cyan, fmt.Sprintf("%4s  %-24s %6s %6s %6s %7s", "#", "fighter", "wins", "losses", "draws", "win%")))
	b.WriteString("\n")

	rows := rep.Standings
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for i, s := range rows {
		line := fmt.Sprintf("%4d  %-24s %6d %6d %6d %6.1f%%", i+1, s.Name, s.Wins, s.Losses, s.Draws, 100*s.WinRate())
		if i == 0 {
			line = Colorize(BrightGreen, line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if hidden := len(rep.Standings) - len(rows); hidden > 0 {
		b.WriteString(Colorf(Dim, "  ... %d more", hidden))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTeamTally formats the outcome of a team run.
func RenderTeamTally(t sim.TeamTally, teamA, teamB string) string {
	return fmt.Sprintf("%s %d, %s %d, draws %d over %d matches (mean %.1f turns)\n",
		Colorize(BrightCyan, teamA), t.WinsA, Colorize(BrightYellow, teamB), t.WinsB, t.Draws, t.Matches, t.MeanTurns())
}
