package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fightsim/internal/game/fighter"
)

const rosterDir = "../../content/rosters"

// execute runs the root command with args after restoring every flag to its
// default, since flag values live in package variables between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)

	t.Setenv("FIGHTSIM_LOGGING_LEVEL", "error")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidate_SampleRosters(t *testing.T) {
	out, err := execute(t, "validate", "--roster", rosterDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Ironclad: 2 fighters ok")
	assert.Contains(t, out, "Quicksilver: 2 fighters ok")
	assert.Contains(t, out, "Zealots: 2 fighters ok")
}

func TestValidate_RejectsOverBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`team: Cheaters
fighters:
  - {name: Greedy, health: 50, attack: 50, defense: 50, speed: 0, accuracy: 0, dodge: 0, conviction: 0}
`), 0o644))

	_, err := execute(t, "validate", "--roster", path)
	assert.ErrorIs(t, err, fighter.ErrPointTotal)
}

func TestEnumerate_WritesValidRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all.yaml")
	out, err := execute(t, "enumerate", "--step", "50", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 21 fighters")

	out, err = execute(t, "validate", "--roster", path)
	require.NoError(t, err)
	assert.Contains(t, out, "enumerated-step-50: 21 fighters ok")
}

func TestFight_DeterministicNarration(t *testing.T) {
	args := []string{"fight",
		"--roster", filepath.Join(rosterDir, "ironclad.yaml"),
		"--vs", filepath.Join(rosterDir, "quicksilver.yaml"),
		"--seed", "7", "--color=false",
	}
	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "seed 7")
	assert.Contains(t, first, "-- turn 1 --")
	assert.Contains(t, first, "Winner: ")
	assert.NotContains(t, first, "\033[")
}

func TestFight_LogFileInDirectory(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "fight",
		"--roster", filepath.Join(rosterDir, "ironclad.yaml"),
		"--vs", filepath.Join(rosterDir, "quicksilver.yaml"),
		"--seed", "7", "--color=false", "--log-file", dir,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "IroncladVsQuicksilver.txt"))
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestFight_LogFileQuietStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.txt")
	out, err := execute(t, "fight",
		"--roster", filepath.Join(rosterDir, "ironclad.yaml"),
		"--vs", filepath.Join(rosterDir, "quicksilver.yaml"),
		"--seed", "7", "--quiet", "--log-file", path,
	)
	require.NoError(t, err)
	assert.NotContains(t, out, "-- turn 1 --")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- turn 1 --")
	assert.Contains(t, string(data), "Winner: ")
	assert.NotContains(t, string(data), "\033[")
}

func TestMatchLogPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "RedTeamVsBlue.txt"), matchLogPath(dir, "Red Team", "Blue"))
	file := filepath.Join(dir, "x.txt")
	assert.Equal(t, file, matchLogPath(file, "A", "B"))
}

func TestFight_Repeats(t *testing.T) {
	out, err := execute(t, "fight",
		"--roster", filepath.Join(rosterDir, "zealots.yaml"),
		"--vs", filepath.Join(rosterDir, "ironclad.yaml"),
		"--seed", "1", "--repeats", "5",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "over 5 matches")
}

func TestSim_RosterDirectory(t *testing.T) {
	out, err := execute(t, "sim", "--roster", rosterDir, "--repeats", "2", "--workers", "2", "--seed", "3", "--top", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "seed 3, 30 matches")
	for _, name := range []string{"Bulwark", "Anvil", "Flicker", "Needle", "Penitent", "Martyr"} {
		assert.Contains(t, out, name)
	}
}

func TestSim_RequiresSource(t *testing.T) {
	_, err := execute(t, "sim", "--seed", "1")
	assert.Error(t, err)
}
