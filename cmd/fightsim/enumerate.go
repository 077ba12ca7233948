package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fightsim/internal/game/fighter"
)

var (
	enumerateStep int
	enumerateOut  string
)

var enumerateCmd = &cobra.Command{
	Use:   "enumerate",
	Short: "Write every legal fighter on a point grid as a roster",
	RunE:  runEnumerate,
}

func init() {
	enumerateCmd.Flags().IntVar(&enumerateStep, "step", 0, "point step (default: configured)")
	enumerateCmd.Flags().StringVar(&enumerateOut, "out", "", "output roster file; empty writes to stdout")
}

func runEnumerate(cmd *cobra.Command, _ []string) error {
	step := cfg.Simulation.EnumerateStep
	if enumerateStep > 0 {
		step = enumerateStep
	}
	fighters, err := fighter.Enumerate(rules.PointBuy, step)
	if err != nil {
		return err
	}
	roster := &fighter.Roster{Name: fmt.Sprintf("enumerated-step-%d", step), Fighters: fighters}

	if enumerateOut == "" {
		data, err := fighter.MarshalRoster(roster)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fighter.SaveRoster(enumerateOut, roster); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d fighters to %s\n", len(fighters), enumerateOut)
	return nil
}
