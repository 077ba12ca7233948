package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fightsim/internal/game/fighter"
)

var validateRoster string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check roster files against the configured point-buy",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateRoster, "roster", "", "roster file or directory")
	_ = validateCmd.MarkFlagRequired("roster")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	rosters, err := fighter.LoadRosters(validateRoster, rules.PointBuy)
	if err != nil {
		return err
	}
	for _, r := range rosters {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fighters ok\n", r.Name, len(r.Fighters))
	}
	return nil
}
