package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"claudeless/internal/appversion"
)

// newDoctorCmd creates the "claude doctor" subcommand.
func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the health of your Claude Code auto-updater",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "claudeless %s: installation healthy, no auto-updater in use\n", appversion.String())
			return nil
		},
	}
}
