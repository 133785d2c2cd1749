package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"claudeless/internal/appversion"
)

// newUpdateCmd creates the "claude update" subcommand.
func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check for updates and install if available",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "claudeless %s is up to date\n", appversion.String())
			return nil
		},
	}
}
