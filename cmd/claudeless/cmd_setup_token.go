package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSetupTokenCmd creates the "claude setup-token" subcommand.
func newSetupTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-token",
		Short: "Set up a long-lived authentication token (requires Claude subscription)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "claudeless sessions run offline; no authentication token is needed")
			return nil
		},
	}
}
