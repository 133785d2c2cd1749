package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newInstallCmd creates the "claude install" subcommand.
func newInstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install [target]",
		Short: "Install Claude Code native build. Use [target] to specify version (stable, latest, or specific version)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "stable"
			if len(args) > 0 {
				target = args[0]
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claudeless: nothing to install (requested %s)\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Force installation even if already installed")

	return cmd
}
