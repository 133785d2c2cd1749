package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPluginCmd creates the "claude plugin" subcommand tree. Only the
// marketplace group is modeled; plugins never load in a simulated
// session.
func newPluginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Manage Claude Code plugins",
	}

	cmd.AddCommand(newPluginMarketplaceCmd())

	return cmd
}

func newPluginMarketplaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketplace",
		Short: "Manage Claude Code marketplaces",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <source>",
			Short: "Add a marketplace from a URL, path, or GitHub repo",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "claudeless does not persist marketplaces; ignored %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all configured marketplaces",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), "No marketplaces configured")
				return nil
			},
		},
		&cobra.Command{
			Use:     "remove <name>",
			Aliases: []string{"rm"},
			Short:   "Remove a configured marketplace",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "No marketplace named %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "update [name]",
			Short: "Update marketplace(s) from their source - updates all if no name specified",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), "No marketplaces to update")
				return nil
			},
		},
	)

	return cmd
}
