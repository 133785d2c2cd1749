package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMCPCmd creates the "claude mcp" subcommand tree.
func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Configure and manage MCP servers",
	}

	cmd.AddCommand(newMCPAddCmd(), newMCPServeCmd())

	return cmd
}

func newMCPAddCmd() *cobra.Command {
	var transport string
	var env []string
	var header []string

	cmd := &cobra.Command{
		Use:   "add <name> <commandOrUrl> [args...]",
		Short: "Add an MCP server to Claude Code",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(),
				"claudeless does not persist MCP servers; pass %q via --mcp-config instead\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "Transport type (stdio, sse, http)")
	cmd.Flags().StringArrayVarP(&env, "env", "e", nil, "Set environment variables (e.g. -e KEY=value)")
	cmd.Flags().StringArrayVarP(&header, "header", "H", nil, "Set HTTP headers for SSE and HTTP transports")

	return cmd
}

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Claude Code MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "claudeless does not implement the MCP server role")
			return nil
		},
	}
}
