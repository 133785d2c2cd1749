package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "doctor")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "installation healthy")
}

func TestUpdateCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "update")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "up to date")
}

func TestSetupTokenCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "setup-token")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "no authentication token is needed")
}

func TestInstallCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "install", "latest", "--force")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "requested latest")
}

func TestMCPCommands(t *testing.T) {
	t.Run("bare mcp shows subcommands", func(t *testing.T) {
		code, out, _ := runCLI(t, "", "mcp")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "add")
		assert.Contains(t, out, "serve")
	})

	t.Run("serve declines", func(t *testing.T) {
		code, out, _ := runCLI(t, "", "mcp", "serve")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "does not implement the MCP server role")
	})

	t.Run("add points at mcp-config", func(t *testing.T) {
		code, out, _ := runCLI(t, "", "mcp", "add", "sentry", "https://mcp.sentry.dev/mcp")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "--mcp-config")
	})
}

func TestPluginMarketplaceCommands(t *testing.T) {
	code, out, _ := runCLI(t, "", "plugin", "marketplace", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No marketplaces configured")

	code, out, _ = runCLI(t, "", "plugin", "marketplace", "remove", "acme")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No marketplace named acme")
}
