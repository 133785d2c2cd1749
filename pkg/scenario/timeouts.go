package scenario

import (
	"os"
	"strconv"
)

// Environment variables that override timeout defaults.
const (
	EnvExitHintTimeoutMS = "CLAUDELESS_EXIT_HINT_TIMEOUT_MS"
	EnvCompactDelayMS    = "CLAUDELESS_COMPACT_DELAY_MS"
	EnvHookTimeoutMS     = "CLAUDELESS_HOOK_TIMEOUT_MS"
	EnvMCPTimeoutMS      = "CLAUDELESS_MCP_TIMEOUT_MS"
	EnvResponseDelayMS   = "CLAUDELESS_RESPONSE_DELAY_MS"
)

// Timeout defaults in milliseconds.
const (
	DefaultExitHintMS      int64 = 2000
	DefaultCompactDelayMS  int64 = 20
	DefaultHookTimeoutMS   int64 = 5000
	DefaultMCPTimeoutMS    int64 = 30000
	DefaultResponseDelayMS int64 = 20
)

// TimeoutConfig is the scenario file's timeouts section.
type TimeoutConfig struct {
	ExitHintMS      *int64 `json:"exit_hint_ms,omitempty"`
	CompactDelayMS  *int64 `json:"compact_delay_ms,omitempty"`
	HookTimeoutMS   *int64 `json:"hook_timeout_ms,omitempty"`
	MCPTimeoutMS    *int64 `json:"mcp_timeout_ms,omitempty"`
	ResponseDelayMS *int64 `json:"response_delay_ms,omitempty"`
}

// ResolvedTimeouts are the effective timeouts after applying precedence:
// scenario value, then environment override, then built-in default.
type ResolvedTimeouts struct {
	ExitHintMS      int64
	CompactDelayMS  int64
	HookTimeoutMS   int64
	MCPTimeoutMS    int64
	ResponseDelayMS int64
}

// DefaultTimeouts returns the built-in defaults with env overrides applied.
func DefaultTimeouts() ResolvedTimeouts { return ResolveTimeouts(nil) }

// ResolveTimeouts applies the precedence chain for each timeout.
func ResolveTimeouts(cfg *TimeoutConfig) ResolvedTimeouts {
	pick := func(scenario *int64, env string, def int64) int64 {
		if scenario != nil {
			return *scenario
		}
		if v, ok := envMillis(env); ok {
			return v
		}
		return def
	}
	var exitHint, compact, hook, mcp, resp *int64
	if cfg != nil {
		exitHint, compact = cfg.ExitHintMS, cfg.CompactDelayMS
		hook, mcp, resp = cfg.HookTimeoutMS, cfg.MCPTimeoutMS, cfg.ResponseDelayMS
	}
	return ResolvedTimeouts{
		ExitHintMS:      pick(exitHint, EnvExitHintTimeoutMS, DefaultExitHintMS),
		CompactDelayMS:  pick(compact, EnvCompactDelayMS, DefaultCompactDelayMS),
		HookTimeoutMS:   pick(hook, EnvHookTimeoutMS, DefaultHookTimeoutMS),
		MCPTimeoutMS:    pick(mcp, EnvMCPTimeoutMS, DefaultMCPTimeoutMS),
		ResponseDelayMS: pick(resp, EnvResponseDelayMS, DefaultResponseDelayMS),
	}
}

func envMillis(name string) (int64, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
