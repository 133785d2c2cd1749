package permission

import (
	"fmt"
	"strings"

	"claudeless/pkg/scenario"
)

// Decision classifies a permission check outcome.
type Decision int

const (
	// Allowed means the tool call may proceed.
	Allowed Decision = iota
	// Denied means the tool call is rejected.
	Denied
	// NeedsPrompt means the user or a hook must decide.
	NeedsPrompt
)

// Result is the outcome of a permission check.
type Result struct {
	Decision Decision
	// Reason is set for Denied results.
	Reason string
	// Tool and Action identify what needs prompting.
	Tool   string
	Action string
}

// Checker combines the permission mode, bypass flags, settings
// patterns, and scenario tool overrides.
//
// Priority, highest first: bypass flags, scenario overrides, settings
// deny, settings allow, then the mode.
type Checker struct {
	mode      Mode
	bypass    Bypass
	patterns  Patterns
	overrides map[string]scenario.ToolConfig
}

// NewChecker builds a checker from mode and bypass flags.
func NewChecker(mode Mode, bypass Bypass) *Checker {
	return &Checker{mode: mode, bypass: bypass}
}

// WithPatterns attaches settings allow/deny patterns.
func (c *Checker) WithPatterns(p Patterns) *Checker {
	c.patterns = p
	return c
}

// WithScenarioOverrides attaches per-tool scenario overrides.
func (c *Checker) WithScenarioOverrides(overrides map[string]scenario.ToolConfig) *Checker {
	c.overrides = overrides
	return c
}

// Check evaluates a tool call without argument pattern matching.
func (c *Checker) Check(toolName, action string) Result {
	return c.CheckWithInput(toolName, action, "", false)
}

// CheckWithInput evaluates a tool call, matching the input string
// against settings patterns when provided.
func (c *Checker) CheckWithInput(toolName, action, input string, hasInput bool) Result {
	if c.bypass.Active() {
		return Result{Decision: Allowed}
	}

	if cfg, ok := c.overrides[toolName]; ok {
		if cfg.AutoApprove {
			return Result{Decision: Allowed}
		}
		if cfg.Error != nil {
			return Result{Decision: Denied, Reason: *cfg.Error}
		}
	}

	if c.patterns.Denied(toolName, input, hasInput) {
		return Result{Decision: Denied, Reason: fmt.Sprintf("Tool %s is denied by settings", toolName)}
	}
	if c.patterns.Allowed(toolName, input, hasInput) {
		return Result{Decision: Allowed}
	}

	return c.checkByMode(toolName, action)
}

func (c *Checker) checkByMode(toolName, action string) Result {
	switch {
	case c.mode == ModeBypass:
		return Result{Decision: Allowed}
	case c.mode == ModeAcceptEdits && isEditAction(action):
		return Result{Decision: Allowed}
	case c.mode == ModeDontAsk:
		return Result{Decision: Denied, Reason: "Permission denied in DontAsk mode"}
	case c.mode == ModePlan:
		return Result{Decision: Denied, Reason: "Execution not allowed in Plan mode"}
	}
	return Result{Decision: NeedsPrompt, Tool: toolName, Action: action}
}

// Bypassed reports whether every check will pass without prompting.
func (c *Checker) Bypassed() bool {
	return c.bypass.Active() || c.mode == ModeBypass
}

// Mode returns the checker's permission mode.
func (c *Checker) Mode() Mode { return c.mode }

// SettingsPatterns exposes the compiled patterns for inspection.
func (c *Checker) SettingsPatterns() Patterns { return c.patterns }

func isEditAction(action string) bool {
	switch strings.ToLower(action) {
	case "edit", "write", "create", "delete", "modify":
		return true
	}
	return false
}
