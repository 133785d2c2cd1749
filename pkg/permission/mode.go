// Package permission implements the tool permission model: modes,
// bypass validation, settings allow/deny patterns, and session grants.
package permission

import "fmt"

// Mode controls how tool execution permissions are handled.
type Mode string

// Wire values match settings.json / --permission-mode camelCase form.
const (
	ModeAcceptEdits Mode = "acceptEdits"
	ModeBypass      Mode = "bypassPermissions"
	ModeDefault     Mode = "default"
	ModeDelegate    Mode = "delegate"
	ModeDontAsk     Mode = "dontAsk"
	ModePlan        Mode = "plan"
)

// ParseMode accepts both the camelCase wire form and the kebab-case
// CLI flag form.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "acceptEdits", "accept-edits":
		return ModeAcceptEdits, nil
	case "bypassPermissions", "bypass-permissions":
		return ModeBypass, nil
	case "default", "":
		return ModeDefault, nil
	case "delegate":
		return ModeDelegate, nil
	case "dontAsk", "dont-ask":
		return ModeDontAsk, nil
	case "plan":
		return ModePlan, nil
	}
	return "", fmt.Errorf("invalid permission mode: %s", s)
}

// AllowsAll reports whether this mode skips all permission checks.
func (m Mode) AllowsAll() bool { return m == ModeBypass }

// DeniesAll reports whether this mode denies by default.
func (m Mode) DeniesAll() bool { return m == ModeDontAsk || m == ModePlan }

// AcceptsEdits reports whether edit operations are auto-approved.
func (m Mode) AcceptsEdits() bool { return m == ModeAcceptEdits || m == ModeBypass }

// CycleNext advances to the next mode for shift+tab. Bypass joins the
// cycle only when the dangerous-skip flag was passed.
//
// Without bypass: default, plan, acceptEdits, default.
// With bypass: default, plan, acceptEdits, bypassPermissions, default.
func (m Mode) CycleNext(allowBypass bool) Mode {
	switch m {
	case ModeDefault:
		return ModePlan
	case ModePlan:
		return ModeAcceptEdits
	case ModeAcceptEdits:
		if allowBypass {
			return ModeBypass
		}
		return ModeDefault
	default:
		return ModeDefault
	}
}

// DisplayName returns the status-bar spelling of the mode.
func (m Mode) DisplayName() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModePlan:
		return "plan"
	case ModeAcceptEdits:
		return "accept edits"
	case ModeBypass:
		return "bypass permissions"
	case ModeDelegate:
		return "delegate"
	case ModeDontAsk:
		return "dont ask"
	}
	return string(m)
}
