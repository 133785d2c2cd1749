// Package tui implements the interactive terminal interface: a
// bubbletea model that drives the runtime's turn loop, renders the
// conversation, and hosts the dialog widgets.
//
// Colors and styled text match fixtures captured from Claude Code
// v2.1.12, so the escape sequences here are built by hand instead of
// going through a styling library.
package tui

import (
	"fmt"
	"strings"
)

// RGB is a 24-bit terminal color.
type RGB struct{ R, G, B uint8 }

var (
	// logoOrange colors the logo glyphs.
	logoOrange = RGB{215, 119, 87}
	// logoBlack fills the logo interior.
	logoBlack = RGB{0, 0, 0}
	// textGray colors version, model, path, and shortcuts text.
	textGray = RGB{153, 153, 153}
	// separatorGray colors the horizontal rules.
	separatorGray = RGB{136, 136, 136}
	// planTeal marks the plan-mode status line.
	planTeal = RGB{72, 150, 140}
	// acceptPurple marks the accept-edits status line.
	acceptPurple = RGB{175, 135, 255}
	// bypassPink marks the bypass-permissions status line and bash mode.
	bypassPink = RGB{255, 107, 128}
)

const (
	ansiFgReset  = "\x1b[39m"
	ansiBgReset  = "\x1b[49m"
	ansiReset    = "\x1b[0m"
	ansiBold     = "\x1b[1m"
	ansiDim      = "\x1b[2m"
	ansiInverse  = "\x1b[7m"
	ansiResetDim = "\x1b[0;2m"
)

func fg(c RGB) string { return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B) }
func bg(c RGB) string { return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", c.R, c.G, c.B) }

// styledLogoLine1 renders the top logo row with product name and version.
func styledLogoLine1(productName, version string) string {
	return fmt.Sprintf("%s ▐%s▛███▜%s▌%s   %s%s%s %s%s%s",
		fg(logoOrange), bg(logoBlack), ansiBgReset, ansiFgReset,
		ansiBold, productName, ansiReset,
		fg(textGray), version, ansiFgReset)
}

// styledLogoLine2 renders the middle logo row with the model string.
func styledLogoLine2(modelStr string) string {
	return fmt.Sprintf("%s▝▜%s█████%s▛▘%s  %s%s%s",
		fg(logoOrange), bg(logoBlack), ansiBgReset, ansiFgReset,
		fg(textGray), modelStr, ansiFgReset)
}

// styledLogoLine3 renders the bottom logo row with the working directory.
func styledLogoLine3(pathStr string) string {
	return fmt.Sprintf("%s  ▘▘ ▝▝  %s  %s%s%s",
		fg(logoOrange), ansiFgReset, fg(textGray), pathStr, ansiFgReset)
}

// styledSeparator renders the dim gray horizontal rule. It carries no
// trailing reset; the next line must start with one.
func styledSeparator(width int) string {
	return ansiDim + fg(separatorGray) + strings.Repeat("─", width)
}

// styledPlaceholder renders the idle prompt hint. The first character
// gets inverse video as a block cursor, the rest is dim.
func styledPlaceholder(text string) string {
	first, rest := splitFirstRune(text)
	return fmt.Sprintf("%s❯ %s%s%s%s%s", ansiReset, ansiInverse, first, ansiResetDim, rest, ansiReset)
}

// styledStatusText renders gray status-bar text after a leading reset.
func styledStatusText(text string) string {
	return fmt.Sprintf("%s  %s%s%s", ansiReset, fg(textGray), text, ansiFgReset)
}

func styledPlanModeStatus() string {
	return fmt.Sprintf("%s  %s⏸ plan mode on%s (shift+tab to cycle)%s",
		ansiReset, fg(planTeal), fg(textGray), ansiFgReset)
}

func styledAcceptEditsStatus() string {
	return fmt.Sprintf("%s  %s⏵⏵ accept edits on%s (shift+tab to cycle)%s",
		ansiReset, fg(acceptPurple), fg(textGray), ansiFgReset)
}

func styledBypassPermissionsStatus() string {
	return fmt.Sprintf("%s  %s⏵⏵ bypass permissions on%s (shift+tab to cycle)%s",
		ansiReset, fg(bypassPink), fg(textGray), ansiFgReset)
}

// styledBashSeparator renders the bash-mode pink horizontal rule,
// dim like the gray one and likewise without a trailing reset.
func styledBashSeparator(width int) string {
	return ansiDim + fg(bypassPink) + strings.Repeat("─", width)
}

// styledBashPlaceholder renders the empty bash-mode prompt hint.
func styledBashPlaceholder(text string) string {
	first, rest := splitFirstRune(text)
	return fmt.Sprintf("%s%s! %s%s%s%s%s%s",
		ansiReset, fg(bypassPink), ansiInverse, first, ansiResetDim, rest, ansiReset, ansiFgReset)
}

// styledBashStatus renders the bash-mode status bar line.
func styledBashStatus() string {
	return fmt.Sprintf("%s  %s! for bash mode%s", ansiReset, fg(bypassPink), ansiFgReset)
}

func splitFirstRune(s string) (string, string) {
	if s == "" {
		return "T", ""
	}
	r := []rune(s)
	return string(r[0]), string(r[1:])
}
