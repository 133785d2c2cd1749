package tui

import (
	"fmt"
	"os"
	"strings"

	"claudeless/internal/appversion"
	"claudeless/pkg/permission"
)

// productBranding resolves the header product name and version string.
// A scenario that pins claude_version impersonates the real product.
func (m *Model) productBranding() (string, string) {
	if m.cfg.ClaudeVersion != nil {
		return "Claude Code", "v" + *m.cfg.ClaudeVersion
	}
	return "Claudeless", appversion.String()
}

func (m *Model) provider() string {
	if m.cfg.Provider != nil {
		return *m.cfg.Provider
	}
	return "Claude Max"
}

// workingDirDisplay shortens the cwd under HOME to ~/ form.
func workingDirDisplay() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "~"
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if rest, ok := strings.CutPrefix(cwd, home); ok {
			return "~/" + strings.TrimPrefix(rest, "/")
		}
	}
	return cwd
}

// formatHeaderLines renders the three-line logo header.
func (m *Model) formatHeaderLines() (string, string, string) {
	modelName := modelDisplayName(m.status.model)
	workingDir := workingDirDisplay()
	productName, version := m.productBranding()
	modelStr := modelName + " · " + m.provider()

	if m.cfg.IsTTY {
		return styledLogoLine1(productName, version),
			styledLogoLine2(modelStr),
			styledLogoLine3(workingDir)
	}
	line1 := fmt.Sprintf(" ▐▛███▜▌   %s %s", productName, version)
	line2 := "▝▜█████▛▘  " + modelStr
	line3 := "  ▘▘ ▝▝    " + workingDir
	return line1, line2, line3
}

// statusBarOverride handles the states shared by the plain and styled
// status bars: exit hints, compaction, and the quiet streaming row.
func (m *Model) statusBarOverride(width int) (string, bool) {
	switch m.display.exitHint {
	case hintCtrlC:
		return "  Press Ctrl-C again to exit", true
	case hintCtrlD:
		return "  Press Ctrl-D again to exit", true
	case hintEscape:
		padWidth := width - 2
		if padWidth < 0 {
			padWidth = 0
		}
		return fmt.Sprintf("%*s", padWidth, "Esc to clear again"), true
	}

	if m.isCompacting {
		return "  esc to interrupt", true
	}

	// While streaming or once the user has typed, the hint row goes
	// quiet to match the real CLI.
	if m.mode == modeResponding || m.mode == modeThinking || m.input.buffer != "" {
		return "", true
	}
	return "", false
}

// formatStatusBar renders the bottom hint row without colors.
func (m *Model) formatStatusBar(width int) string {
	if text, ok := m.statusBarOverride(width); ok {
		return text
	}

	modeText := permissionModeStatusText(m.permissionMode)
	if m.permissionMode != permission.ModeDefault || m.thinkingEnabled {
		return modeText
	}
	return modeText + thinkingOffPadding(width, modeText) + "Thinking off"
}

// formatStatusBarStyled is the ANSI-colored status bar.
func (m *Model) formatStatusBarStyled(width int) string {
	if text, ok := m.statusBarOverride(width); ok {
		return text
	}

	status := styledPermissionStatus(m.permissionMode)
	if m.permissionMode != permission.ModeDefault || m.thinkingEnabled {
		return status
	}
	// Pad by the visual width, not the escaped string length.
	modeText := permissionModeStatusText(m.permissionMode)
	return status + thinkingOffPadding(width, modeText) + "Thinking off"
}

func thinkingOffPadding(width int, modeText string) string {
	padding := (width - 2) - len([]rune(modeText)) - len("Thinking off")
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat(" ", padding)
}

func styledPermissionStatus(mode permission.Mode) string {
	switch mode {
	case permission.ModePlan:
		return styledPlanModeStatus()
	case permission.ModeAcceptEdits:
		return styledAcceptEditsStatus()
	case permission.ModeBypass:
		return styledBypassPermissionsStatus()
	case permission.ModeDelegate:
		return styledStatusText("delegate mode (shift+tab to cycle)")
	case permission.ModeDontAsk:
		return styledStatusText("don't ask mode (shift+tab to cycle)")
	default:
		return styledStatusText("? for shortcuts")
	}
}

func permissionModeStatusText(mode permission.Mode) string {
	switch mode {
	case permission.ModePlan:
		return "  ⏸ plan mode on (shift+tab to cycle)"
	case permission.ModeAcceptEdits:
		return "  ⏵⏵ accept edits on (shift+tab to cycle)"
	case permission.ModeBypass:
		return "  ⏵⏵ bypass permissions on (shift+tab to cycle)"
	case permission.ModeDelegate:
		return "  delegate mode (shift+tab to cycle)"
	case permission.ModeDontAsk:
		return "  don't ask mode (shift+tab to cycle)"
	default:
		return "  ? for shortcuts"
	}
}

// modelDisplayName maps a model ID or alias to its display form.
func modelDisplayName(model string) string {
	lower := strings.ToLower(model)
	switch lower {
	case "haiku", "claude-haiku":
		return "Haiku 4.5"
	case "sonnet", "claude-sonnet":
		return "Sonnet 4.5"
	case "opus", "claude-opus":
		return "Opus 4.5"
	}

	var baseName string
	switch {
	case strings.Contains(lower, "haiku"):
		baseName = "Haiku"
	case strings.Contains(lower, "opus"):
		baseName = "Opus"
	case strings.Contains(lower, "sonnet"):
		baseName = "Sonnet"
	default:
		return model
	}

	if version := extractModelVersion(model); version != "" {
		return baseName + " " + version
	}
	return baseName
}

// extractModelVersion pulls "4.5" out of "claude-opus-4-5-20251101" and
// "4" out of "claude-sonnet-4-20250514".
func extractModelVersion(model string) string {
	parts := strings.Split(model, "-")
	if len(parts) < 4 || parts[0] != "claude" {
		return ""
	}
	major := parts[2]
	if !isDigits(major) {
		return ""
	}
	minor := parts[3]
	if isDigits(minor) && len(minor) <= 2 {
		return major + "." + minor
	}
	return major
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// formatWelcomeBackBox renders the boxed returning-user banner, one
// string per row.
func (m *Model) formatWelcomeBackBox(width int) []string {
	totalInner := width - 2
	if totalInner < 0 {
		totalInner = 0
	}
	const rightPanelWidth = 25
	const dividerWidth = 1
	leftPanelWidth := totalInner - dividerWidth - rightPanelWidth
	if leftPanelWidth < 0 {
		leftPanelWidth = 0
	}

	modelStr := modelDisplayName(m.status.model) + " · " + m.provider()
	productName, version := m.productBranding()

	workingDir, err := os.Getwd()
	if err != nil {
		workingDir = "~"
	}
	maxPathLen := leftPanelWidth - 2
	if maxPathLen < 0 {
		maxPathLen = 0
	}
	pathDisplay := truncatePath(workingDir, maxPathLen)

	panelSource := m.cfg.WelcomeBackRightPanel
	if panelSource == nil {
		panelSource = []string{
			"Tips for getting",
			"started",
			"Ask Claude to create a…",
			"---",
			"Recent activity",
			"No recent activity",
			"", "", "",
		}
	}
	if len(panelSource) > 9 {
		panelSource = panelSource[:9]
	}
	for len(panelSource) < 9 {
		panelSource = append(panelSource, "")
	}

	type entryKind int
	const (
		entryHeader entryKind = iota
		entryContent
		entrySeparator
		entryEmpty
	)
	type panelEntry struct {
		kind entryKind
		text string
	}

	entries := make([]panelEntry, 0, 9)
	nextIsHeader := true
	for _, s := range panelSource {
		switch {
		case s == "---":
			entries = append(entries, panelEntry{kind: entrySeparator})
			nextIsHeader = true
		case s == "":
			entries = append(entries, panelEntry{kind: entryEmpty})
		case nextIsHeader:
			entries = append(entries, panelEntry{kind: entryHeader, text: s})
			nextIsHeader = false
		default:
			entries = append(entries, panelEntry{kind: entryContent, text: s})
		}
	}

	rightRows := make([]string, 0, 9)
	for _, e := range entries {
		switch e.kind {
		case entryHeader, entryContent:
			rightRows = append(rightRows, padLeftAligned(e.text, rightPanelWidth))
		case entrySeparator:
			dashes := rightPanelWidth - 2
			if dashes < 0 {
				dashes = 0
			}
			rightRows = append(rightRows, padLeftAligned(strings.Repeat("─", dashes), rightPanelWidth))
		default:
			rightRows = append(rightRows, strings.Repeat(" ", rightPanelWidth))
		}
	}

	const logoTop = "▗ ▗   ▖ ▖"
	const logoBottom = "▘▘ ▝▝"

	leftRows := []string{
		strings.Repeat(" ", leftPanelWidth),
		centerText("Welcome back!", leftPanelWidth),
		strings.Repeat(" ", leftPanelWidth),
		centerText(logoTop, leftPanelWidth),
		strings.Repeat(" ", leftPanelWidth),
		centerText(logoBottom, leftPanelWidth),
		strings.Repeat(" ", leftPanelWidth),
		centerText(modelStr, leftPanelWidth),
		padLeftAligned(pathDisplay, leftPanelWidth),
	}

	var lines []string

	titlePart := fmt.Sprintf("─── %s ", productName)
	versionFill := totalInner - len([]rune(titlePart)) - len(version) - 1
	if versionFill < 0 {
		versionFill = 0
	}

	if m.cfg.IsTTY {
		fgOrange := fg(logoOrange)
		fgGray := fg(textGray)
		bgOrange := bg(logoOrange)
		fgBlackBgOrange := fmt.Sprintf("\x1b[38;2;%d;%d;%d;48;2;%d;%d;%dm",
			logoBlack.R, logoBlack.G, logoBlack.B, logoOrange.R, logoOrange.G, logoOrange.B)
		dimFgOrange := fmt.Sprintf("\x1b[2;38;2;%d;%d;%dm", logoOrange.R, logoOrange.G, logoOrange.B)

		lines = append(lines, fmt.Sprintf("%s%s╭%s%s%s%s%s%s %s╮",
			ansiReset, fgOrange, titlePart, ansiReset, fgGray, version, ansiReset, fgOrange,
			strings.Repeat("─", versionFill)))

		for row, e := range entries {
			var b strings.Builder
			b.WriteString(ansiReset + fgOrange + "│" + ansiReset)

			switch row {
			case 1:
				padLeft, padRight := splitPad(leftPanelWidth - len("Welcome back!"))
				b.WriteString(strings.Repeat(" ", padLeft))
				b.WriteString(ansiReset + ansiBold + "Welcome back!" + ansiReset)
				b.WriteString(strings.Repeat(" ", padRight))
			case 3:
				padLeft, padRight := splitPad(leftPanelWidth - 9)
				b.WriteString(strings.Repeat(" ", padLeft))
				b.WriteString(ansiReset + fgOrange + "▗" + ansiReset + fgBlackBgOrange + " ▗   ▖ " + ansiReset + fgOrange + "▖" + ansiReset)
				b.WriteString(strings.Repeat(" ", padRight))
			case 4:
				padLeft, padRight := splitPad(leftPanelWidth - 7)
				b.WriteString(strings.Repeat(" ", padLeft))
				b.WriteString(ansiReset + bgOrange + "       " + ansiReset)
				b.WriteString(strings.Repeat(" ", padRight))
			case 5:
				padLeft, padRight := splitPad(leftPanelWidth - 5)
				b.WriteString(strings.Repeat(" ", padLeft))
				b.WriteString(ansiReset + fgOrange + logoBottom + ansiReset)
				b.WriteString(strings.Repeat(" ", padRight))
			case 7:
				padLeft, padRight := splitPad(leftPanelWidth - len([]rune(modelStr)))
				b.WriteString(strings.Repeat(" ", padLeft))
				b.WriteString(ansiReset + fgGray + modelStr + ansiReset)
				b.WriteString(strings.Repeat(" ", padRight))
			case 8:
				pad := leftPanelWidth - len([]rune(pathDisplay)) - 2
				if pad < 0 {
					pad = 0
				}
				b.WriteString(" " + ansiReset + fgGray + pathDisplay + ansiReset + " " + strings.Repeat(" ", pad))
			default:
				b.WriteString(strings.Repeat(" ", leftPanelWidth))
			}

			b.WriteString(ansiReset + dimFgOrange + "│" + ansiReset)

			switch e.kind {
			case entryHeader:
				pad := rightPanelWidth - len([]rune(e.text)) - 1
				if pad < 0 {
					pad = 0
				}
				b.WriteString(" " + ansiReset + "\x1b[1;38;2;215;119;87m" + e.text + ansiReset + strings.Repeat(" ", pad))
			case entryContent:
				pad := rightPanelWidth - len([]rune(e.text)) - 1
				if pad < 0 {
					pad = 0
				}
				b.WriteString(" " + ansiReset + fgGray + e.text + ansiReset + strings.Repeat(" ", pad))
			case entrySeparator:
				dashes := rightPanelWidth - 2
				if dashes < 0 {
					dashes = 0
				}
				b.WriteString(" " + ansiReset + dimFgOrange + strings.Repeat("─", dashes) + ansiReset + " ")
			default:
				b.WriteString(strings.Repeat(" ", rightPanelWidth))
			}

			// No trailing reset after the right border: the terminal
			// layer appends erase-to-EOL which would split it and leak
			// a stray 'm'.
			b.WriteString(ansiReset + fgOrange + "│")
			lines = append(lines, b.String())
		}

		lines = append(lines, fmt.Sprintf("%s%s╰%s╯", ansiReset, fgOrange, strings.Repeat("─", totalInner)))
		return lines
	}

	lines = append(lines, fmt.Sprintf("╭%s%s %s╮", titlePart, version, strings.Repeat("─", versionFill)))
	for row := 0; row < 9; row++ {
		lines = append(lines, fmt.Sprintf("│%s│%s│", leftRows[row], rightRows[row]))
	}
	lines = append(lines, fmt.Sprintf("╰%s╯", strings.Repeat("─", totalInner)))
	return lines
}

// centerText centers text in the given width, truncating when needed.
func centerText(text string, width int) string {
	runes := []rune(text)
	if len(runes) >= width {
		return string(runes[:width])
	}
	padLeft, padRight := splitPad(width - len(runes))
	return strings.Repeat(" ", padLeft) + text + strings.Repeat(" ", padRight)
}

// padLeftAligned adds a 1-char left pad and fills to the width.
func padLeftAligned(text string, width int) string {
	content := " " + text
	runes := []rune(content)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return content + strings.Repeat(" ", width-len(runes))
}

// splitPad splits padding with the extra space on the left.
func splitPad(total int) (int, int) {
	if total < 0 {
		return 0, 0
	}
	right := total / 2
	return total - right, right
}

// truncatePath cuts a long path from the left at a directory boundary,
// marking the cut with "/…".
func truncatePath(path string, maxLen int) string {
	runes := []rune(path)
	if len(runes) <= maxLen {
		return path
	}
	targetRemaining := maxLen - 2
	if targetRemaining < 0 {
		targetRemaining = 0
	}
	start := len(runes) - targetRemaining
	if start < 0 {
		start = 0
	}
	cut := start
	for cut < len(runes) && runes[cut] != '/' {
		cut++
	}
	return "/…" + string(runes[cut:])
}
