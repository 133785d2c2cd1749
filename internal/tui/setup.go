package tui

import (
	"fmt"
	"strings"
)

// setupStep tracks which page of the first-run wizard is showing.
type setupStep int

const (
	stepThemeSelection setupStep = iota
	stepLoginMethod
)

const themeChoiceCount = 6
const loginChoiceCount = 3

var themeLabels = []string{
	"Dark mode",
	"Light mode",
	"Dark mode (colorblind-friendly)",
	"Light mode (colorblind-friendly)",
	"Dark mode (ANSI colors only)",
	"Light mode (ANSI colors only)",
}

var loginLabels = []string{
	"Claude account with subscription · Pro, Max, Team, or Enterprise",
	"Anthropic Console account · API usage billing",
	"3rd-party platform · Amazon Bedrock, Microsoft Foundry, or Vertex AI",
}

// syntaxThemeName returns the preview theme for a theme index.
func syntaxThemeName(themeIndex int) string {
	if themeIndex == 4 || themeIndex == 5 {
		return "ansi"
	}
	return "Monokai Extended"
}

var setupArt = []string{
	"     *                                       █████▓▓░",
	"                                 *         ███▓░     ░░",
	"            ░░░░░░                        ███▓░",
	"    ░░░   ░░░░░░░░░░                      ███▓░",
	"   ░░░░░░░░░░░░░░░░░░░    *                ██▓░░      ▓",
	"                                             ░▓▓███▓▓░",
	" *                                 ░░░░",
	"                                 ░░░░░░░░",
	"                               ░░░░░░░░░░░░░░░░",
	"                                                      *",
	"      ▗ ▗     ▖ ▖                       *",
	"                      *",
}

const setupSeparator = "…………………………………………………………………………………………………………………………………………………………"

const setupSplitSeparator = "…………………         ………………………………………………………………………………………………………………"

var syntaxPreview = []string{
	" 1  function greet() {",
	" 2 -  console.log(\"Hello, World!\");",
	" 2 +  console.log(\"Hello, Claude!\");",
	" 3  }",
}

// setupState holds the first-run wizard progress.
type setupState struct {
	step               setupStep
	selectedTheme      int
	selectedLogin      int
	syntaxHighlighting bool
	claudeVersion      string
}

func newSetupState(claudeVersion string) *setupState {
	return &setupState{
		step:               stepThemeSelection,
		syntaxHighlighting: true,
		claudeVersion:      claudeVersion,
	}
}

func (s *setupState) ThemeUp() {
	if s.selectedTheme == 0 {
		s.selectedTheme = themeChoiceCount - 1
	} else {
		s.selectedTheme--
	}
}

func (s *setupState) ThemeDown() {
	s.selectedTheme = (s.selectedTheme + 1) % themeChoiceCount
}

func (s *setupState) LoginUp() {
	if s.selectedLogin == 0 {
		s.selectedLogin = loginChoiceCount - 1
	} else {
		s.selectedLogin--
	}
}

func (s *setupState) LoginDown() {
	s.selectedLogin = (s.selectedLogin + 1) % loginChoiceCount
}

func (s *setupState) AdvanceToLogin() {
	s.step = stepLoginMethod
}

func renderSetupWizard(s *setupState, width int) string {
	lines := []string{
		fmt.Sprintf("Welcome to Claude Code v%s", s.claudeVersion),
		setupSeparator,
		"",
	}
	lines = append(lines, setupArt...)
	lines = append(lines, setupSplitSeparator)

	switch s.step {
	case stepThemeSelection:
		lines = append(lines,
			"",
			" Let's get started.",
			"",
			" Choose the text style that looks best with your terminal",
			" To change this later, run /theme",
			"",
		)
		themeList := selectionList{
			labels:     themeLabels,
			selected:   s.selectedTheme,
			current:    0,
			hasCurrent: true,
		}
		lines = append(lines, themeList.lines()...)
		lines = append(lines, "")

		divider := makeSectionDivider(width)
		lines = append(lines, divider)
		lines = append(lines, syntaxPreview...)
		lines = append(lines, divider)

		if s.syntaxHighlighting {
			lines = append(lines, fmt.Sprintf(" Syntax theme: %s (ctrl+t to disable)", syntaxThemeName(s.selectedTheme)))
		} else {
			lines = append(lines, " Syntax highlighting disabled (ctrl+t to enable)")
		}

	case stepLoginMethod:
		lines = append(lines,
			"",
			"",
			" Claude Code can be used with your Claude subscription or billed based on API",
			" usage through your Console account.",
			"",
			" Select login method:",
			"",
		)
		loginList := selectionList{
			labels:   loginLabels,
			selected: s.selectedLogin,
		}
		for _, line := range loginList.lines() {
			lines = append(lines, line, "")
		}
	}

	return strings.Join(lines, "\n")
}
