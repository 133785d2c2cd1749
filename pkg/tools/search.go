package tools

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"claudeless/pkg/scenario"
)

// globTool matches files against a glob pattern.
type globTool struct{}

func (globTool) execute(call *scenario.ToolCallSpec, toolUseID string, ctx *builtinContext) Result {
	input := call.InputMap()
	pattern, ok := extractStr(input, "pattern")
	if !ok {
		return Error(toolUseID, "Missing 'pattern' field in Glob tool input")
	}

	baseDir := "."
	if p, ok := extractDirectory(input); ok {
		baseDir = ctx.resolvePath(p)
	} else if ctx.cwd != "" {
		baseDir = ctx.cwd
	}

	fullPattern := pattern
	if !filepath.IsAbs(pattern) && !strings.Contains(pattern, ":") {
		fullPattern = filepath.Join(baseDir, pattern)
	}

	matches, err := doublestar.FilepathGlob(fullPattern)
	if err != nil {
		return Error(toolUseID, fmt.Sprintf("Invalid glob pattern '%s': %s", pattern, err))
	}
	if len(matches) == 0 {
		return Success(toolUseID, "No matches found")
	}
	return Success(toolUseID, strings.Join(matches, "\n"))
}

func (globTool) toolName() string { return NameGlob }

// grepTool searches file contents with a regex.
type grepTool struct{}

func (grepTool) execute(call *scenario.ToolCallSpec, toolUseID string, ctx *builtinContext) Result {
	input := call.InputMap()
	pattern, ok := extractStr(input, "pattern")
	if !ok {
		return Error(toolUseID, "Missing 'pattern' field in Grep tool input")
	}

	expr := pattern
	if extractBool(input, "-i", false) {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Error(toolUseID, fmt.Sprintf("Invalid regex pattern '%s': %s", pattern, err))
	}

	searchPath := "."
	if p, ok := extractStr(input, "path"); ok {
		searchPath = ctx.resolvePath(p)
	} else if ctx.cwd != "" {
		searchPath = ctx.cwd
	}
	globFilter, hasGlob := extractStr(input, "glob")

	var matches []string
	for _, file := range collectFiles(searchPath, globFilter, hasGlob) {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
			if re.MatchString(line) {
				matches = append(matches, fmt.Sprintf("%s:%d:%s", file, i+1, line))
			}
		}
	}

	if len(matches) == 0 {
		return Success(toolUseID, "No matches found")
	}
	return Success(toolUseID, strings.Join(matches, "\n"))
}

func (grepTool) toolName() string { return NameGrep }

// collectFiles gathers regular files under path, optionally filtered
// by a glob pattern against the base file name.
func collectFiles(path, globFilter string, hasGlob bool) []string {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		return []string{path}
	}

	var files []string
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if hasGlob {
			if ok, err := doublestar.Match(globFilter, d.Name()); err != nil || !ok {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	return files
}
