package tui

import (
	"fmt"
	"math"
	"strconv"
)

// memoryFileUsage is one loaded instruction file counted in the context grid.
type memoryFileUsage struct {
	path   string
	tokens uint64
}

// contextUsage holds the token breakdown shown by /context.
type contextUsage struct {
	systemPromptTokens      uint64
	systemToolsTokens       uint64
	memoryFilesTokens       uint64
	messagesTokens          uint64
	freeSpaceTokens         uint64
	autocompactBufferTokens uint64
	totalTokens             uint64
	modelName               string
	memoryFiles             []memoryFileUsage
}

func newContextUsage() contextUsage {
	return contextUsage{
		systemPromptTokens:      2300,
		systemToolsTokens:       16700,
		memoryFilesTokens:       1000,
		messagesTokens:          8,
		freeSpaceTokens:         147000,
		autocompactBufferTokens: 33000,
		totalTokens:             200000,
		modelName:               "claude-haiku-4-5-20251001",
		memoryFiles: []memoryFileUsage{
			{path: ".claude/CLAUDE.md", tokens: 1000},
		},
	}
}

func newContextUsageWithModel(modelName string) contextUsage {
	u := newContextUsage()
	u.modelName = modelName
	return u
}

func (u contextUsage) totalUsed() uint64 {
	return u.systemPromptTokens + u.systemToolsTokens + u.memoryFilesTokens + u.messagesTokens
}

func (u contextUsage) percentage(tokens uint64) float64 {
	if u.totalTokens == 0 {
		return 0
	}
	return float64(tokens) / float64(u.totalTokens) * 100
}

// formatTokenCount renders a token count like "2.3k" or "148k".
func formatTokenCount(tokens uint64) string {
	if tokens < 1000 {
		return strconv.FormatUint(tokens, 10)
	}
	k := float64(tokens) / 1000
	if k >= 100 {
		return fmt.Sprintf("%.0fk", k)
	}
	return fmt.Sprintf("%.1fk", k)
}

// gridCells returns the 100-cell usage grid. Used cells render as ⛁ with
// the final used cell as ⛀, free space as ⛶, and the autocompact buffer
// as ⛝.
func (u contextUsage) gridCells() []rune {
	usedCells := int(math.Ceil(float64(u.totalUsed()) / float64(u.totalTokens) * 100))
	autocompactCells := int(math.Ceil(float64(u.autocompactBufferTokens) / float64(u.totalTokens) * 100))
	freeCells := 100 - usedCells - autocompactCells
	if freeCells < 0 {
		freeCells = 0
	}

	cells := make([]rune, 0, 100)
	if usedCells > 1 {
		for i := 0; i < usedCells-1; i++ {
			cells = append(cells, '⛁')
		}
		cells = append(cells, '⛀')
	} else if usedCells == 1 {
		cells = append(cells, '⛀')
	}
	for i := 0; i < freeCells; i++ {
		cells = append(cells, '⛶')
	}
	for i := 0; i < autocompactCells; i++ {
		cells = append(cells, '⛝')
	}
	if len(cells) > 100 {
		cells = cells[:100]
	}
	for len(cells) < 100 {
		cells = append(cells, '⛶')
	}
	return cells
}
