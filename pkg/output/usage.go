// Package output encodes responses in the CLI's three print formats:
// plain text, a single result JSON object, and newline-delimited
// stream-json events.
package output

// TokenCounts is the basic input/output token pair.
type TokenCounts struct {
	InputTokens  uint32 `json:"input_tokens"`
	OutputTokens uint32 `json:"output_tokens"`
}

// Total sums input and output tokens.
func (t TokenCounts) Total() uint32 { return t.InputTokens + t.OutputTokens }

// ExtendedTokenCounts includes cache metrics.
type ExtendedTokenCounts struct {
	InputTokens              uint32 `json:"input_tokens"`
	OutputTokens             uint32 `json:"output_tokens"`
	CacheCreationInputTokens uint32 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint32 `json:"cache_read_input_tokens"`
}

// UsageWithCost is token usage plus the estimated dollar cost.
type UsageWithCost struct {
	InputTokens              uint32  `json:"input_tokens"`
	OutputTokens             uint32  `json:"output_tokens"`
	CacheCreationInputTokens uint32  `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint32  `json:"cache_read_input_tokens"`
	CostUSD                  float64 `json:"cost_usd"`
}

// UsageFromTokens builds usage with the cost filled in.
func UsageFromTokens(input, output uint32) UsageWithCost {
	return UsageWithCost{
		InputTokens:  input,
		OutputTokens: output,
		CostUSD:      EstimateCost(input, output),
	}
}

// EstimateCost prices tokens at Sonnet rates, $3/M input and $15/M output.
func EstimateCost(inputTokens, outputTokens uint32) float64 {
	return float64(inputTokens)*0.000003 + float64(outputTokens)*0.000015
}

// EstimateTokens approximates a token count as four characters per token.
func EstimateTokens(text string) uint32 {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return uint32(n)
}
