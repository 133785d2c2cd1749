package output

import (
	"fmt"

	"claudeless/pkg/scenario"
)

// DefaultModel is the model reported when none is configured.
const DefaultModel = scenario.DefaultModel

// uuidStub is the fixed UUID-like value used so output is byte-stable
// across runs.
func uuidStub() string { return "01234567890abcdef" }

// ModelUsage maps model names to their usage breakdown.
type ModelUsage map[string]UsageWithCost

// ResultOutput is the result wrapper emitted by --output-format json
// and as the final stream-json event.
type ResultOutput struct {
	Type              string        `json:"type"`
	Subtype           string        `json:"subtype"`
	CostUSD           float64       `json:"cost_usd"`
	IsError           bool          `json:"is_error"`
	DurationMS        uint64        `json:"duration_ms"`
	DurationAPIMS     uint64        `json:"duration_api_ms"`
	NumTurns          uint32        `json:"num_turns"`
	Result            *string       `json:"result,omitempty"`
	Error             *string       `json:"error,omitempty"`
	SessionID         string        `json:"session_id"`
	UUID              string        `json:"uuid"`
	RetryAfter        *uint64       `json:"retry_after,omitempty"`
	ModelUsage        ModelUsage    `json:"modelUsage"`
	Usage             UsageWithCost `json:"usage"`
	PermissionDenials []string      `json:"permission_denials"`
}

func baseResult(sessionID string) ResultOutput {
	return ResultOutput{
		Type:              "result",
		Subtype:           "success",
		SessionID:         sessionID,
		UUID:              uuidStub(),
		ModelUsage:        ModelUsage{},
		Usage:             UsageFromTokens(0, 0),
		PermissionDenials: []string{},
	}
}

// SuccessResult builds a success wrapper with estimated output tokens.
func SuccessResult(result, sessionID string, durationMS uint64) ResultOutput {
	return SuccessResultWithUsage(result, sessionID, durationMS, 100, 0, DefaultModel)
}

// SuccessResultWithUsage builds a success wrapper with explicit usage.
// A zero output token count is estimated from the result text.
func SuccessResultWithUsage(result, sessionID string, durationMS uint64, inputTokens, outputTokens uint32, model string) ResultOutput {
	if outputTokens == 0 {
		outputTokens = EstimateTokens(result)
	}
	r := baseResult(sessionID)
	r.CostUSD = EstimateCost(inputTokens, outputTokens)
	r.DurationMS = durationMS
	if durationMS >= 50 {
		r.DurationAPIMS = durationMS - 50
	}
	r.NumTurns = 1
	r.Result = &result
	r.ModelUsage = ModelUsage{model: UsageFromTokens(inputTokens, outputTokens)}
	r.Usage = UsageFromTokens(inputTokens, outputTokens)
	return r
}

// ErrorResult builds an error wrapper.
func ErrorResult(errText, sessionID string, durationMS uint64) ResultOutput {
	r := baseResult(sessionID)
	r.Subtype = "error"
	r.IsError = true
	r.DurationMS = durationMS
	if durationMS >= 10 {
		r.DurationAPIMS = durationMS - 10
	}
	r.Error = &errText
	return r
}

// RateLimitResult builds the wrapper for an injected rate limit.
func RateLimitResult(retryAfter uint64, sessionID string) ResultOutput {
	msg := fmt.Sprintf("Rate limited. Retry after %d seconds.", retryAfter)
	r := baseResult(sessionID)
	r.Subtype = "error"
	r.IsError = true
	r.DurationMS = 50
	r.DurationAPIMS = 50
	r.Error = &msg
	r.RetryAfter = &retryAfter
	return r
}
