package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"claudeless/pkg/scenario"
)

// errorEnvelope is the API-shaped error object some failures write.
type errorEnvelope struct {
	Type  string    `json:"type"`
	Error errorBody `json:"error"`
}

type errorBody struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retry_after,omitempty"`
}

// writeFailure emits the failure's stderr shape and returns the exit
// code the process should use. Network failures write plain text; API
// failures write an error envelope; a partial response truncates
// mid-stream; malformed output writes the raw bytes as-is.
func (r *Runtime) writeFailure(ctx context.Context, w io.Writer, f *scenario.FailureSpec) int {
	switch f.Type {
	case scenario.FailureNetworkUnreachable:
		fmt.Fprintln(w, "Error: Failed to connect to Claude API: Network is unreachable")

	case scenario.FailureConnectionTimeout:
		_ = r.clk.Sleep(ctx, time.Duration(f.AfterMS)*time.Millisecond)
		fmt.Fprintf(w, "Error: Connection to Claude API timed out after %dms\n", f.AfterMS)

	case scenario.FailureAuthError:
		writeErrorEnvelope(w, errorBody{Type: "authentication_error", Message: f.Message})

	case scenario.FailureRateLimit:
		writeErrorEnvelope(w, errorBody{
			Type:       "rate_limit_error",
			Message:    "Rate limit exceeded",
			RetryAfter: f.RetryAfter,
		})

	case scenario.FailureOutOfCredits:
		writeErrorEnvelope(w, errorBody{
			Type:    "billing_error",
			Message: "Your account has no credits remaining",
		})

	case scenario.FailurePartialResponse:
		fmt.Fprint(w, f.PartialText)

	case scenario.FailureMalformedJSON:
		fmt.Fprintln(w, f.Raw)
	}
	return f.ExitCode()
}

func writeErrorEnvelope(w io.Writer, body errorBody) {
	data, err := json.Marshal(errorEnvelope{Type: "error", Error: body})
	if err != nil {
		return
	}
	fmt.Fprintln(w, string(data))
}
