package scenario

import "fmt"

// Failure kinds, matching the scenario file's tagged "type" field.
const (
	FailureNetworkUnreachable = "network_unreachable"
	FailureConnectionTimeout  = "connection_timeout"
	FailureAuthError          = "auth_error"
	FailureRateLimit          = "rate_limit"
	FailureOutOfCredits       = "out_of_credits"
	FailurePartialResponse    = "partial_response"
	FailureMalformedJSON      = "malformed_json"
)

// Process exit codes for failure outcomes.
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitPartial     = 2
	ExitInterrupted = 130
)

// FailureSpec is an injected failure outcome. Failures are first-class
// scenario results, not Go errors.
type FailureSpec struct {
	Type        string `json:"type"`
	AfterMS     int64  `json:"after_ms,omitempty"`
	Message     string `json:"message,omitempty"`
	RetryAfter  int64  `json:"retry_after,omitempty"`
	PartialText string `json:"partial_text,omitempty"`
	Raw         string `json:"raw,omitempty"`
}

// FromMode builds a FailureSpec for a --failure flag value, applying the
// same defaults the scenario file would.
func FromMode(mode string) (*FailureSpec, error) {
	switch mode {
	case "network-unreachable":
		return &FailureSpec{Type: FailureNetworkUnreachable}, nil
	case "connection-timeout":
		return &FailureSpec{Type: FailureConnectionTimeout, AfterMS: 5000}, nil
	case "auth-error":
		return &FailureSpec{Type: FailureAuthError, Message: "Invalid API key"}, nil
	case "rate-limit":
		return &FailureSpec{Type: FailureRateLimit, RetryAfter: 60}, nil
	case "out-of-credits":
		return &FailureSpec{Type: FailureOutOfCredits}, nil
	case "partial-response":
		return &FailureSpec{Type: FailurePartialResponse, PartialText: "I was going to say..."}, nil
	case "malformed-json":
		return &FailureSpec{Type: FailureMalformedJSON, Raw: `{"type":"message","content":[{`}, nil
	default:
		return nil, fmt.Errorf("unknown failure mode %q", mode)
	}
}

// ErrorMessage is the human-readable error written to stderr and, except for
// malformed output, recorded to the session log.
func (f *FailureSpec) ErrorMessage() string {
	switch f.Type {
	case FailureNetworkUnreachable:
		return "Network error: Connection refused"
	case FailureConnectionTimeout:
		return fmt.Sprintf("Network error: Connection timed out after %dms", f.AfterMS)
	case FailureAuthError:
		return f.Message
	case FailureRateLimit:
		return fmt.Sprintf("Rate limited. Retry after %d seconds.", f.RetryAfter)
	case FailureOutOfCredits:
		return "Billing error: No credits remaining"
	case FailurePartialResponse:
		return fmt.Sprintf("Partial response: %s", f.PartialText)
	case FailureMalformedJSON:
		return f.Raw
	default:
		return fmt.Sprintf("Unknown failure: %s", f.Type)
	}
}

// ErrorType is the machine-readable error classifier for session records.
func (f *FailureSpec) ErrorType() string {
	switch f.Type {
	case FailureNetworkUnreachable:
		return "network_error"
	case FailureConnectionTimeout:
		return "timeout_error"
	case FailureAuthError:
		return "authentication_error"
	case FailureRateLimit:
		return "rate_limit_error"
	case FailureOutOfCredits:
		return "billing_error"
	case FailurePartialResponse:
		return "partial_response"
	default:
		return ""
	}
}

// DurationMS is the simulated duration reported for the failure.
func (f *FailureSpec) DurationMS() int64 {
	switch f.Type {
	case FailureNetworkUnreachable:
		return 5000
	case FailureConnectionTimeout:
		return f.AfterMS
	case FailureAuthError, FailureOutOfCredits:
		return 100
	case FailureRateLimit:
		return 50
	case FailurePartialResponse:
		return 1000
	default:
		return 0
	}
}

// ExitCode is the process exit code for the failure.
func (f *FailureSpec) ExitCode() int {
	switch f.Type {
	case FailurePartialResponse:
		return ExitPartial
	case FailureMalformedJSON:
		// Corrupted output is still a completed write.
		return ExitSuccess
	default:
		return ExitError
	}
}

// Recorded reports whether the failure is written to the session log.
// Malformed output deliberately corrupts stdout only.
func (f *FailureSpec) Recorded() bool { return f.Type != FailureMalformedJSON }
