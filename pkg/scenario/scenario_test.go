package scenario_test

import (
	"os"
	"path/filepath"
	"testing"

	"claudeless/pkg/scenario"
)

func compileRules(t *testing.T, rules ...scenario.Rule) *scenario.Scenario {
	t.Helper()
	cfg := &scenario.Config{Responses: rules}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	s, err := scenario.Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return s
}

func containsRule(text, response string) scenario.Rule {
	return scenario.Rule{
		Pattern:  scenario.PatternSpec{Type: scenario.PatternContains, Text: text},
		Response: scenario.SimpleResponse(response),
	}
}

func TestFirstEligibleRuleWins(t *testing.T) {
	s := compileRules(t,
		containsRule("hello", "first"),
		containsRule("hello", "second"),
	)
	res, ok := s.Match("hello world")
	if !ok {
		t.Fatal("no match")
	}
	if res.Rule != 0 || res.Response.Text != "first" {
		t.Fatalf("matched rule %d %q, want rule 0 %q", res.Rule, res.Response.Text, "first")
	}
}

func TestMaxMatchesExhaustsRule(t *testing.T) {
	limited := containsRule("go", "limited")
	limited.MaxMatches = 2
	s := compileRules(t, limited, containsRule("go", "fallback"))

	for i := 0; i < 2; i++ {
		res, ok := s.Match("go")
		if !ok || res.Response.Text != "limited" {
			t.Fatalf("match %d: got %+v ok=%v", i, res, ok)
		}
	}
	res, ok := s.Match("go")
	if !ok || res.Response.Text != "fallback" {
		t.Fatalf("after limit: got %+v ok=%v, want fallback", res, ok)
	}
	if n := s.MatchCount(0); n != 2 {
		t.Fatalf("MatchCount(0) = %d, want 2", n)
	}

	s.ResetCounts()
	res, ok = s.Match("go")
	if !ok || res.Response.Text != "limited" {
		t.Fatalf("after reset: got %+v, want limited again", res)
	}
}

func TestAnyRuleAsFallback(t *testing.T) {
	anyRule := scenario.Rule{
		Pattern:  scenario.PatternSpec{Type: scenario.PatternAny},
		Response: scenario.SimpleResponse("default-ish"),
	}
	s := compileRules(t, containsRule("specific", "hit"), anyRule)

	res, _ := s.Match("nothing special")
	if res.Response.Text != "default-ish" {
		t.Fatalf("got %q, want fallback", res.Response.Text)
	}
	res, _ = s.Match("specific thing")
	if res.Response.Text != "hit" {
		t.Fatalf("got %q, want specific rule", res.Response.Text)
	}
}

func TestTurnSequenceFollowUps(t *testing.T) {
	seq := scenario.Rule{
		Pattern:  scenario.PatternSpec{Type: scenario.PatternContains, Text: "start"},
		Response: scenario.SimpleResponse("opening"),
		Turns: []scenario.ConversationTurn{
			{Expect: scenario.PatternSpec{Type: scenario.PatternContains, Text: "next"}, Response: scenario.SimpleResponse("turn one")},
			{Expect: scenario.PatternSpec{Type: scenario.PatternContains, Text: "again"}, Response: scenario.SimpleResponse("turn two")},
		},
	}
	s := compileRules(t, seq, containsRule("other", "top level"))

	res, _ := s.Match("start here")
	if res.Kind != scenario.MatchSequenceEntry || res.Response.Text != "opening" {
		t.Fatalf("entry: got kind=%v text=%q", res.Kind, res.Response.Text)
	}

	res, _ = s.Match("next step")
	if res.Kind != scenario.MatchFollowUp || res.Turn != 0 || res.Response.Text != "turn one" {
		t.Fatalf("follow-up 0: got %+v", res)
	}

	res, _ = s.Match("again please")
	if res.Kind != scenario.MatchFollowUp || res.Turn != 1 {
		t.Fatalf("follow-up 1: got %+v", res)
	}
}

func TestSequenceBrokenByNonMatchingPrompt(t *testing.T) {
	seq := scenario.Rule{
		Pattern:  scenario.PatternSpec{Type: scenario.PatternContains, Text: "start"},
		Response: scenario.SimpleResponse("opening"),
		Turns: []scenario.ConversationTurn{
			{Expect: scenario.PatternSpec{Type: scenario.PatternContains, Text: "next"}, Response: scenario.SimpleResponse("turn one")},
		},
	}
	s := compileRules(t, seq, containsRule("other", "top level"))

	if _, ok := s.Match("start"); !ok {
		t.Fatal("entry match failed")
	}
	res, ok := s.Match("other business")
	if !ok || res.Response.Text != "top level" {
		t.Fatalf("sequence break should resume top-level search, got %+v ok=%v", res, ok)
	}
	// The broken sequence does not resurrect.
	if res, ok := s.Match("next"); ok {
		t.Fatalf("dead sequence matched: %+v", res)
	}
}

func TestFailureRuleDelivered(t *testing.T) {
	s := compileRules(t, scenario.Rule{
		Pattern: scenario.PatternSpec{Type: scenario.PatternAny},
		Failure: &scenario.FailureSpec{Type: scenario.FailureRateLimit, RetryAfter: 30},
	})
	res, ok := s.Match("anything")
	if !ok || res.Failure == nil {
		t.Fatalf("got %+v ok=%v, want failure", res, ok)
	}
	if res.Failure.RetryAfter != 30 {
		t.Fatalf("RetryAfter = %d, want 30", res.Failure.RetryAfter)
	}
}

func TestLoadTOMLScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "basic.toml")
	doc := `
name = "basic"
default_response = "fallback"

[[responses]]
max_matches = 1
[responses.pattern]
type = "contains"
text = "hello"
[responses.response]
text = "Hi!"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := scenario.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "basic" || len(cfg.Responses) != 1 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Responses[0].MaxMatches != 1 || cfg.Responses[0].Response.Text != "Hi!" {
		t.Fatalf("rule = %+v", cfg.Responses[0])
	}
	if cfg.DefaultResponse == nil || cfg.DefaultResponse.Text != "fallback" {
		t.Fatalf("default = %+v", cfg.DefaultResponse)
	}
}

func TestLoadJSONScenarioWithFileRef(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "reply.txt"), []byte("canned reply"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := `{
	  "responses": [
	    {"pattern": {"type": "any"}, "response": {"$file": "reply.txt"}}
	  ]
	}`
	path := filepath.Join(dir, "scenario.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := scenario.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Responses[0].Response.Text; got != "canned reply" {
		t.Fatalf("resolved response = %q", got)
	}
}

func TestValidateRejectsBadIdentity(t *testing.T) {
	bad := "not-a-uuid"
	cfg := &scenario.Config{Identity: scenario.Identity{SessionID: &bad}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid session_id accepted")
	}

	badTS := "yesterday"
	cfg = &scenario.Config{Environment: scenario.Environment{LaunchTimestamp: &badTS}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid launch_timestamp accepted")
	}

	badMode := "sometimes"
	cfg = &scenario.Config{Environment: scenario.Environment{PermissionMode: &badMode}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid permission_mode accepted")
	}

	cfg = &scenario.Config{Responses: []scenario.Rule{{Pattern: scenario.PatternSpec{Type: scenario.PatternAny}}}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("rule without response or failure accepted")
	}
}

func TestRoundTripPreservesOrdering(t *testing.T) {
	dir := t.TempDir()
	doc := `{
	  "responses": [
	    {"pattern": {"type": "contains", "text": "a"}, "response": "first"},
	    {"pattern": {"type": "contains", "text": "a"}, "response": "second"}
	  ]
	}`
	path := filepath.Join(dir, "order.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := scenario.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, err := scenario.Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, _ := s.Match("a")
	if res.Response.Text != "first" {
		t.Fatalf("round-tripped order broken: %q", res.Response.Text)
	}
}

func TestFailureMessagesAndCodes(t *testing.T) {
	tests := []struct {
		spec     scenario.FailureSpec
		message  string
		errType  string
		exitCode int
	}{
		{scenario.FailureSpec{Type: scenario.FailureNetworkUnreachable}, "Network error: Connection refused", "network_error", 1},
		{scenario.FailureSpec{Type: scenario.FailureConnectionTimeout, AfterMS: 750}, "Network error: Connection timed out after 750ms", "timeout_error", 1},
		{scenario.FailureSpec{Type: scenario.FailureAuthError, Message: "Invalid API key"}, "Invalid API key", "authentication_error", 1},
		{scenario.FailureSpec{Type: scenario.FailureRateLimit, RetryAfter: 30}, "Rate limited. Retry after 30 seconds.", "rate_limit_error", 1},
		{scenario.FailureSpec{Type: scenario.FailureOutOfCredits}, "Billing error: No credits remaining", "billing_error", 1},
		{scenario.FailureSpec{Type: scenario.FailurePartialResponse, PartialText: "oops"}, "Partial response: oops", "partial_response", 2},
	}
	for _, tt := range tests {
		if got := tt.spec.ErrorMessage(); got != tt.message {
			t.Errorf("%s: message %q, want %q", tt.spec.Type, got, tt.message)
		}
		if got := tt.spec.ErrorType(); got != tt.errType {
			t.Errorf("%s: errType %q, want %q", tt.spec.Type, got, tt.errType)
		}
		if got := tt.spec.ExitCode(); got != tt.exitCode {
			t.Errorf("%s: exit %d, want %d", tt.spec.Type, got, tt.exitCode)
		}
		if !tt.spec.Recorded() {
			t.Errorf("%s: should be recorded", tt.spec.Type)
		}
	}

	malformed := scenario.FailureSpec{Type: scenario.FailureMalformedJSON, Raw: `{"x`}
	if malformed.Recorded() {
		t.Error("malformed output must not reach the session log")
	}
}

func TestFromModeDefaults(t *testing.T) {
	f, err := scenario.FromMode("connection-timeout")
	if err != nil || f.AfterMS != 5000 {
		t.Fatalf("connection-timeout default: %+v err=%v", f, err)
	}
	f, err = scenario.FromMode("rate-limit")
	if err != nil || f.RetryAfter != 60 {
		t.Fatalf("rate-limit default: %+v err=%v", f, err)
	}
	if _, err := scenario.FromMode("weird"); err == nil {
		t.Fatal("unknown mode accepted")
	}
}

func TestTimeoutPrecedence(t *testing.T) {
	t.Setenv(scenario.EnvHookTimeoutMS, "1234")

	got := scenario.ResolveTimeouts(nil)
	if got.HookTimeoutMS != 1234 {
		t.Fatalf("env override ignored: %d", got.HookTimeoutMS)
	}
	if got.ExitHintMS != scenario.DefaultExitHintMS {
		t.Fatalf("default exit hint: %d", got.ExitHintMS)
	}

	ms := int64(99)
	got = scenario.ResolveTimeouts(&scenario.TimeoutConfig{HookTimeoutMS: &ms})
	if got.HookTimeoutMS != 99 {
		t.Fatalf("scenario should beat env: %d", got.HookTimeoutMS)
	}
}
