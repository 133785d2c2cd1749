package scenario

import (
	"fmt"
	"sync"
)

// Scenario is a compiled Config. Matching is safe for concurrent use; the
// per-rule counters and the turn-sequence cursor sit behind one mutex shared
// by the TUI and the turn runtime.
type Scenario struct {
	cfg *Config

	mu    sync.Mutex
	rules []*compiledRule

	// Active turn sequence, if a sequenced rule matched recently.
	seqRule *compiledRule
	seqNext int
}

type compiledRule struct {
	rule    *Rule
	matcher *Matcher
	turns   []*Matcher
	count   int
}

// MatchKind classifies how a prompt matched.
type MatchKind int

const (
	// MatchOneShot is a plain rule match.
	MatchOneShot MatchKind = iota
	// MatchSequenceEntry begins a rule's turn sequence.
	MatchSequenceEntry
	// MatchFollowUp matched the next expected turn of an active sequence.
	MatchFollowUp
)

// MatchResult describes a successful match.
type MatchResult struct {
	Kind     MatchKind
	Rule     int // index of the matched rule in declaration order
	Turn     int // follow-up index, valid for MatchFollowUp
	Response *ResponseSpec
	Failure  *FailureSpec
}

// Compile builds the matcher set for cfg.
func Compile(cfg *Config) (*Scenario, error) {
	s := &Scenario{cfg: cfg}
	for i := range cfg.Responses {
		rule := &cfg.Responses[i]
		m, err := rule.Pattern.Compile()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		cr := &compiledRule{rule: rule, matcher: m}
		for j := range rule.Turns {
			tm, err := rule.Turns[j].Expect.Compile()
			if err != nil {
				return nil, fmt.Errorf("rule %d turn %d: %w", i, j, err)
			}
			cr.turns = append(cr.turns, tm)
		}
		s.rules = append(s.rules, cr)
	}
	return s, nil
}

// Empty returns a compiled scenario with no rules.
func Empty() *Scenario {
	s, _ := Compile(&Config{})
	return s
}

// Config returns the underlying configuration.
func (s *Scenario) Config() *Config { return s.cfg }

// Match scans for the first eligible rule, preferring the next turn of an
// active sequence. On a hit the rule's counter advances atomically with the
// decision; a prompt that breaks a sequence falls back to top-level search.
func (s *Scenario) Match(prompt string) (*MatchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// An active turn sequence claims the prompt first.
	if s.seqRule != nil && s.seqNext < len(s.seqRule.turns) {
		if s.seqRule.turns[s.seqNext].Matches(prompt) {
			turn := &s.seqRule.rule.Turns[s.seqNext]
			res := &MatchResult{
				Kind:     MatchFollowUp,
				Rule:     s.ruleIndex(s.seqRule),
				Turn:     s.seqNext,
				Response: turn.Response,
				Failure:  turn.Failure,
			}
			s.seqNext++
			if s.seqNext >= len(s.seqRule.turns) {
				s.seqRule, s.seqNext = nil, 0
			}
			return res, true
		}
		// Non-matching prompt breaks the sequence.
		s.seqRule, s.seqNext = nil, 0
	}

	for i, cr := range s.rules {
		if cr.rule.MaxMatches > 0 && cr.count >= cr.rule.MaxMatches {
			continue
		}
		if !cr.matcher.Matches(prompt) {
			continue
		}
		cr.count++
		res := &MatchResult{
			Kind:     MatchOneShot,
			Rule:     i,
			Response: cr.rule.Response,
			Failure:  cr.rule.Failure,
		}
		if len(cr.turns) > 0 {
			res.Kind = MatchSequenceEntry
			s.seqRule, s.seqNext = cr, 0
		}
		return res, true
	}
	return nil, false
}

// DefaultResponse returns the scenario's fallback response, if any.
func (s *Scenario) DefaultResponse() *ResponseSpec {
	if s.cfg == nil {
		return nil
	}
	return s.cfg.DefaultResponse
}

// ResponseTextOrDefault resolves a prompt to the text the assistant would
// say, consuming a match. Empty string means no rule and no default applied.
func (s *Scenario) ResponseTextOrDefault(prompt string) string {
	if res, ok := s.Match(prompt); ok && res.Response != nil {
		return res.Response.Text
	}
	if d := s.DefaultResponse(); d != nil {
		return d.Text
	}
	return ""
}

// ResetCounts clears all match counters and any active sequence.
func (s *Scenario) ResetCounts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cr := range s.rules {
		cr.count = 0
	}
	s.seqRule, s.seqNext = nil, 0
}

// MatchCount reports how many times rule i has matched since the last reset.
func (s *Scenario) MatchCount(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.rules) {
		return 0
	}
	return s.rules[i].count
}

func (s *Scenario) ruleIndex(cr *compiledRule) int {
	for i, r := range s.rules {
		if r == cr {
			return i
		}
	}
	return -1
}
