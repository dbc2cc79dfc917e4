package testsupport

import (
	"context"
	"slices"
	"sync"

	"relexer/internal/rules"
)

// Token is one recorded action call.
type Token struct {
	Rule   int
	Text   string
	Offset int
}

// Recorder collects action calls for assertions.
type Recorder struct {
	mu     sync.Mutex
	tokens []Token
}

// Action returns an action that records calls under rule.
func (r *Recorder) Action(rule int) rules.Action {
	return func(_ context.Context, text string, offset int) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.tokens = append(r.tokens, Token{Rule: rule, Text: text, Offset: offset})
		return nil
	}
}

// Set builds a rule set from patterns, each recording under its index.
func (r *Recorder) Set(patterns ...string) rules.Set {
	set := make(rules.Set, len(patterns))
	for i, p := range patterns {
		set[i] = rules.Rule{Pattern: p, Action: r.Action(i)}
	}
	return set
}

// Tokens returns a copy of the recorded calls.
func (r *Recorder) Tokens() []Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Token(nil), r.tokens...)
}

// Texts returns the recorded texts, skipping rules listed in ignore.
func (r *Recorder) Texts(ignore ...int) []string {
	var out []string
	for _, tok := range r.Tokens() {
		if slices.Contains(ignore, tok.Rule) {
			continue
		}
		out = append(out, tok.Text)
	}
	return out
}

// Offsets returns the recorded offsets, skipping rules listed in ignore.
func (r *Recorder) Offsets(ignore ...int) []int {
	var out []int
	for _, tok := range r.Tokens() {
		if slices.Contains(ignore, tok.Rule) {
			continue
		}
		out = append(out, tok.Offset)
	}
	return out
}
