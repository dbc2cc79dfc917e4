package rules

import (
	"context"
	"fmt"
)

// Action handles one matched token. text is the matched substring and offset
// its absolute start within the decoded input. ctx is the context of the
// lexing session. A non-nil error aborts the session and is returned to the
// caller unchanged.
type Action func(ctx context.Context, text string, offset int) error

// Rule is one token class.
type Rule struct {
	Name    string
	Pattern string
	Action  Action
}

// Label returns the rule name, falling back to its index.
func (r Rule) Label(index int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("rule#%d", index)
}

// Set is an ordered rule list. Order decides both the alternation layout and
// tie-breaks between rules that match at the same position.
type Set []Rule

// Discard is an Action that ignores its token.
func Discard(context.Context, string, int) error { return nil }
