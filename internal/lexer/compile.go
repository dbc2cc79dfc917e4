package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"relexer/internal/rules"
)

// compile joins the rules into one leftmost-first alternation. Rule i owns
// submatch group i+1, so the firing rule is the first participating group.
func compile(set rules.Set) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?:")
	for i, rule := range set {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteByte('(')
		b.WriteString(rule.Pattern)
		b.WriteByte(')')
	}
	b.WriteByte(')')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile combined pattern: %w", err)
	}
	if re.NumSubexp() != len(set) {
		return nil, fmt.Errorf("compile combined pattern: %d groups for %d rules", re.NumSubexp(), len(set))
	}
	return re, nil
}

// firing returns the rule whose group participated in loc.
func firing(loc []int) int {
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] >= 0 {
			return i/2 - 1
		}
	}
	return -1
}
