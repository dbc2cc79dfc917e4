package rules

import (
	"regexp/syntax"
	"strings"
)

// Validate checks every rule in declaration order and returns the first
// violation, or nil when the whole set is usable.
func Validate(set Set) error {
	for i, rule := range set {
		parsed, err := syntax.Parse(rule.Pattern, syntax.Perl)
		if err != nil {
			return &PatternError{Index: i, Pattern: rule.Pattern, Err: err}
		}
		if rule.Action == nil {
			return &ActionError{Index: i, Pattern: rule.Pattern}
		}
		if offset, found := CheckCaptures(rule.Pattern); found {
			return &RuleError{Index: i, Pattern: rule.Pattern, Offset: offset, Reason: reasonCapture}
		}
		if parsed.MaxCap() > 0 {
			// The scanner and the parser disagree; trust the parser.
			return &RuleError{Index: i, Pattern: rule.Pattern, Offset: 0, Reason: reasonCapture}
		}
		if CheckNullable(parsed) {
			return &RuleError{Index: i, Pattern: rule.Pattern, Offset: 0, Reason: reasonEmpty}
		}
	}
	return nil
}

// CheckCaptures scans pattern for the first capturing group opener. It skips
// escaped characters, character classes and \Q...\E literal runs. A "(" that
// is not followed by "?" captures, as do the named forms "(?P<" and "(?<".
func CheckCaptures(pattern string) (int, bool) {
	n := len(pattern)
	for i := 0; i < n; i++ {
		switch pattern[i] {
		case '\\':
			if i+1 < n && pattern[i+1] == 'Q' {
				end := strings.Index(pattern[i+2:], `\E`)
				if end < 0 {
					return 0, false
				}
				i += 2 + end + 1
				continue
			}
			i++
		case '[':
			i = skipClass(pattern, i)
		case '(':
			rest := pattern[i+1:]
			if !strings.HasPrefix(rest, "?") {
				return i, true
			}
			if strings.HasPrefix(rest, "?P<") || strings.HasPrefix(rest, "?<") {
				return i, true
			}
		}
	}
	return 0, false
}

// skipClass returns the index of the "]" closing the class opened at start.
func skipClass(pattern string, start int) int {
	n := len(pattern)
	i := start + 1
	if i < n && pattern[i] == '^' {
		i++
	}
	// A leading "]" is a literal member.
	if i < n && pattern[i] == ']' {
		i++
	}
	for ; i < n; i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			if i+1 < n && pattern[i+1] == ':' {
				if end := strings.Index(pattern[i+2:], ":]"); end >= 0 {
					i += 2 + end + 1
				}
			}
		case ']':
			return i
		}
	}
	return n
}

// CheckNullable reports whether re can succeed without consuming input.
// Empty-width assertions count as nullable since they match zero characters
// wherever they hold.
func CheckNullable(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpNoMatch:
		return false
	case syntax.OpEmptyMatch,
		syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return true
	case syntax.OpLiteral:
		return len(re.Rune) == 0
	case syntax.OpCharClass, syntax.OpAnyCharNotNL, syntax.OpAnyChar:
		return false
	case syntax.OpCapture, syntax.OpPlus:
		return CheckNullable(re.Sub[0])
	case syntax.OpStar, syntax.OpQuest:
		return true
	case syntax.OpRepeat:
		return re.Min == 0 || CheckNullable(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !CheckNullable(sub) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if CheckNullable(sub) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
