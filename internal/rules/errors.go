package rules

import (
	"errors"
	"fmt"
)

// ErrInvalidRule marks every construction-time rule failure.
var ErrInvalidRule = errors.New("invalid rule")

// PatternError reports a pattern that does not parse as a Go regexp.
type PatternError struct {
	Index   int
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("rule %d: pattern %q: %v", e.Index, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() []error { return []error{ErrInvalidRule, e.Err} }

// ActionError reports a rule without an action.
type ActionError struct {
	Index   int
	Pattern string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("rule %d: pattern %q: action is not callable", e.Index, e.Pattern)
}

func (e *ActionError) Is(target error) bool { return target == ErrInvalidRule }

// RuleError reports a forbidden construct inside an otherwise valid pattern.
// Offset is the byte position of the violation within Pattern.
type RuleError struct {
	Index   int
	Pattern string
	Offset  int
	Reason  string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d: pattern %q: %s at offset %d", e.Index, e.Pattern, e.Reason, e.Offset)
}

func (e *RuleError) Is(target error) bool { return target == ErrInvalidRule }

const (
	reasonCapture = "capturing group not allowed"
	reasonEmpty   = "pattern matches empty input"
)
