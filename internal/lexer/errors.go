package lexer

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind classifies a LexError.
type Kind string

const (
	// KindNoMatchAtPosition means no rule matches at the cursor although a
	// later position does match.
	KindNoMatchAtPosition Kind = "no-match-at-position"
	// KindNoMatchAtEnd means the input ended with text no rule matches.
	KindNoMatchAtEnd Kind = "no-match-at-end"
	// KindTooLong means unmatched text reached the aggregation threshold
	// before the stream ended.
	KindTooLong Kind = "too-long"
)

var (
	// ErrNoMatch marks every LexError.
	ErrNoMatch = errors.New("no rule matched")
	// ErrClosed is returned when writing to a finished session.
	ErrClosed = errors.New("session closed")
	// ErrReentrant is returned when an action feeds input back into its own
	// session.
	ErrReentrant = errors.New("session busy: input delivered while a scan is in flight")
)

const snippetLimit = 64

// LexError describes where lexing stopped. Start and End are absolute byte
// offsets of the offending span; Text holds the span itself.
type LexError struct {
	Kind    Kind
	Start   int
	End     int
	Text    string
	Message string
}

func (e *LexError) Error() string {
	snippet := e.Text
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit] + "..."
	}
	if snippet == "" {
		return fmt.Sprintf("lex: %s at offset %d", e.Message, e.Start)
	}
	return fmt.Sprintf("lex: %s at offset %d-%d: %s", e.Message, e.Start, e.End, strconv.Quote(snippet))
}

func (e *LexError) Is(target error) bool { return target == ErrNoMatch }

// ErrorKind exposes the classification for callers that switch on strings.
func (e *LexError) ErrorKind() string { return string(e.Kind) }

func unmatchedSpan(start int, text string) *LexError {
	return &LexError{
		Kind:    KindNoMatchAtPosition,
		Start:   start,
		End:     start + len(text),
		Text:    text,
		Message: "no rule matched",
	}
}

func unmatchedTail(start int, text string) *LexError {
	return &LexError{
		Kind:    KindNoMatchAtEnd,
		Start:   start,
		End:     start + len(text),
		Text:    text,
		Message: "no rule matched at end of data",
	}
}

func tooLong(start int, text string) *LexError {
	return &LexError{
		Kind:    KindTooLong,
		Start:   start,
		End:     start + len(text),
		Text:    text,
		Message: "unmatched text too long to match",
	}
}

func emptyMatch(start int) *LexError {
	return &LexError{
		Kind:    KindNoMatchAtPosition,
		Start:   start,
		End:     start,
		Message: "zero-length match",
	}
}
