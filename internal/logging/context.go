package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID identifies one lexing session.
	FieldSessionID = "session_id"
	// FieldInput names the input being lexed (a path, or "-" for stdin).
	FieldInput = "input"
	// FieldRule is the label of the rule that fired.
	FieldRule = "rule"
	// FieldOffset is an absolute byte offset into the decoded input.
	FieldOffset = "offset"
	// FieldEventType classifies error and warning records.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries a LexError kind.
	FieldErrorKind = "error_kind"
)

type inputKey struct{}

// WithInput records the input name on ctx.
func WithInput(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, inputKey{}, strings.TrimSpace(name))
}

// InputFromContext returns the input name recorded by WithInput.
func InputFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(inputKey{}).(string)
	return name, ok && name != ""
}

// ContextFields extracts standardized slog attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if name, ok := InputFromContext(ctx); ok {
		return []slog.Attr{slog.String(FieldInput, name)}
	}
	return nil
}

// WithContext returns a logger augmented with fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
