// Package logging assembles the slog loggers used by the lexer and the relex
// CLI.
//
// It owns the console and JSON handlers, level parsing and output plumbing,
// and the standardized field keys (component, session_id, rule, offset,
// input) so every log line about a lexing session has the same shape. A no-op
// logger is provided for library callers and tests that do not want output.
package logging
