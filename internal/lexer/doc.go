// Package lexer runs an ordered rule set over a chunked byte stream.
//
// New validates and compiles the rules once into a Lexer that is immutable
// and safe to share. Each call to Lex (or NewSession for callers that push
// bytes themselves) owns a Session holding the decoder, the pending text and
// the absolute offset, so independent sessions over one Lexer never interfere.
//
// A Session buffers decoded text until at least Options.AggregateUntil bytes
// are visible past the scan cursor, then dispatches every match it can prove
// is final, calling each rule's action in order and waiting for it before
// continuing. Input is only pulled again once the pass and its actions are
// done. At end of input the remainder is drained without the threshold.
//
// Among rules that can match at the same position the first declared rule
// wins, even when a later rule would match more text. Offsets are byte
// offsets into the decoded UTF-8 text.
//
// Failures are terminal. Tokens dispatched before a LexError stay dispatched;
// an error returned by an action is passed back unchanged.
package lexer
