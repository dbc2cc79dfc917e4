// Package tokenstore persists lexing sessions and their tokens in SQLite.
//
// Each session row records the input name, timing, the final status and,
// for failures, the error kind and message. Tokens are stored in dispatch
// order with their rule, text and absolute offset, so a run can be inspected
// or diffed after the fact. The store is safe for concurrent sessions; writes
// retry briefly while SQLite reports the database as busy.
package tokenstore
