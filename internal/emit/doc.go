// Package emit writes matched tokens to their destinations.
//
// A Sink receives tokens in dispatch order. JSONLines streams one JSON object
// per token, Table collects rows and renders them when flushed, Store records
// them in a tokenstore database, and Multi fans out to several sinks. Sinks
// may be shared by concurrent sessions.
//
// OpenFile opens an output file under an exclusive advisory lock so two relex
// processes cannot interleave tokens in the same file.
package emit
