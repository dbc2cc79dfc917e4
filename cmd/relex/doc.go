// Command relex tokenizes files or stdin with the rules declared in a TOML
// configuration.
//
// relex lex reads every input through one compiled rule set, runs up to
// lexer.jobs inputs concurrently and writes the tokens as a table on a
// terminal or as JSON lines otherwise. --db also records each session and its
// tokens in SQLite. relex rules check and relex rules list inspect the rule
// set without lexing anything, and relex config init writes a sample file.
package main
