// Package config loads, normalizes, and validates relex configuration data.
//
// A configuration file is TOML. It tunes the lexer ([lexer]), logging
// ([logging]) and token output ([output]), and declares the ordered rule list
// as [[rules]] tables. Rule order in the file is the rule order the lexer
// uses. Defaults apply to every omitted value, paths are expanded (including
// "~"), and a non-empty RELEX_LOG_LEVEL environment variable overrides
// logging.level.
//
// Always obtain settings through this package so the CLI receives sanitized
// paths, canonical format names, and clear validation errors.
package config
