package config

import (
	"errors"
	"fmt"

	"relexer/internal/decode"
)

// Validate ensures the configuration is usable. Rule patterns are only
// checked for presence here; compiling them is the lexer's job.
func (c *Config) Validate() error {
	if err := c.validateLexer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return ValidateRules(c.Rules)
}

func (c *Config) validateLexer() error {
	if c.Lexer.AggregateUntil < 1 {
		return errors.New("lexer.aggregate_until must be positive")
	}
	if c.Lexer.ReadSize < 1 {
		return errors.New("lexer.read_size must be positive")
	}
	if c.Lexer.Jobs < 1 {
		return errors.New("lexer.jobs must be at least 1")
	}
	if _, err := decode.Lookup(c.Lexer.Encoding); err != nil {
		return fmt.Errorf("lexer.encoding: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "auto", "table", "jsonl":
		return nil
	default:
		return fmt.Errorf("output.format must be auto, table or jsonl, got %q", c.Output.Format)
	}
}

// ValidateRules checks that every rule has a pattern and that names are
// unique.
func ValidateRules(list []Rule) error {
	seen := make(map[string]int, len(list))
	for i, rule := range list {
		if rule.Pattern == "" {
			return fmt.Errorf("rules[%d]: pattern must be set", i)
		}
		if rule.Name == "" {
			continue
		}
		if prev, ok := seen[rule.Name]; ok {
			return fmt.Errorf("rules[%d]: name %q already used by rules[%d]", i, rule.Name, prev)
		}
		seen[rule.Name] = i
	}
	return nil
}
