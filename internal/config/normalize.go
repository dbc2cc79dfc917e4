package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLexer()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	for i := range c.Rules {
		normalizeRule(&c.Rules[i])
	}
	return nil
}

func (c *Config) normalizeLexer() {
	c.Lexer.Encoding = strings.ToLower(strings.TrimSpace(c.Lexer.Encoding))
	if c.Lexer.Encoding == "" {
		c.Lexer.Encoding = defaultEncoding
	}
	if c.Lexer.AggregateUntil == 0 {
		c.Lexer.AggregateUntil = defaultAggregateUntil
	}
	if c.Lexer.ReadSize == 0 {
		c.Lexer.ReadSize = defaultReadSize
	}
	if c.Lexer.Jobs == 0 {
		c.Lexer.Jobs = defaultJobs
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if value, ok := os.LookupEnv("RELEX_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() error {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	var err error
	if c.Output.Path, err = expandPath(strings.TrimSpace(c.Output.Path)); err != nil {
		return fmt.Errorf("output.path: %w", err)
	}
	if c.Output.Database, err = expandPath(strings.TrimSpace(c.Output.Database)); err != nil {
		return fmt.Errorf("output.database: %w", err)
	}
	return nil
}

// Rule patterns are kept verbatim: whitespace is significant in a regexp.
func normalizeRule(rule *Rule) {
	rule.Name = strings.TrimSpace(rule.Name)
}
