package testsupport

import (
	"path/filepath"
	"testing"

	"relexer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a per-test log directory and the
// given rules (word, number and skipped whitespace when none are passed).
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Output.Format = "jsonl"
	cfgVal.Rules = []config.Rule{
		{Name: "word", Pattern: `[A-Za-z]+`},
		{Name: "number", Pattern: `[0-9]+`},
		{Name: "space", Pattern: `\s+`, Skip: true},
	}

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithRules replaces the rule list.
func WithRules(list ...config.Rule) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rules = list
	}
}

// WithAggregateUntil overrides the aggregation threshold.
func WithAggregateUntil(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lexer.AggregateUntil = n
	}
}

// WithDatabase points output.database at a file under the test directory.
func WithDatabase() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Database = filepath.Join(b.baseDir, "tokens.db")
	}
}
