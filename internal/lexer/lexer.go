package lexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"relexer/internal/logging"
	"relexer/internal/rules"
)

const (
	// DefaultAggregateUntil is the minimum number of buffered bytes before a
	// mid-stream scan pass runs.
	DefaultAggregateUntil = 1024
	// DefaultReadSize is the chunk size Lex reads from its source.
	DefaultReadSize = 4096
)

// Options configures one lexing session. Zero values select defaults.
type Options struct {
	AggregateUntil int
	Encoding       string
	ReadSize       int
	Logger         *slog.Logger
}

func (o Options) withDefaults(fallback *slog.Logger) Options {
	if o.AggregateUntil <= 0 {
		o.AggregateUntil = DefaultAggregateUntil
	}
	if o.ReadSize <= 0 {
		o.ReadSize = DefaultReadSize
	}
	if o.Logger == nil {
		o.Logger = fallback
	}
	return o
}

// Lexer is a validated, compiled rule set. It is immutable and may be shared
// by any number of concurrent sessions.
type Lexer struct {
	set    rules.Set
	re     *regexp.Regexp
	logger *slog.Logger
}

// Option customizes a Lexer at construction.
type Option func(*Lexer)

// WithLogger sets the logger sessions inherit when Options.Logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(lx *Lexer) {
		if logger != nil {
			lx.logger = logger
		}
	}
}

// New validates set and compiles it. Validation failures are returned as
// *rules.PatternError, *rules.ActionError or *rules.RuleError.
func New(set rules.Set, opts ...Option) (*Lexer, error) {
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: rule set is empty", rules.ErrInvalidRule)
	}
	if err := rules.Validate(set); err != nil {
		return nil, err
	}
	owned := make(rules.Set, len(set))
	copy(owned, set)

	re, err := compile(owned)
	if err != nil {
		return nil, err
	}
	lx := &Lexer{set: owned, re: re, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(lx)
	}
	lx.logger = logging.NewComponentLogger(lx.logger, "lexer")
	return lx, nil
}

// Pattern returns the source of the combined pattern.
func (lx *Lexer) Pattern() string { return lx.re.String() }

// Len returns the number of rules.
func (lx *Lexer) Len() int { return len(lx.set) }

// Name returns the label of rule i.
func (lx *Lexer) Name(i int) string { return lx.set[i].Label(i) }

// Lex reads r to the end, dispatching every token. It returns nil once the
// whole input was consumed, the first *LexError, or the first error returned
// by an action. ctx is handed to every action and consulted between reads.
func (lx *Lexer) Lex(ctx context.Context, r io.Reader, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults(lx.logger)
	s, err := lx.NewSession(ctx, opts)
	if err != nil {
		return err
	}
	logger := logging.WithContext(ctx, s.logger)

	started := time.Now()
	err = s.Drain(ctx, r, opts.ReadSize)
	if err != nil {
		var lexErr *LexError
		if errors.As(err, &lexErr) {
			logger.Debug("lex session failed",
				logging.String(logging.FieldErrorKind, lexErr.ErrorKind()),
				logging.Offset(lexErr.Start),
				logging.Int("tokens", s.Tokens()),
			)
		}
		return err
	}
	logger.Debug("lex session complete",
		logging.Int("tokens", s.Tokens()),
		logging.Int("bytes", s.Offset()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
