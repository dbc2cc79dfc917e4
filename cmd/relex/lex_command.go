package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"relexer/internal/config"
	"relexer/internal/emit"
	"relexer/internal/lexer"
	"relexer/internal/logging"
	"relexer/internal/rules"
	"relexer/internal/tokenstore"
)

const stdinName = "-"

type lexFlags struct {
	rulesPath      string
	aggregateUntil int
	encoding       string
	format         string
	output         string
	database       string
	jobs           int
}

func newLexCommand(ctx *commandContext) *cobra.Command {
	var flags lexFlags

	cmd := &cobra.Command{
		Use:   "lex [files...]",
		Short: "Tokenize files, or stdin when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.withRules(flags.rulesPath)
			if err != nil {
				return err
			}
			applyLexFlags(cmd, cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{stdinName}
			}
			return runLex(cmd, cfg, logger, args)
		},
	}

	cmd.Flags().StringVarP(&flags.rulesPath, "rules", "r", "", "TOML file whose [[rules]] replace the configured rules")
	cmd.Flags().IntVar(&flags.aggregateUntil, "aggregate-until", 0, "Bytes buffered before a mid-stream scan pass")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "Input character encoding")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Token output format: auto, table or jsonl")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write tokens to this file instead of stdout")
	cmd.Flags().StringVar(&flags.database, "db", "", "Also record sessions and tokens in this SQLite database")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "Inputs lexed concurrently")
	return cmd
}

func applyLexFlags(cmd *cobra.Command, cfg *config.Config, flags lexFlags) {
	changed := cmd.Flags().Changed
	if changed("aggregate-until") {
		cfg.Lexer.AggregateUntil = flags.aggregateUntil
	}
	if changed("encoding") {
		cfg.Lexer.Encoding = strings.TrimSpace(flags.encoding)
	}
	if changed("format") {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(flags.format))
	}
	if changed("output") {
		cfg.Output.Path = strings.TrimSpace(flags.output)
	}
	if changed("db") {
		cfg.Output.Database = strings.TrimSpace(flags.database)
	}
	if changed("jobs") {
		cfg.Lexer.Jobs = flags.jobs
	}
}

type runKey struct{}

// inputRun is the per-input state an action reaches through its context. seq
// counts emitted tokens; skipped rules do not advance it.
type inputRun struct {
	name string
	seq  int
}

func runLex(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, inputs []string) (err error) {
	out := cmd.OutOrStdout()
	if cfg.Output.Path != "" {
		file, openErr := openOutput(cfg.Output.Path)
		if openErr != nil {
			return openErr
		}
		defer func() { err = errors.Join(err, file.Close()) }()
		out = file
	}

	var store *tokenstore.Store
	if cfg.Output.Database != "" {
		expanded, pathErr := config.ExpandPath(cfg.Output.Database)
		if pathErr != nil {
			return fmt.Errorf("resolve database path: %w", pathErr)
		}
		if store, err = tokenstore.Open(expanded); err != nil {
			return err
		}
		defer store.Close()
	}

	sink := emit.Multi(newFormatSink(cfg.Output.Format, out), storeSink(store))
	defer func() { err = errors.Join(err, sink.Flush()) }()

	set := cfg.RuleSet(func(index int, rule config.Rule) rules.Action {
		return tokenAction(sink, index, rule.Name)
	})
	lx, err := lexer.New(set, lexer.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := lexer.Options{
		AggregateUntil: cfg.Lexer.AggregateUntil,
		Encoding:       cfg.Lexer.Encoding,
		ReadSize:       cfg.Lexer.ReadSize,
	}

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(cfg.Lexer.Jobs, 1))
	for _, name := range inputs {
		g.Go(func() error {
			runErr := lexInput(gctx, cmd, lx, store, opts, logger, name)
			if runErr == nil {
				return nil
			}
			if errors.Is(runErr, context.Canceled) {
				return runErr
			}
			failed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d inputs failed", n, len(inputs))
	}
	return nil
}

// tokenAction emits each match to sink, stamped with the input and session the
// action context carries. seq only advances once the sink accepted the token.
func tokenAction(sink emit.Sink, index int, name string) rules.Action {
	return func(ctx context.Context, text string, offset int) error {
		id, _ := lexer.SessionID(ctx)
		tok := emit.Token{
			Session:  id,
			Rule:     index,
			RuleName: name,
			Text:     text,
			Offset:   offset,
		}
		run, _ := ctx.Value(runKey{}).(*inputRun)
		if run == nil {
			return sink.Emit(ctx, tok)
		}
		tok.Input = run.name
		tok.Seq = run.seq
		if err := sink.Emit(ctx, tok); err != nil {
			return err
		}
		run.seq++
		return nil
	}
}

func lexInput(ctx context.Context, cmd *cobra.Command, lx *lexer.Lexer, store *tokenstore.Store, opts lexer.Options, logger *slog.Logger, name string) error {
	run := &inputRun{name: name}
	ctx = logging.WithInput(ctx, name)
	ctx = context.WithValue(ctx, runKey{}, run)
	logger = logging.WithContext(ctx, logger)

	r, closeInput, err := openInput(cmd, name)
	if err != nil {
		logging.ErrorWithContext(logger, "open input failed", "input_open",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the path exists and is readable"),
		)
		return err
	}
	defer closeInput()

	session, err := lx.NewSession(ctx, opts)
	if err != nil {
		return err
	}
	logger = logger.With(logging.Session(session.ID()))
	if store != nil {
		if err := store.BeginSession(ctx, session.ID(), name); err != nil {
			return err
		}
	}

	started := time.Now()
	runErr := session.Drain(ctx, r, opts.ReadSize)
	if store != nil {
		if err := store.FinishSession(context.WithoutCancel(ctx), session.ID(), run.seq, runErr); err != nil {
			logger.Warn("record session result failed", logging.Error(err))
		}
	}
	if runErr != nil {
		attrs := []logging.Attr{
			logging.Error(runErr),
			logging.Int("tokens", run.seq),
		}
		var lexErr *lexer.LexError
		if errors.As(runErr, &lexErr) {
			attrs = append(attrs,
				logging.String(logging.FieldErrorKind, lexErr.ErrorKind()),
				logging.Offset(lexErr.Start),
			)
		}
		logging.ErrorWithContext(logger, "lex failed", "lex_failed", attrs...)
		return runErr
	}
	logger.Info("lex complete",
		logging.Int("tokens", run.seq),
		logging.Int("dispatched", session.Tokens()),
		logging.Int("bytes", session.Offset()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func openOutput(path string) (*emit.File, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	return emit.OpenFile(expanded)
}

func openInput(cmd *cobra.Command, name string) (io.Reader, func(), error) {
	if name == stdinName {
		return cmd.InOrStdin(), func() {}, nil
	}
	path, err := config.ExpandPath(name)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve input %q: %w", name, err)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

func newFormatSink(format string, w io.Writer) emit.Sink {
	switch format {
	case "table":
		return emit.NewTable(w)
	case "jsonl":
		return emit.NewJSONLines(w)
	}
	if isTerminal(w) {
		return emit.NewTable(w)
	}
	return emit.NewJSONLines(w)
}

func storeSink(store *tokenstore.Store) emit.Sink {
	if store == nil {
		return nil
	}
	return emit.NewStore(store)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
