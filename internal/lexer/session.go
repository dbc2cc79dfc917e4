package lexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"relexer/internal/decode"
	"relexer/internal/logging"
)

// Session is the mutable state of one lexing run. Write feeds raw bytes and
// Close ends the stream. A Session must not be used from more than one
// goroutine at a time.
type Session struct {
	lx             *Lexer
	ctx            context.Context
	id             string
	logger         *slog.Logger
	dec            *decode.Decoder
	aggregateUntil int

	buf    string
	offset int
	tokens int
	ended  bool
	err    error
	pump   pump
}

// NewSession starts a session over lx for callers that push input. Every
// action dispatched by the session receives ctx, extended with the session
// id (see SessionID).
func (lx *Lexer) NewSession(ctx context.Context, opts Options) (*Session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults(lx.logger)
	dec, err := decode.NewDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	return &Session{
		lx:             lx,
		ctx:            context.WithValue(ctx, sessionKey{}, id),
		id:             id,
		logger:         opts.Logger.With(logging.Session(id)),
		dec:            dec,
		aggregateUntil: opts.AggregateUntil,
	}, nil
}

// ID returns the session identifier used in log records.
func (s *Session) ID() string { return s.id }

type sessionKey struct{}

// SessionID returns the id of the session dispatching the current action.
func SessionID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok
}

// Offset returns the absolute offset of the first unconsumed byte.
func (s *Session) Offset() int { return s.offset }

// Tokens returns how many tokens were dispatched so far.
func (s *Session) Tokens() int { return s.tokens }

// Write decodes p and dispatches every token that is final. It returns only
// after all actions triggered by p have returned.
func (s *Session) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.ended {
		return 0, ErrClosed
	}
	if err := s.pump.acquire(); err != nil {
		return 0, err
	}
	defer s.pump.release()

	text, err := s.dec.Decode(p)
	if err != nil {
		return 0, s.fail(fmt.Errorf("decode chunk: %w", err))
	}
	s.buf += text
	if len(s.buf) < s.aggregateUntil {
		return len(p), nil
	}
	if err := s.pass(false); err != nil {
		return len(p), s.fail(err)
	}
	return len(p), nil
}

// Close ends the stream and drains the remainder. It returns nil only when
// every byte of decoded input was matched.
func (s *Session) Close() error {
	if s.err != nil {
		return s.err
	}
	if s.ended {
		return nil
	}
	if err := s.pump.acquire(); err != nil {
		return err
	}
	defer s.pump.release()
	s.ended = true

	tail, err := s.dec.Finish()
	if err != nil {
		return s.fail(fmt.Errorf("decode chunk: %w", err))
	}
	s.buf += tail
	if err := s.pass(true); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Session) fail(err error) error {
	s.err = err
	return err
}

// pass scans the buffer once and drops what it consumed.
func (s *Session) pass(final bool) error {
	if s.logger.Enabled(s.ctx, slog.LevelDebug) {
		s.logger.Debug("scan pass",
			logging.Offset(s.offset),
			logging.Int("buffered", len(s.buf)),
			logging.Bool("final", final),
		)
	}
	consumed, err := s.scan(final)
	s.buf = s.buf[consumed:]
	s.offset += consumed
	if err != nil {
		return err
	}
	if len(s.buf) == 0 {
		s.buf = ""
		return nil
	}
	if final {
		return unmatchedTail(s.offset, s.buf)
	}
	if len(s.buf) >= s.aggregateUntil {
		return tooLong(s.offset, s.buf)
	}
	return nil
}

// scan dispatches matches from the start of the buffer and returns how many
// bytes it consumed. Mid-stream it only trusts a match while at least
// aggregateUntil bytes are visible from the cursor; the threshold bounds the
// longest token, so a match found there is final even when it reaches the end
// of the buffer.
func (s *Session) scan(final bool) (int, error) {
	cursor := 0
	for cursor < len(s.buf) {
		rest := s.buf[cursor:]
		if !final && len(rest) < s.aggregateUntil {
			break
		}
		loc := s.lx.re.FindStringSubmatchIndex(rest)
		if loc == nil {
			if !final {
				break
			}
			return cursor, unmatchedTail(s.offset+cursor, rest)
		}
		if loc[0] > 0 {
			return cursor, unmatchedSpan(s.offset+cursor, rest[:loc[0]])
		}
		if loc[1] == 0 {
			return cursor, emptyMatch(s.offset + cursor)
		}
		if err := s.dispatch(firing(loc), rest[:loc[1]], s.offset+cursor); err != nil {
			return cursor, err
		}
		cursor += loc[1]
	}
	return cursor, nil
}

func (s *Session) dispatch(rule int, text string, offset int) error {
	if s.logger.Enabled(s.ctx, slog.LevelDebug) {
		s.logger.Debug("token",
			logging.Rule(s.lx.Name(rule)),
			logging.Offset(offset),
			logging.Int("length", len(text)),
		)
	}
	if err := s.lx.set[rule].Action(s.ctx, text, offset); err != nil {
		return err
	}
	s.tokens++
	return nil
}
