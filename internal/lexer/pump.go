package lexer

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// pump marks a unit of work (decode, scan pass, actions) as in flight. Input
// is only accepted while it is idle.
type pump struct {
	busy bool
}

func (p *pump) acquire() error {
	if p.busy {
		return ErrReentrant
	}
	p.busy = true
	return nil
}

func (p *pump) release() { p.busy = false }

// Drain pulls r one chunk of size bytes at a time and closes the session at
// EOF. The next Read happens only after Write has returned, i.e. after every
// action for the previous chunk completed.
func (s *Session) Drain(ctx context.Context, r io.Reader, size int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if size <= 0 {
		size = DefaultReadSize
	}
	chunk := make([]byte, size)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := r.Read(chunk)
		if n > 0 {
			if _, err := s.Write(chunk[:n]); err != nil {
				return err
			}
		}
		if errors.Is(readErr, io.EOF) {
			return s.Close()
		}
		if readErr != nil {
			return fmt.Errorf("read input: %w", readErr)
		}
	}
}
