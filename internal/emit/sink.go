package emit

import (
	"context"
	"errors"
)

// Token is one emitted match.
type Token struct {
	Session  string `json:"session"`
	Input    string `json:"input"`
	Seq      int    `json:"seq"`
	Rule     int    `json:"rule"`
	RuleName string `json:"name"`
	Text     string `json:"text"`
	Offset   int    `json:"offset"`
}

// Sink consumes tokens.
type Sink interface {
	Emit(ctx context.Context, tok Token) error
	Flush() error
}

type multi []Sink

// Multi returns a Sink that forwards to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Emit(ctx context.Context, tok Token) error {
	for _, s := range m {
		if err := s.Emit(ctx, tok); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Flush() error {
	var errs []error
	for _, s := range m {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
