package emit

import (
	"context"

	"relexer/internal/tokenstore"
)

// Store appends tokens to a tokenstore under their session id. Session rows
// are opened and closed by the caller.
type Store struct {
	store *tokenstore.Store
}

// NewStore wraps s as a Sink.
func NewStore(s *tokenstore.Store) *Store {
	return &Store{store: s}
}

func (s *Store) Emit(ctx context.Context, tok Token) error {
	return s.store.Append(ctx, tok.Session, tokenstore.Token{
		Seq:      tok.Seq,
		Rule:     tok.Rule,
		RuleName: tok.RuleName,
		Text:     tok.Text,
		Offset:   tok.Offset,
	})
}

func (s *Store) Flush() error { return nil }
