package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a stored session.
type Status string

const (
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Session is one stored lexing run.
type Session struct {
	ID           string
	Input        string
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	TokenCount   int
	ErrorKind    string
	ErrorMessage string
}

// Token is one stored match.
type Token struct {
	Seq      int
	Rule     int
	RuleName string
	Text     string
	Offset   int
}

// errorClassifier is implemented by errors that carry a kind, such as
// *lexer.LexError.
type errorClassifier interface {
	ErrorKind() string
}

// BeginSession records the start of a session.
func (s *Store) BeginSession(ctx context.Context, id, input string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.exec(ctx,
		`INSERT INTO sessions (id, input, status, started_at) VALUES (?, ?, ?, ?)`,
		id, input, StatusRunning, now,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Append stores one token of a running session.
func (s *Store) Append(ctx context.Context, sessionID string, tok Token) error {
	if err := s.exec(ctx,
		`INSERT INTO tokens (session_id, seq, rule, rule_name, text, start_offset) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, tok.Seq, tok.Rule, tok.RuleName, tok.Text, tok.Offset,
	); err != nil {
		return fmt.Errorf("insert token %d: %w", tok.Seq, err)
	}
	return nil
}

// FinishSession marks a session complete, or failed when runErr is non-nil.
func (s *Store) FinishSession(ctx context.Context, id string, tokens int, runErr error) error {
	status := StatusComplete
	var kind, message sql.NullString
	if runErr != nil {
		status = StatusFailed
		message = sql.NullString{String: runErr.Error(), Valid: true}
		var classifier errorClassifier
		if errors.As(runErr, &classifier) {
			kind = sql.NullString{String: classifier.ErrorKind(), Valid: true}
		}
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.exec(ctx,
		`UPDATE sessions SET status = ?, finished_at = ?, token_count = ?, error_kind = ?, error_message = ? WHERE id = ?`,
		status, now, tokens, kind, message, id,
	); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Session fetches one session by id.
func (s *Store) Session(ctx context.Context, id string) (*Session, error) {
	ctx = ensureContext(ctx)
	var (
		out                  Session
		startedRaw           string
		finishedRaw          sql.NullString
		errorKind, errorText sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input, status, started_at, finished_at, token_count, error_kind, error_message
         FROM sessions WHERE id = ?`, id,
	).Scan(&out.ID, &out.Input, &out.Status, &startedRaw, &finishedRaw, &out.TokenCount, &errorKind, &errorText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	out.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		out.FinishedAt = parseTime(finishedRaw.String)
	}
	out.ErrorKind = errorKind.String
	out.ErrorMessage = errorText.String
	return &out, nil
}

// Tokens returns the stored tokens of a session in dispatch order.
func (s *Store) Tokens(ctx context.Context, sessionID string) ([]Token, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, rule, rule_name, text, start_offset FROM tokens WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var out []Token
	for rows.Next() {
		var tok Token
		if err := rows.Scan(&tok.Seq, &tok.Rule, &tok.RuleName, &tok.Text, &tok.Offset); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		out = append(out, tok)
	}
	return out, rows.Err()
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
