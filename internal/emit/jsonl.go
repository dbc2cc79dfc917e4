package emit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// JSONLines writes one JSON object per token.
type JSONLines struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLines returns a JSONLines sink writing to w.
func NewJSONLines(w io.Writer) *JSONLines {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLines{w: bw, enc: enc}
}

func (j *JSONLines) Emit(_ context.Context, tok Token) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(tok); err != nil {
		return fmt.Errorf("encode token %d: %w", tok.Seq, err)
	}
	return nil
}

func (j *JSONLines) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.w.Flush()
}
