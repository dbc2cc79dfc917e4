package emit

import (
	"context"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table collects tokens and renders them as one table on Flush, grouped by
// input and ordered by offset.
type Table struct {
	mu     sync.Mutex
	w      io.Writer
	tokens []Token
}

// NewTable returns a Table sink rendering to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) Emit(_ context.Context, tok Token) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens = append(t.tokens, tok)
	return nil
}

func (t *Table) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.tokens) == 0 {
		return nil
	}
	sort.SliceStable(t.tokens, func(i, j int) bool {
		if t.tokens[i].Input != t.tokens[j].Input {
			return t.tokens[i].Input < t.tokens[j].Input
		}
		return t.tokens[i].Seq < t.tokens[j].Seq
	})

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Input", "Offset", "Rule", "Text"})
	for _, tok := range t.tokens {
		tw.AppendRow(table.Row{tok.Input, strconv.Itoa(tok.Offset), tok.RuleName, strconv.Quote(tok.Text)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	if _, err := io.WriteString(t.w, tw.Render()+"\n"); err != nil {
		return err
	}
	t.tokens = t.tokens[:0]
	return nil
}
