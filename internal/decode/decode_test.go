package decode_test

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"

	"relexer/internal/decode"
)

func decodeInPieces(t *testing.T, d *decode.Decoder, input []byte, size int) string {
	t.Helper()
	var out strings.Builder
	for start := 0; start < len(input); start += size {
		end := min(start+size, len(input))
		text, err := d.Decode(input[start:end])
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		out.WriteString(text)
	}
	tail, err := d.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	out.WriteString(tail)
	return out.String()
}

func TestDecodeCarriesSplitUTF8(t *testing.T) {
	input := "héllo wörld ✓ 日本"
	for size := 1; size <= 4; size++ {
		d, err := decode.NewDecoder("")
		if err != nil {
			t.Fatalf("NewDecoder: %v", err)
		}
		if got := decodeInPieces(t, d, []byte(input), size); got != input {
			t.Fatalf("chunk size %d: got %q want %q", size, got, input)
		}
	}
}

func TestDecodeHoldsIncompleteTail(t *testing.T) {
	d, err := decode.NewDecoder("utf-8")
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	check := []byte("✓")
	text, err := d.Decode(append([]byte("ab"), check[:2]...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if text != "ab" {
		t.Fatalf("expected partial character to be held back, got %q", text)
	}
	if d.Pending() != 2 {
		t.Fatalf("expected 2 pending bytes, got %d", d.Pending())
	}
	text, err = d.Decode(check[2:])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if text != "✓" {
		t.Fatalf("expected completed character, got %q", text)
	}
}

func TestFinishDropsUndecodableRemainder(t *testing.T) {
	d, err := decode.NewDecoder("utf-8")
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	text, err := d.Decode([]byte{'o', 'k', 0xE2, 0x9C})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tail, err := d.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if text+tail != "ok" {
		t.Fatalf("expected remainder to be dropped, got %q", text+tail)
	}
}

func TestDecodeShiftJIS(t *testing.T) {
	want := "日本語テキスト"
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(want))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	d, err := decode.NewDecoder("shift_jis")
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if got := decodeInPieces(t, d, encoded, 1); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "utf8", "latin1", "windows-1252", "Shift_JIS", "ISO-8859-15"} {
		if _, err := decode.Lookup(name); err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := decode.Lookup("klingon-7"); !errors.Is(err, decode.ErrUnknownEncoding) {
		t.Fatalf("expected ErrUnknownEncoding, got %v", err)
	}
}
