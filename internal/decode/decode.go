// Package decode turns byte chunks into text one chunk at a time.
//
// A Decoder wraps an x/text transformer and keeps any incomplete trailing
// multi-byte sequence until the next chunk completes it, so callers never see
// half a character regardless of where chunk boundaries fall.
package decode

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no encoding name is configured.
const DefaultEncoding = "utf-8"

const scratchSize = 4096

// ErrUnknownEncoding is returned by Lookup for labels neither index knows.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Lookup resolves an encoding label such as "utf-8", "latin1" or
// "shift_jis". WHATWG labels are tried first, then IANA names.
func Lookup(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" || label == DefaultEncoding || label == "utf8" {
		return unicode.UTF8, nil
	}
	if enc, err := htmlindex.Get(label); err == nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// Decoder converts successive chunks of one stream. It is not safe for
// concurrent use.
type Decoder struct {
	t       transform.Transformer
	carry   []byte
	scratch []byte
}

// NewDecoder returns a Decoder for the named encoding.
func NewDecoder(name string) (*Decoder, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return &Decoder{t: enc.NewDecoder(), scratch: make([]byte, scratchSize)}, nil
}

// Pending reports how many undecoded bytes are held back.
func (d *Decoder) Pending() int { return len(d.carry) }

// Decode returns the text for chunk plus any bytes carried from the previous
// call. An incomplete trailing sequence is kept for the next call.
func (d *Decoder) Decode(chunk []byte) (string, error) {
	src := chunk
	if len(d.carry) > 0 {
		src = append(d.carry, chunk...)
		d.carry = nil
	}
	var out strings.Builder
	out.Grow(len(src))
	for len(src) > 0 {
		nDst, nSrc, err := d.t.Transform(d.scratch, src, false)
		out.Write(d.scratch[:nDst])
		src = src[nSrc:]
		switch {
		case err == nil:
			if nSrc == 0 && nDst == 0 {
				return out.String(), nil
			}
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				d.scratch = make([]byte, 2*len(d.scratch))
			}
		case errors.Is(err, transform.ErrShortSrc):
			d.carry = append([]byte(nil), src...)
			return out.String(), nil
		default:
			return out.String(), err
		}
	}
	return out.String(), nil
}

// Finish ends the stream. Carried bytes that never formed a complete
// character are dropped; stateful decoders get a chance to flush.
func (d *Decoder) Finish() (string, error) {
	d.carry = nil
	nDst, _, err := d.t.Transform(d.scratch, nil, true)
	text := string(d.scratch[:nDst])
	d.t.Reset()
	return text, err
}
