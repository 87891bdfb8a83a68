package token

import (
	"bufio"
	"errors"
	"io"

	"github.com/yaklabco/unitex/pkg/transcode"
)

// Tokenizer pulls lexical tokens from a byte stream into an Arena.
//
// A token is optional leading blanks followed by one of: a control word
// (backslash and a run of ASCII letters), a control symbol (backslash and one
// character), or a single character. Multi-byte UTF-8 characters are kept
// whole.
type Tokenizer struct {
	r    *bufio.Reader
	err  error
	done bool
}

// NewTokenizer returns a Tokenizer reading from r.
func NewTokenizer(r io.Reader) *Tokenizer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Tokenizer{r: br}
}

// Err returns the first read error other than io.EOF.
func (t *Tokenizer) Err() error {
	return t.err
}

func (t *Tokenizer) readByte() (byte, bool) {
	if t.done {
		return 0, false
	}
	c, err := t.r.ReadByte()
	if err != nil {
		t.done = true
		if !errors.Is(err, io.EOF) {
			t.err = err
		}
		return 0, false
	}
	return c, true
}

func (t *Tokenizer) unreadByte() {
	_ = t.r.UnreadByte()
}

// SkipByte consumes the next byte if it equals c.
func (t *Tokenizer) SkipByte(c byte) bool {
	b, ok := t.readByte()
	if !ok {
		return false
	}
	if b == c {
		return true
	}
	t.unreadByte()
	return false
}

// Next reads one token into the arena and returns its handle. At the end of
// the stream the token text is transcode.EndOfStream.
func (t *Tokenizer) Next(a *Arena) Handle {
	a.ensure()

	c, ok := t.readByte()
	for ok && isBlank(c) {
		a.push(transcode.Encode(c))
		c, ok = t.readByte()
	}

	h := Handle(len(a.buf))
	if !ok {
		a.push(transcode.EndOfStream)
		a.push(transcode.Terminator)
		return h
	}

	a.push(transcode.Encode(c))
	switch {
	case c == '\\':
		t.readEscaped(a, h)
	case c >= 0x80:
		if !t.readTail(a, c) {
			a.markInvalid(h)
		}
	}
	a.push(transcode.Terminator)

	return h
}

// readEscaped reads what follows a backslash.
func (t *Tokenizer) readEscaped(a *Arena, h Handle) {
	c, ok := t.readByte()
	switch {
	case !ok:
	case isLetter(c):
		for ok && isLetter(c) {
			a.push(transcode.Encode(c))
			c, ok = t.readByte()
		}
		if ok {
			t.unreadByte()
		}
	case c == '\n':
		t.unreadByte()
	default:
		a.push(transcode.Encode(c))
		if c >= 0x80 && !t.readTail(a, c) {
			a.markInvalid(h)
		}
	}
}

// readTail reads the continuation bytes of a UTF-8 sequence starting with
// lead. It reports false for an inadmissible lead or a premature
// non-continuation byte, which is left unread.
func (t *Tokenizer) readTail(a *Arena, lead byte) bool {
	var n int
	switch {
	case lead < 0xc0:
		return false
	case lead < 0xe0:
		n = 1
	case lead < 0xf0:
		n = 2
	case lead < 0xf8:
		n = 3
	default:
		return false
	}

	for range n {
		c, ok := t.readByte()
		if !ok {
			return false
		}
		if c&0xc0 != 0x80 {
			t.unreadByte()
			return false
		}
		a.push(transcode.Encode(c))
	}
	return true
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
