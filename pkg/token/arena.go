// Package token provides the token arena shared by the concealment and
// restoration engines, and the tokenizer that fills it.
//
// An arena is one append-only buffer of encoded bytes. Every token is
// terminated by transcode.Terminator and addressed by a Handle, the offset of
// its first text byte. The bytes between the previous terminator and a
// token's handle are the token's leading whitespace.
//
// Slices returned by Text and Space alias the arena buffer and are only valid
// until the next append. Anything that must survive an append is kept as a
// Handle and re-read afterwards.
package token

import "github.com/yaklabco/unitex/pkg/transcode"

// Handle is the stable address of a token inside an Arena.
type Handle int

// Arena stores the encoded bytes of one line worth of tokens.
type Arena struct {
	buf []byte
}

// Reset empties the arena, keeping its capacity.
func (a *Arena) Reset() {
	a.buf = append(a.buf[:0], transcode.Terminator)
}

// Len returns the number of bytes stored.
func (a *Arena) Len() int {
	a.ensure()
	return len(a.buf)
}

// ensure makes the zero Arena usable.
func (a *Arena) ensure() {
	if len(a.buf) == 0 {
		a.buf = append(a.buf, transcode.Terminator)
	}
}

func (a *Arena) push(b byte) {
	a.buf = append(a.buf, b)
}

// Lead returns the first text byte of a token.
func (a *Arena) Lead(h Handle) byte {
	return a.buf[h]
}

// Text returns the encoded text of a token, without its leading whitespace.
func (a *Arena) Text(h Handle) []byte {
	end := int(h)
	for a.buf[end] != transcode.Terminator {
		end++
	}
	return a.buf[h:end:end]
}

// Space returns the encoded leading whitespace of a token.
func (a *Arena) Space(h Handle) []byte {
	start := int(h)
	for a.buf[start-1] != transcode.Terminator {
		start--
	}
	return a.buf[start:h:h]
}

// HasSpace reports whether a token carries leading whitespace.
func (a *Arena) HasSpace(h Handle) bool {
	return a.buf[h-1] != transcode.Terminator
}

// Literal returns the raw bytes of an invalid token, without the marker.
func (a *Arena) Literal(h Handle) []byte {
	return a.Text(h)[1:]
}

// String returns the raw text of a token.
func (a *Arena) String(h Handle) string {
	if a.IsInvalid(h) {
		return string(a.Literal(h))
	}
	return transcode.DecodeString(a.Text(h))
}

// Is reports whether a token is exactly the single raw character c.
func (a *Arena) Is(h Handle, c byte) bool {
	return a.buf[h] == transcode.Encode(c) && a.buf[h+1] == transcode.Terminator
}

// IsLineEnd reports whether a token is a newline or the end of the stream.
func (a *Arena) IsLineEnd(h Handle) bool {
	lead := a.buf[h]
	return lead == transcode.Encode('\n') || lead == transcode.EndOfStream
}

// IsEndOfStream reports whether a token marks the end of the stream.
func (a *Arena) IsEndOfStream(h Handle) bool {
	return a.buf[h] == transcode.EndOfStream
}

// IsInvalid reports whether a token holds an ill-formed byte run.
func (a *Arena) IsInvalid(h Handle) bool {
	return a.buf[h] == transcode.Invalid
}

// IsControlWord reports whether a token is a backslash followed by letters.
func (a *Arena) IsControlWord(h Handle) bool {
	return a.buf[h] == transcode.Encode('\\') && transcode.IsAlpha(a.buf[h+1])
}

// Pending reports whether whitespace has been appended that no token owns yet.
func (a *Arena) Pending() bool {
	a.ensure()
	return a.buf[len(a.buf)-1] != transcode.Terminator
}

// AppendSpace appends a copy of a token's leading whitespace. It becomes the
// leading whitespace of the next token appended.
func (a *Arena) AppendSpace(h Handle) {
	a.ensure()
	end := int(h)
	start := end
	for a.buf[start-1] != transcode.Terminator {
		start--
	}
	for i := start; i < end; i++ {
		a.buf = append(a.buf, a.buf[i])
	}
}

// AppendBlank appends one space of pending whitespace.
func (a *Arena) AppendBlank() {
	a.ensure()
	a.push(transcode.Encode(' '))
}

// AppendEncoded appends already encoded bytes as pending whitespace.
func (a *Arena) AppendEncoded(space []byte) {
	a.ensure()
	a.buf = append(a.buf, space...)
}

// AppendToken appends encoded text as a new token and returns its handle.
// Pending whitespace becomes the token's leading whitespace.
func (a *Arena) AppendToken(text []byte) Handle {
	a.ensure()
	h := Handle(len(a.buf))
	a.buf = append(a.buf, text...)
	a.push(transcode.Terminator)
	return h
}

// AppendChar appends the raw character c as a new token.
func (a *Arena) AppendChar(c byte) Handle {
	a.ensure()
	h := Handle(len(a.buf))
	a.push(transcode.Encode(c))
	a.push(transcode.Terminator)
	return h
}

// Relocate copies the text of a token to the end of the arena and returns the
// handle of the copy. Pending whitespace becomes the copy's leading whitespace.
func (a *Arena) Relocate(h Handle) Handle {
	a.ensure()
	start := int(h)
	end := start
	for a.buf[end] != transcode.Terminator {
		end++
	}
	moved := Handle(len(a.buf))
	for i := start; i < end; i++ {
		a.buf = append(a.buf, a.buf[i])
	}
	a.push(transcode.Terminator)
	return moved
}

// markInvalid turns the token being built at h into an invalid token: its
// bytes are stored raw, so that a lead byte which would encode to a sentinel
// cannot end the token early, and the text is prefixed by transcode.Invalid.
func (a *Arena) markInvalid(h Handle) {
	for i := int(h); i < len(a.buf); i++ {
		a.buf[i] = transcode.Decode(a.buf[i])
	}
	a.buf = append(a.buf, 0)
	copy(a.buf[h+1:], a.buf[h:])
	a.buf[h] = transcode.Invalid
}
