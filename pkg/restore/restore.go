// Package restore implements reverse conversion: it reads lines from a stream
// and replaces glyphs by the TeX sequences they were concealed from.
//
// The engine keeps two handle sequences over one token arena: the committed
// tokens of the current line, and a pushback stack of tokens already read
// from the stream but not yet committed. Lookahead that does not lead to a
// match is pushed back, so the stream is read exactly once.
package restore

import (
	"io"
	"slices"

	"github.com/yaklabco/unitex/pkg/rules"
	"github.com/yaklabco/unitex/pkg/token"
	"github.com/yaklabco/unitex/pkg/transcode"
	"github.com/yaklabco/unitex/pkg/trie"
)

// Engine restores one stream line by line. It is not safe for concurrent use.
type Engine struct {
	inverse *trie.Trie[rules.Source]
	tk      *token.Tokenizer
	arena   token.Arena

	// tokens is the committed sequence of the current line.
	tokens []token.Handle

	// pending is the pushback stack. Its top is the next token to read.
	pending []token.Handle

	restored int
	adjacent bool
}

// New returns an Engine reading from r and restoring with the inverse index
// of set.
func New(set *rules.Set, r io.Reader) *Engine {
	return &Engine{
		inverse: set.Inverse,
		tk:      token.NewTokenizer(r),
	}
}

// KeepAdjacent stops the engine from inserting a blank between a restored
// control word and a following letter. It suits callers that conceal the
// restored tokens again instead of writing them out as text.
func (e *Engine) KeepAdjacent() {
	e.adjacent = true
}

// Arena returns the arena holding the current line.
func (e *Engine) Arena() *token.Arena {
	return &e.arena
}

// Tokens returns the committed tokens of the current line. The last one is a
// newline or the end of the stream. The slice is reused by the next read.
func (e *Engine) Tokens() []token.Handle {
	return e.tokens
}

// AtEOF reports whether the current line ended the stream.
func (e *Engine) AtEOF() bool {
	return len(e.tokens) > 0 && e.arena.IsEndOfStream(e.tokens[len(e.tokens)-1])
}

// SkipByte consumes the next byte of the stream if it equals c. It is only
// meaningful between lines.
func (e *Engine) SkipByte(c byte) bool {
	return e.tk.SkipByte(c)
}

// Restored returns the number of glyph sequences replaced in the current line.
func (e *Engine) Restored() int {
	return e.restored
}

func (e *Engine) reset() {
	e.restored = 0
	e.arena.Reset()
	e.tokens = e.tokens[:0]
	e.pending = e.pending[:0]
}

// ReadRawLine reads the next line without restoring anything.
func (e *Engine) ReadRawLine() error {
	e.reset()
	for {
		if h := e.next(); e.arena.IsLineEnd(h) {
			return e.tk.Err()
		}
	}
}

// ReadLine reads the next line, restoring glyphs and coalescing adjacent
// subscript or superscript members into one group. It returns the first
// read error of the underlying stream.
func (e *Engine) ReadLine() error {
	e.reset()
	a := &e.arena

	for {
		at := len(e.tokens)
		h, restored := e.restoreToken()
		if !restored && a.IsLineEnd(h) {
			return e.tk.Err()
		}
		if isTrigger(a.Lead(h)) {
			e.coalesce(at, restored)
		}
	}
}

// next commits the next token, from the pushback stack if it is not empty.
func (e *Engine) next() token.Handle {
	var h token.Handle
	if n := len(e.pending); n > 0 {
		h = e.pending[n-1]
		e.pending = e.pending[:n-1]
	} else {
		h = e.tk.Next(&e.arena)
	}
	e.tokens = append(e.tokens, h)
	return h
}

// peek returns the next token without committing it.
func (e *Engine) peek() token.Handle {
	if n := len(e.pending); n > 0 {
		return e.pending[n-1]
	}
	h := e.tk.Next(&e.arena)
	e.pending = append(e.pending, h)
	return h
}

// unread moves every committed token from index n on back to the pushback
// stack, preserving their order.
func (e *Engine) unread(n int) {
	for len(e.tokens) > n {
		last := len(e.tokens) - 1
		e.pending = append(e.pending, e.tokens[last])
		e.tokens = e.tokens[:last]
	}
}

// restoreToken commits the next token and, when it starts a glyph sequence
// known to the inverse index, replaces the longest such sequence by its TeX
// source. It returns the first committed token and whether a replacement
// happened.
func (e *Engine) restoreToken() (token.Handle, bool) {
	a := &e.arena
	first := len(e.tokens)
	h := e.next()

	if a.IsLineEnd(h) {
		return h, false
	}
	if transcode.IsASCII(a.Lead(h)) && transcode.IsASCII(a.Lead(e.peek())) {
		return h, false
	}

	node := e.inverse.Root().Child(a.Text(h))
	if node == nil {
		return h, false
	}

	var (
		best   int
		source rules.Source
	)
	if payload, ok := node.Payload(); ok {
		best, source = 1, payload
	}
	for node.HasChildren() {
		t := e.next()
		if node = node.Child(a.Text(t)); node == nil {
			break
		}
		if payload, ok := node.Payload(); ok {
			best, source = len(e.tokens)-first, payload
		}
	}

	e.unread(first + max(best, 1))
	if best == 0 {
		return h, false
	}

	for _, t := range e.tokens[first:] {
		a.AppendSpace(t)
	}
	e.tokens = e.tokens[:first]
	for _, p := range source {
		a.AppendEncoded(p.Space)
		e.tokens = append(e.tokens, a.AppendToken(p.Text))
	}

	e.restored++
	e.separateNames()
	return e.tokens[first], true
}

// separateNames keeps a restored control word from running into a following
// letter, which would otherwise read back as one longer control word.
func (e *Engine) separateNames() {
	a := &e.arena
	if e.adjacent || !a.IsControlWord(e.tokens[len(e.tokens)-1]) {
		return
	}

	nx := e.peek()
	if a.HasSpace(nx) || !transcode.IsAlpha(a.Lead(nx)) {
		return
	}
	a.AppendBlank()
	e.pending[len(e.pending)-1] = a.Relocate(nx)
}

// coalesce handles a subscript or superscript trigger committed at index at.
// Members that follow with the same trigger are merged into one braced group
// opened after the first trigger. When the run ends every token after the
// first trigger is pushed back so that the main loop scans it again.
func (e *Engine) coalesce(at int, restored bool) {
	a := &e.arena
	leader := at
	trigger := a.Lead(e.tokens[at])

	// braced tracks whether the last member is a braced group, whose closing
	// brace then also closes the merged group.
	var ended, braced bool

	for {
		if !ended && !restored {
			if _, ok := e.restoreToken(); !ok {
				e.unread(at + 1)
				ended = !e.skipScript()
			}
		}
		if !ended && at+1 >= len(e.tokens) {
			ended = true
		}

		if ended {
			if at != leader && !braced && a.Is(e.tokens[leader+1], '{') {
				e.unread(at)
				e.pending = append(e.pending, a.AppendChar('}'))
			}
			e.unread(leader + 1)
			return
		}

		if at == leader {
			braced = a.Is(e.tokens[at+1], '{')
		} else {
			braced = e.merge(leader, at, braced)
		}

		at = len(e.tokens)
		var h token.Handle
		h, restored = e.restoreToken()
		if a.Lead(h) != trigger {
			ended = true
		}
	}
}

// merge joins the member whose trigger is at index at into the group opened
// by the trigger at leader. The member's trigger and opening brace go, as does
// the closing brace of the previous member when prevBraced is set, and an
// opening brace is added after the leader if there is none yet. It reports
// whether the merged member is a braced group.
func (e *Engine) merge(leader, at int, prevBraced bool) bool {
	a := &e.arena

	ii := at
	if prevBraced && a.Is(e.tokens[at-1], '}') {
		ii--
	}
	jj := at + 1
	braced := jj+1 < len(e.tokens) && a.Is(e.tokens[jj], '{')
	if braced {
		jj++
	}

	for k := ii; k <= jj; k++ {
		a.AppendSpace(e.tokens[k])
	}
	if !a.Pending() && transcode.IsAlpha(a.Lead(e.tokens[jj])) && a.IsControlWord(e.tokens[ii-1]) {
		a.AppendBlank()
	}
	if a.Pending() {
		e.tokens[jj] = a.Relocate(e.tokens[jj])
	}
	e.tokens = slices.Delete(e.tokens, ii, jj)

	if !a.Is(e.tokens[leader+1], '{') {
		e.tokens = slices.Insert(e.tokens, leader+1, a.AppendChar('{'))
	}
	return braced
}

// skipScript commits the argument of a trigger that could not be restored: a
// braced group, a control sequence with its braced arguments, or a single
// token. It reports false when a group is still open at the end of the line.
func (e *Engine) skipScript() bool {
	a := &e.arena
	h := e.next()

	switch {
	case a.Is(h, '{'):
		return e.skipGroup()
	case a.Lead(h) == transcode.Encode('\\'):
		for {
			nx := e.peek()
			if !a.Is(nx, '{') || a.HasSpace(nx) {
				return true
			}
			e.next()
			if !e.skipGroup() {
				return false
			}
		}
	case a.IsLineEnd(h):
		return false
	}
	return true
}

// skipGroup commits tokens up to the brace closing an already committed
// opening brace.
func (e *Engine) skipGroup() bool {
	a := &e.arena
	for depth := 1; ; {
		h := e.next()
		switch {
		case a.Is(h, '{'):
			depth++
		case a.Is(h, '}'):
			depth--
			if depth == 0 {
				return true
			}
		case a.IsLineEnd(h):
			return false
		}
	}
}

func isTrigger(lead byte) bool {
	return lead == transcode.Encode('_') || lead == transcode.Encode('^')
}
