// Package conceal implements forward conversion: it annotates a tokenized
// line with the glyphs that replace runs of TeX tokens.
package conceal

import (
	"github.com/yaklabco/unitex/pkg/rules"
	"github.com/yaklabco/unitex/pkg/token"
	"github.com/yaklabco/unitex/pkg/transcode"
	"github.com/yaklabco/unitex/pkg/trie"
)

// Annotation describes what to emit at one token position. A zero Span passes
// the token through. Otherwise Glyph replaces Span tokens starting here, and
// the leading whitespace of every covered token but the first is dropped.
type Annotation struct {
	Span  int
	Glyph rules.Glyph
}

// Engine conceals lines using a compiled rule set. It holds no per-line state
// and may be shared.
type Engine struct {
	set *rules.Set
}

// New returns an Engine for set, which must carry the forward indices.
func New(set *rules.Set) *Engine {
	return &Engine{set: set}
}

// Conceal annotates tokens, one line read into a. ann is reused when it has
// the capacity and the annotations are returned, one per token.
func (e *Engine) Conceal(a *token.Arena, tokens []token.Handle, ann []Annotation) []Annotation {
	if cap(ann) < len(tokens) {
		ann = make([]Annotation, len(tokens))
	}
	ann = ann[:len(tokens)]

	for i := 0; i < len(tokens); {
		h := tokens[i]
		trigger := scriptTrigger(a, h)

		if e.set.First.Has(a.Lead(h)) || trigger != 0 {
			if span, glyph := longestMatch(e.set.Direct, a, tokens, i); span > 0 {
				ann[i] = Annotation{Span: span, Glyph: glyph}
				i += span
				continue
			}
			if trigger != 0 && i+1 < len(tokens) && a.Is(tokens[i+1], '{') {
				i = e.group(a, tokens, ann, i, trigger)
				continue
			}
		}

		ann[i] = Annotation{}
		i++
	}

	return ann
}

// group conceals the body of a braced group opened at start. The body must
// reduce entirely to glyphs; otherwise the trigger and brace pass through and
// scanning resumes at the first body token. It returns the next position.
func (e *Engine) group(a *token.Arena, tokens []token.Handle, ann []Annotation, start int, trigger byte) int {
	body := e.set.Body(trigger)
	first := start + 2

	for i := first; ; {
		span, glyph := longestMatch(body, a, tokens, i)
		if span == 0 {
			ann[start] = Annotation{}
			ann[start+1] = Annotation{}
			return first
		}
		ann[i] = Annotation{Span: span, Glyph: glyph}
		i += span

		if i < len(tokens) && a.Is(tokens[i], '}') {
			ann[start] = Annotation{Span: 2}
			ann[start+1] = Annotation{}
			ann[i] = Annotation{Span: 1}
			return i + 1
		}
	}
}

func longestMatch(t *trie.Trie[rules.Glyph], a *token.Arena, tokens []token.Handle, i int) (int, rules.Glyph) {
	if t == nil {
		return 0, nil
	}
	return t.LongestMatch(func(k int) ([]byte, bool) {
		if i+k >= len(tokens) {
			return nil, false
		}
		return a.Text(tokens[i+k]), true
	})
}

func scriptTrigger(a *token.Arena, h token.Handle) byte {
	switch {
	case a.Is(h, '_'):
		return '_'
	case a.Is(h, '^'):
		return '^'
	}
	return 0
}

// AppendLine appends the raw output for one line to dst. ann may be nil, in
// which case every token passes through. Invalid tokens are written as their
// literal bytes and the end-of-stream token writes nothing.
func AppendLine(dst []byte, a *token.Arena, tokens []token.Handle, ann []Annotation) []byte {
	for i := 0; i < len(tokens); {
		h := tokens[i]
		dst = transcode.AppendDecoded(dst, a.Space(h))

		if ann != nil && ann[i].Span > 0 {
			dst = transcode.AppendDecoded(dst, ann[i].Glyph)
			i += ann[i].Span
			continue
		}

		switch {
		case a.IsEndOfStream(h):
			return dst
		case a.IsInvalid(h):
			dst = append(dst, a.Literal(h)...)
		default:
			dst = transcode.AppendDecoded(dst, a.Text(h))
		}
		i++
	}
	return dst
}
