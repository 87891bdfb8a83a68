// Package rules compiles rule files into the lookup structures used by the
// concealment and restoration engines.
//
// A rule file holds one rule per line: a TeX token sequence, a tab, and the
// Unicode text it conceals to. Anything after a second tab is a comment, as
// are lines starting with '#'.
package rules

import (
	"fmt"
	"strings"

	"github.com/yaklabco/unitex/pkg/transcode"
	"github.com/yaklabco/unitex/pkg/trie"
)

// Piece is one token of a rule's TeX source: its encoded leading whitespace
// and encoded text.
type Piece struct {
	Space []byte
	Text  []byte
}

// Source is the TeX token sequence a glyph restores to.
type Source []Piece

// String returns the raw TeX text.
func (s Source) String() string {
	var sb strings.Builder
	for _, p := range s {
		sb.WriteString(transcode.DecodeString(p.Space))
		sb.WriteString(transcode.DecodeString(p.Text))
	}
	return sb.String()
}

// Glyph is the encoded Unicode text a TeX sequence conceals to.
type Glyph []byte

// String returns the raw Unicode text.
func (g Glyph) String() string {
	return transcode.DecodeString(g)
}

// Rule is one compiled line of a rule file.
type Rule struct {
	// File is the rule file the rule was read from.
	File string

	// Line is the 1-based line number within File.
	Line int

	source Source
	chars  [][]byte
}

// TeX returns the rule's TeX sequence as written, minus surrounding spaces.
func (r Rule) TeX() string {
	return r.source.String()
}

// Glyph returns the rule's Unicode text.
func (r Rule) Glyph() string {
	return r.glyph().String()
}

func (r Rule) glyph() Glyph {
	var g Glyph
	for _, c := range r.chars {
		g = append(g, c...)
	}
	return g
}

// Script reports the trigger of a subscript or superscript rule, or 0.
func (r Rule) Script() byte {
	if len(r.source) == 0 || len(r.source[0].Text) != 1 {
		return 0
	}
	switch c := transcode.Decode(r.source[0].Text[0]); c {
	case '_', '^':
		return c
	}
	return 0
}

// Options controls which structures Compile builds.
type Options struct {
	// InverseOnly builds only the inverse index, which is all reverse mode needs.
	InverseOnly bool
}

// Set holds the compiled rule indices. It is read-only after Compile and may
// be shared by any number of engines.
type Set struct {
	// Direct maps TeX token sequences to glyphs.
	Direct *trie.Trie[Glyph]

	// Sub and Sup map the tokens inside a _{...} or ^{...} group to the glyph
	// for the group body.
	Sub *trie.Trie[Glyph]
	Sup *trie.Trie[Glyph]

	// Inverse maps glyph characters back to TeX sources.
	Inverse *trie.Trie[Source]

	// First holds the lead byte of every Direct key.
	First trie.ByteSet

	// Rules lists every rule in file order.
	Rules []Rule

	// Warnings lists rules that override an earlier rule with the same key.
	Warnings []Error
}

// Forward reports whether the set carries the concealment indices.
func (s *Set) Forward() bool {
	return s.Direct != nil
}

// Body returns the group-body index for a trigger.
func (s *Set) Body(trigger byte) *trie.Trie[Glyph] {
	switch trigger {
	case '_':
		return s.Sub
	case '^':
		return s.Sup
	}
	return nil
}

// Compile builds the rule indices. A later rule with the same key replaces an
// earlier one and is recorded as a warning.
func Compile(rules []Rule, opts Options) *Set {
	set := &Set{
		Inverse: trie.New[Source](),
		Rules:   rules,
	}
	if !opts.InverseOnly {
		set.Direct = trie.New[Glyph]()
		set.Sub = trie.New[Glyph]()
		set.Sup = trie.New[Glyph]()
	}

	for _, r := range rules {
		if set.Forward() {
			set.addForward(r)
		}
		if set.Inverse.Insert(r.chars, r.source) {
			set.warn(r, fmt.Sprintf("%q overrides an earlier restoration", r.Glyph()))
		}
	}

	return set
}

func (s *Set) addForward(r Rule) {
	keys := make([][]byte, len(r.source))
	for i, p := range r.source {
		keys[i] = p.Text
	}

	glyph := r.glyph()
	s.First.Add(keys[0][0])
	if s.Direct.Insert(keys, glyph) {
		s.warn(r, fmt.Sprintf("%q overrides an earlier rule", r.TeX()))
	}

	trigger := r.Script()
	if trigger == 0 {
		return
	}

	body := keys[1:]
	if len(body) > 0 && isChar(body[0], '{') {
		body = body[1:]
	}
	if len(body) > 0 && isChar(body[len(body)-1], '}') {
		body = body[:len(body)-1]
	}
	if len(body) == 0 {
		return
	}
	s.Body(trigger).Insert(body, glyph)
}

func (s *Set) warn(r Rule, msg string) {
	s.Warnings = append(s.Warnings, Error{File: r.File, Line: r.Line, Msg: msg})
}

func isChar(text []byte, c byte) bool {
	return len(text) == 1 && text[0] == transcode.Encode(c)
}
