// Package convert drives the conversion of a stream line by line.
//
// Every line is first read through the restoration engine, which turns
// concealed glyphs back into TeX. Reverse mode emits that line. Forward mode
// conceals the restored line before emitting it, so already concealed input
// converts to the same output as its TeX source. A line starting with the
// byte 0x03 is emitted verbatim without that byte.
package convert

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yaklabco/unitex/pkg/conceal"
	"github.com/yaklabco/unitex/pkg/restore"
	"github.com/yaklabco/unitex/pkg/rules"
)

// RawLineMarker starts a line that is passed through unchanged.
const RawLineMarker byte = 0x03

// ErrNoForwardIndex is returned when forward conversion is requested for a
// rule set compiled without the concealment indices.
var ErrNoForwardIndex = errors.New("rule set has no forward index")

// Mode selects the conversion direction.
type Mode int

const (
	// Forward conceals TeX sequences as glyphs.
	Forward Mode = iota

	// Reverse restores glyphs to TeX sequences.
	Reverse
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options configures a Converter.
type Options struct {
	// Mode selects the conversion direction.
	Mode Mode

	// LineBuffered flushes the output after every line.
	LineBuffered bool
}

// Stats summarizes one conversion.
type Stats struct {
	// Lines is the number of lines read, including raw lines.
	Lines int

	// RawLines is the number of lines passed through after the 0x03 marker.
	RawLines int

	// Restored is the number of glyph sequences replaced by TeX.
	Restored int

	// Concealed is the number of TeX sequences replaced by glyphs.
	Concealed int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Lines += other.Lines
	s.RawLines += other.RawLines
	s.Restored += other.Restored
	s.Concealed += other.Concealed
}

// Converter converts streams with a compiled rule set. It holds no per-call
// state and is safe for concurrent use.
type Converter struct {
	set     *rules.Set
	opts    Options
	conceal *conceal.Engine
}

// New returns a Converter for set.
func New(set *rules.Set, opts Options) (*Converter, error) {
	if set == nil {
		return nil, errors.New("nil rule set")
	}

	c := &Converter{set: set, opts: opts}
	switch opts.Mode {
	case Forward:
		if !set.Forward() {
			return nil, ErrNoForwardIndex
		}
		c.conceal = conceal.New(set)
	case Reverse:
	default:
		return nil, fmt.Errorf("unknown mode %v", opts.Mode)
	}

	return c, nil
}

// Mode returns the conversion direction.
func (c *Converter) Mode() Mode {
	return c.opts.Mode
}

// Convert reads r to the end and writes the converted text to w. The context
// is checked between lines.
func (c *Converter) Convert(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	var (
		stats Stats
		ann   []conceal.Annotation
		line  []byte
	)

	engine := restore.New(c.set, r)
	if c.conceal != nil {
		engine.KeepAdjacent()
	}
	bw := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("convert cancelled: %w", err)
		}

		raw := engine.SkipByte(RawLineMarker)

		var err error
		if raw {
			err = engine.ReadRawLine()
		} else {
			err = engine.ReadLine()
		}
		if err != nil {
			return stats, fmt.Errorf("read: %w", err)
		}

		arena, tokens := engine.Arena(), engine.Tokens()
		var lineAnn []conceal.Annotation
		switch {
		case raw:
			stats.RawLines++
		case c.conceal != nil:
			ann = c.conceal.Conceal(arena, tokens, ann)
			lineAnn = ann
			stats.Concealed += concealed(ann)
			stats.Restored += engine.Restored()
		default:
			stats.Restored += engine.Restored()
		}
		if raw || len(tokens) > 1 || !engine.AtEOF() {
			stats.Lines++
		}

		line = conceal.AppendLine(line[:0], arena, tokens, lineAnn)
		if _, err := bw.Write(line); err != nil {
			return stats, fmt.Errorf("write: %w", err)
		}
		if c.opts.LineBuffered || engine.AtEOF() {
			if err := bw.Flush(); err != nil {
				return stats, fmt.Errorf("write: %w", err)
			}
		}

		if engine.AtEOF() {
			return stats, nil
		}
	}
}

// ConvertBytes converts src in memory.
func (c *Converter) ConvertBytes(ctx context.Context, src []byte) ([]byte, Stats, error) {
	var buf bytes.Buffer
	buf.Grow(len(src) + len(src)/8)

	stats, err := c.Convert(ctx, bytes.NewReader(src), &buf)
	if err != nil {
		return nil, stats, err
	}
	return buf.Bytes(), stats, nil
}

func concealed(ann []conceal.Annotation) int {
	var n int
	for _, a := range ann {
		if a.Span > 0 && a.Glyph != nil {
			n++
		}
	}
	return n
}
