// Package diff renders the changes made by a conversion as a unified diff.
//
// Conversion rewrites text within lines and never adds or removes a line, so
// line i of the output always corresponds to line i of the input. The diff is
// therefore a pairwise comparison and needs no sequence alignment.
package diff

import (
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines shown around a change.
const contextLines = 3

// LineKind classifies a line of a hunk.
type LineKind int

const (
	// Context is an unchanged line.
	Context LineKind = iota

	// Remove is a line of the original.
	Remove

	// Add is a line of the converted text.
	Add
)

// Line is one line of a hunk, without its prefix or newline.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is a run of changed lines with surrounding context. Start is the
// 1-based line number of its first line, the same in both versions.
type Hunk struct {
	Start int
	Count int
	Lines []Line
}

// Diff is the set of changes to one file.
type Diff struct {
	Path    string
	Hunks   []Hunk
	Changed int
}

// Lines compares before and after line by line. It returns nil when they are
// equal.
func Lines(path string, before, after []byte) *Diff {
	orig := splitLines(before)
	conv := splitLines(after)

	n := max(len(orig), len(conv))
	changed := make([]bool, n)
	count := 0
	for i := range n {
		if line(orig, i) != line(conv, i) {
			changed[i] = true
			count++
		}
	}
	if count == 0 {
		return nil
	}

	d := &Diff{Path: path, Changed: count}
	for i := 0; i < n; {
		if !changed[i] {
			i++
			continue
		}

		start := max(i-contextLines, 0)
		end := i
		for j := i; j < n && j < end+2*contextLines+1; j++ {
			if changed[j] {
				end = j
			}
		}
		stop := min(end+contextLines+1, n)

		d.Hunks = append(d.Hunks, buildHunk(orig, conv, changed, start, stop))
		i = stop
	}
	return d
}

func buildHunk(orig, conv []string, changed []bool, start, stop int) Hunk {
	h := Hunk{Start: start + 1, Count: stop - start}
	for i := start; i < stop; i++ {
		if !changed[i] {
			h.Lines = append(h.Lines, Line{Kind: Context, Text: orig[i]})
			continue
		}
		if i < len(orig) {
			h.Lines = append(h.Lines, Line{Kind: Remove, Text: orig[i]})
		}
		if i < len(conv) {
			h.Lines = append(h.Lines, Line{Kind: Add, Text: conv[i]})
		}
	}
	return h
}

// String renders the diff in unified format.
func (d *Diff) String() string {
	if d == nil {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.Start, h.Count, h.Start, h.Count)
		for _, l := range h.Lines {
			switch l.Kind {
			case Context:
				sb.WriteByte(' ')
			case Remove:
				sb.WriteByte('-')
			case Add:
				sb.WriteByte('+')
			}
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func line(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
