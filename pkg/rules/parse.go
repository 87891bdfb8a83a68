package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/yaklabco/unitex/pkg/token"
	"github.com/yaklabco/unitex/pkg/transcode"
)

// Rule file diagnostics.
const (
	msgMissingTeX    = "missing TeX sequence in the first field"
	msgMissingSecond = "missing second field"
	msgUnbalanced    = "unbalanced curly brace in the first field"
	msgInvalidUTF8   = "invalid UTF-8 encoding"
	msgTooManyASCII  = "expect only one ASCII character in the second field"
	msgNeedNonASCII  = "expect a non-ASCII character in the second field"
	msgMissingGlyph  = "missing character in the second field"
)

const maxLineBytes = 1 << 20

// Error is a rule file diagnostic. Malformed rules are returned as *Error;
// overriding rules are reported as Error values in Set.Warnings.
type Error struct {
	// File is the rule file name.
	File string

	// Line is the 1-based line number, or 0 if unknown.
	Line int

	// Msg describes the problem.
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// LoadFiles parses every rule file in order and compiles the result.
func LoadFiles(paths []string, opts Options) (*Set, error) {
	var all []Rule
	for _, path := range paths {
		parsed, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, parsed...)
	}
	return Compile(all, opts), nil
}

func parseFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	return Parse(path, f)
}

// Parse reads rules from r. name is used in diagnostics. A UTF-8 byte order
// mark is skipped and UTF-16 input with a byte order mark is converted.
func Parse(name string, r io.Reader) ([]Rule, error) {
	r = transform.NewReader(r, unicode.BOMOverride(transform.Nop))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var out []Rule
	for lnum := 1; scanner.Scan(); lnum++ {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || line[0] == '#' {
			continue
		}

		rule, msg := parseLine(line)
		if msg != "" {
			return nil, &Error{File: name, Line: lnum, Msg: msg}
		}
		rule.File = name
		rule.Line = lnum
		out = append(out, rule)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &Error{File: name, Msg: "line too long"}
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return out, nil
}

// parseLine compiles one rule line. It returns a diagnostic message on failure.
func parseLine(line string) (Rule, string) {
	line = strings.TrimLeft(line, " ")
	if line == "" || line[0] == '\t' {
		return Rule{}, msgMissingTeX
	}

	tex, rest, found := strings.Cut(line, "\t")
	if !found {
		return Rule{}, msgMissingSecond
	}
	second, _, _ := strings.Cut(rest, "\t")

	source, msg := parseSource(strings.TrimRight(tex, " "))
	if msg != "" {
		return Rule{}, msg
	}

	chars, msg := parseChars(second)
	if msg != "" {
		return Rule{}, msg
	}

	return Rule{source: source, chars: chars}, ""
}

// parseSource splits the first field into tokens the same way input text is
// tokenized, so that keys compare equal to the tokens seen at run time.
func parseSource(tex string) (Source, string) {
	var arena token.Arena
	arena.Reset()
	tk := token.NewTokenizer(strings.NewReader(tex))

	var (
		source Source
		depth  int
	)
	for {
		h := tk.Next(&arena)
		switch {
		case arena.IsEndOfStream(h):
			if depth != 0 {
				return nil, msgUnbalanced
			}
			return source, ""
		case arena.IsInvalid(h):
			return nil, msgInvalidUTF8
		case arena.Is(h, '{'):
			depth++
		case arena.Is(h, '}'):
			depth--
			if depth < 0 {
				return nil, msgUnbalanced
			}
		}

		source = append(source, Piece{
			Space: append([]byte(nil), arena.Space(h)...),
			Text:  append([]byte(nil), arena.Text(h)...),
		})
	}
}

// parseChars splits the second field into encoded characters. At least one
// must be non-ASCII and at most one may be ASCII.
func parseChars(field string) ([][]byte, string) {
	var (
		chars           [][]byte
		ascii, nonASCII int
	)
	for len(field) > 0 {
		size := 1
		if field[0] < utf8.RuneSelf {
			ascii++
			if ascii > 1 {
				return nil, msgTooManyASCII
			}
		} else {
			r, n := utf8.DecodeRuneInString(field)
			if r == utf8.RuneError && n <= 1 {
				return nil, msgInvalidUTF8
			}
			size = n
			nonASCII++
		}
		chars = append(chars, transcode.AppendEncoded(nil, []byte(field[:size])))
		field = field[size:]
	}

	switch {
	case nonASCII > 0:
		return chars, ""
	case ascii > 0:
		return nil, msgNeedNonASCII
	default:
		return nil, msgMissingGlyph
	}
}
