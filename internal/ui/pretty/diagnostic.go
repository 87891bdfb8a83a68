package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/unitex/pkg/rules"
)

// Severity labels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// FormatRuleError formats a malformed rule.
func (s *Styles) FormatRuleError(e *rules.Error) string {
	return s.formatRuleDiagnostic(e, SeverityError)
}

// FormatRuleWarning formats an overridden rule.
func (s *Styles) FormatRuleWarning(e *rules.Error) string {
	return s.formatRuleDiagnostic(e, SeverityWarning)
}

func (s *Styles) formatRuleDiagnostic(e *rules.Error, severity string) string {
	location := s.FilePath.Render(e.File)
	if e.Line > 0 {
		location += s.Location.Render(":" + strconv.Itoa(e.Line))
	}

	return fmt.Sprintf("  %s  %s  %s\n", location, s.FormatSeverity(severity), s.Message.Render(e.Msg))
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(severity string) string {
	switch severity {
	case SeverityError:
		return s.Error.Render(severity)
	case SeverityWarning:
		return s.Warning.Render(severity)
	default:
		return s.Info.Render(severity)
	}
}

// FormatFileError formats a file that could not be converted.
func (s *Styles) FormatFileError(path string, err error) string {
	return fmt.Sprintf("  %s  %s  %s\n", s.FilePath.Render(path), s.FormatSeverity(SeverityError), s.Message.Render(err.Error()))
}

// FormatRule formats one rule as its TeX sequence and glyph, followed by
// where it was defined.
func (s *Styles) FormatRule(r rules.Rule, texWidth int) string {
	tex := r.TeX()
	pad := max(texWidth-displayWidth(tex), 0)

	var builder strings.Builder
	builder.WriteString(s.TeX.Render(tex))
	builder.WriteString(strings.Repeat(" ", pad))
	builder.WriteString("  ")
	builder.WriteString(s.Glyph.Render(r.Glyph()))
	builder.WriteString("  ")
	builder.WriteString(s.Dim.Render(fmt.Sprintf("%s:%d", r.File, r.Line)))
	builder.WriteString("\n")

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path, status string) string {
	header := s.FilePath.Render(path)
	if status != "" {
		header += s.Dim.Render(" (" + status + ")")
	}
	return header
}
