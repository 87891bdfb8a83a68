package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/unitex/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "2 of 5 files converted, 14 glyphs, 1 backup".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, dryRun bool) string {
	if stats.FilesModified == 0 && stats.FilesErrored == 0 {
		return s.Success.Render("Nothing to convert") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))) + "\n"
	}

	verb := "converted"
	count := stats.FilesWritten
	if dryRun {
		verb = "would change"
		count = stats.FilesModified
	}

	var parts []string
	parts = append(parts, s.Success.Render(fmt.Sprintf("%d of %d %s %s",
		count, stats.FilesDiscovered, plural(stats.FilesDiscovered, wordFile, wordFiles), verb)))

	if n := stats.Conversion.Concealed; n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "glyph", "glyphs")))
	}
	if n := stats.Conversion.Restored; n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s restored", n, plural(n, "glyph", "glyphs")))
	}
	if n := stats.BackupsCreated; n > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d %s", n, plural(n, "backup", "backups"))))
	}
	if n := stats.FilesSkipped; n > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", n)))
	}
	if n := stats.FilesErrored; n > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d failed", n)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row := func(label string, value int, style func(...string) string) {
		builder.WriteString(fmt.Sprintf("  %-19s", label+":") + style(strconv.Itoa(value)) + "\n")
	}

	row("Files checked", stats.FilesProcessed, s.SummaryValue.Render)
	if stats.FilesModified > 0 {
		row("Files changed", stats.FilesModified, s.Success.Render)
	}
	if stats.FilesWritten > 0 {
		row("Files written", stats.FilesWritten, s.Success.Render)
	}
	if stats.BackupsCreated > 0 {
		row("Backups", stats.BackupsCreated, s.SummaryValue.Render)
	}
	if stats.FilesSkipped > 0 {
		row("Files skipped", stats.FilesSkipped, s.Warning.Render)
	}
	if stats.FilesErrored > 0 {
		row("Files failed", stats.FilesErrored, s.Failure.Render)
	}

	builder.WriteString("\n")
	row("Lines", stats.Conversion.Lines, s.SummaryValue.Render)
	if stats.Conversion.RawLines > 0 {
		row("Raw lines", stats.Conversion.RawLines, s.SummaryValue.Render)
	}
	if stats.Conversion.Concealed > 0 {
		row("Glyphs concealed", stats.Conversion.Concealed, s.SummaryValue.Render)
	}
	if stats.Conversion.Restored > 0 {
		row("Glyphs restored", stats.Conversion.Restored, s.SummaryValue.Render)
	}

	builder.WriteString("\n")
	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Conversion failed"))
	case stats.FilesSkipped > 0:
		builder.WriteString(s.Warning.Render("Conversion completed with skipped files"))
	default:
		builder.WriteString(s.Success.Render("Conversion complete"))
	}
	builder.WriteString("\n")

	return builder.String()
}
