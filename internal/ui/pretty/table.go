package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/yaklabco/unitex/pkg/rules"
	"github.com/yaklabco/unitex/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	fileColumnCount  = 4 // FILE, STATUS, LINES, GLYPHS
	ruleColumnCount  = 3 // TEX, GLYPH, DEFINED
	minFileWidth     = 20
	minStatusWidth   = 10
	countWidth       = 7
	minTeXWidth      = 8
	minGlyphWidth    = 5
	minDefinedWidth  = 12
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
	ellipsis         = "..."
)

// Status labels of a file row.
const (
	StatusChanged   = "changed"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// TableRow represents a single file in the results table.
type TableRow struct {
	File   string
	Status string
	Lines  int
	Glyphs int
	Detail string
}

// TableFormatter formats run results and rule listings as styled tables.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// OutcomeToTableRow converts a file outcome to a table row.
func OutcomeToTableRow(file runner.FileOutcome) TableRow {
	row := TableRow{File: file.Path}
	switch {
	case file.Error != nil:
		row.Status = StatusFailed
		row.Detail = file.Error.Error()
	case file.Result == nil:
		row.Status = StatusUnchanged
	case file.Result.Skipped:
		row.Status = StatusSkipped
		row.Detail = file.Result.SkipReason
	case file.Result.Modified:
		row.Status = StatusChanged
	default:
		row.Status = StatusUnchanged
	}
	if file.Result != nil {
		row.Lines = file.Result.Stats.Lines
		row.Glyphs = file.Result.Stats.Concealed + file.Result.Stats.Restored
	}
	return row
}

// FormatTable formats runner results as a styled table.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(result.Files))
	for _, file := range result.Files {
		rows = append(rows, OutcomeToTableRow(file))
	}

	fileWidth, statusWidth := t.calculateFileWidths(rows)
	total := fileWidth + statusWidth + 2*countWidth + tablePadding*fileColumnCount

	var builder strings.Builder

	header := fmt.Sprintf(" %-*s  %-*s  %*s  %*s",
		fileWidth, "FILE",
		statusWidth, "STATUS",
		countWidth, "LINES",
		countWidth, "GLYPHS",
	)
	builder.WriteString(t.styles.TableHeader.Render(header) + "\n")
	builder.WriteString(t.separator(total, heavySeparator) + "\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, fileWidth, statusWidth) + "\n")
		if row.Detail != "" {
			detail := truncateString(row.Detail, max(total-4, minStatusWidth))
			builder.WriteString("   " + t.styles.Dim.Render(detail) + "\n")
		}
	}

	builder.WriteString(t.separator(total, heavySeparator) + "\n")
	builder.WriteString(t.formatLegend() + "\n")

	return builder.String()
}

func (t *TableFormatter) calculateFileWidths(rows []TableRow) (int, int) {
	fileWidth, statusWidth := minFileWidth, minStatusWidth
	for _, row := range rows {
		fileWidth = max(fileWidth, displayWidth(row.File))
		statusWidth = max(statusWidth, len(row.Status))
	}

	total := fileWidth + statusWidth + 2*countWidth + tablePadding*fileColumnCount
	if total > t.termWidth {
		fileWidth = max(minFileWidth, fileWidth-(total-t.termWidth))
	}
	return fileWidth, statusWidth
}

func (t *TableFormatter) formatRow(row TableRow, fileWidth, statusWidth int) string {
	file := padRight(truncateFilePath(row.File, fileWidth), fileWidth)

	content := fmt.Sprintf(" %s  %-*s  %*s  %*s",
		file,
		statusWidth, row.Status,
		countWidth, strconv.Itoa(row.Lines),
		countWidth, strconv.Itoa(row.Glyphs),
	)

	return t.rowStyle(row.Status).Render(content)
}

func (t *TableFormatter) rowStyle(status string) lipgloss.Style {
	switch status {
	case StatusChanged:
		return t.styles.TableChanged
	case StatusSkipped:
		return t.styles.TableSkipped
	case StatusFailed:
		return t.styles.TableErrorRow
	default:
		return t.styles.Message
	}
}

func (t *TableFormatter) separator(width int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, width))
}

// formatLegend explains the row colors.
func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" GLYPHS counts glyphs concealed or restored")
	}

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s  %s  %s",
			t.styles.TableChanged.Render(StatusChanged),
			t.styles.TableSkipped.Render(StatusSkipped),
			t.styles.TableErrorRow.Render(StatusFailed)),
	)
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%d files checked", stats.FilesProcessed))

	if stats.FilesModified > 0 {
		parts = append(parts, t.styles.Success.Render(fmt.Sprintf("%d changed", stats.FilesModified)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}

	return " " + strings.Join(parts, " | ")
}

// FormatRulesTable formats compiled rules as a table of TeX sequences,
// glyphs and their definitions.
func (t *TableFormatter) FormatRulesTable(rs []rules.Rule) string {
	if len(rs) == 0 {
		return ""
	}

	texWidth, glyphWidth, definedWidth := minTeXWidth, minGlyphWidth, minDefinedWidth
	defined := make([]string, len(rs))
	for i, r := range rs {
		defined[i] = fmt.Sprintf("%s:%d", r.File, r.Line)
		texWidth = max(texWidth, displayWidth(r.TeX()))
		glyphWidth = max(glyphWidth, displayWidth(r.Glyph()))
		definedWidth = max(definedWidth, displayWidth(defined[i]))
	}

	total := texWidth + glyphWidth + definedWidth + tablePadding*ruleColumnCount
	if total > t.termWidth {
		definedWidth = max(minDefinedWidth, definedWidth-(total-t.termWidth))
		total = texWidth + glyphWidth + definedWidth + tablePadding*ruleColumnCount
	}

	var builder strings.Builder
	header := " " + padRight("TEX", texWidth) + "  " + padRight("GLYPH", glyphWidth) + "  " + "DEFINED"
	builder.WriteString(t.styles.TableHeader.Render(header) + "\n")
	builder.WriteString(t.separator(total, heavySeparator) + "\n")

	for i, r := range rs {
		if i > 0 && r.File != rs[i-1].File {
			builder.WriteString(t.separator(total, lightSeparator) + "\n")
		}
		builder.WriteString(" ")
		builder.WriteString(t.styles.TeX.Render(padRight(r.TeX(), texWidth)))
		builder.WriteString("  ")
		builder.WriteString(t.styles.Glyph.Render(padRight(r.Glyph(), glyphWidth)))
		builder.WriteString("  ")
		builder.WriteString(t.styles.Dim.Render(truncateFilePath(defined[i], definedWidth)))
		builder.WriteString("\n")
	}

	builder.WriteString(t.separator(total, heavySeparator) + "\n")
	builder.WriteString(t.styles.TableLegend.Render(fmt.Sprintf(" %d rules", len(rs))) + "\n")

	return builder.String()
}

// displayWidth returns the number of terminal cells s occupies.
func displayWidth(s string) int {
	return ansi.StringWidth(s)
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	if w := displayWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// truncateString truncates a string to maxLen cells, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if displayWidth(str) <= maxLen {
		return str
	}
	return ansi.Truncate(str, maxLen, ellipsis)
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if displayWidth(path) <= maxLen {
		return path
	}
	runes := []rune(path)
	for len(runes) > 0 && displayWidth(ellipsis+string(runes)) > maxLen {
		runes = runes[1:]
	}
	return ellipsis + string(runes)
}
