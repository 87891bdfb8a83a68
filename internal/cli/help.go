package cli

import (
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/unitex/internal/configloader"
	"github.com/yaklabco/unitex/internal/ui/pretty"
)

// helpStyles holds the lipgloss styles of the help output.
type helpStyles struct {
	heading    lipgloss.Style
	command    lipgloss.Style
	subcommand lipgloss.Style
	flag       lipgloss.Style
	flagType   lipgloss.Style
	example    lipgloss.Style
	envVar     lipgloss.Style
}

func newHelpStyles(colorEnabled bool) helpStyles {
	plain := lipgloss.NewStyle()
	if !colorEnabled {
		return helpStyles{plain, plain, plain, plain, plain, plain, plain}
	}
	return helpStyles{
		heading:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		command:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		subcommand: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		flag:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		flagType:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		example:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		envVar:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
}

// HelpFormatter renders cobra help and usage with lipgloss styles.
type HelpFormatter struct {
	styles helpStyles
}

// NewHelpFormatter creates a help formatter for the given color mode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: newHelpStyles(pretty.IsColorEnabled(colorMode, writer))}
}

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}
{{- end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]
{{- end}}
{{- if .HasExample}}

{{ heading "Examples:" }}
{{ example .Example }}
{{- end}}
{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}
{{- range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}
{{- end}}{{end}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}
{{- if not .HasParent}}

{{ heading "Environment:" }}
{{ environment }}

{{ heading "Exit Status:" }}
{{ exitCodes }}
{{- end}}
{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{ command .CommandPath }}{{if .Version}} {{ .Version }}{{end}}

{{with (or .Long .Short)}}{{ trimRight . }}

{{end}}{{ template "usage" . }}`

func (h *HelpFormatter) parse() *template.Template {
	funcs := template.FuncMap{
		"heading":     h.styles.heading.Render,
		"command":     h.styles.command.Render,
		"subcommand":  h.styles.subcommand.Render,
		"example":     h.styles.example.Render,
		"flags":       h.flagUsages,
		"environment": h.environmentUsage,
		"exitCodes":   h.exitCodeUsage,
		"rpad":        rpad,
		"trimRight":   trimTrailingWhitespaces,
	}
	tmpl := template.Must(template.New("usage").Funcs(funcs).Parse(usageTemplate))
	return template.Must(tmpl.New("help").Parse(helpTemplate))
}

// ApplyToCommand installs the styled help and usage on cmd and, through
// inheritance, on all its subcommands.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	tmpl := h.parse()

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		if err := tmpl.ExecuteTemplate(c.OutOrStderr(), "usage", c); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := tmpl.ExecuteTemplate(c.OutOrStdout(), "help", c); err != nil {
			c.PrintErrln(err)
		}
	})
}

// flagLine splits a pflag usage line into indent, flag names, the column gap
// and the description.
var flagLine = regexp.MustCompile(`^(\s*)(\S.*?)(\s{2,})(\S.*)$`)

// flagUsages styles the flag names and value types of a flag set, keeping
// pflag's column alignment.
func (h *HelpFormatter) flagUsages(flags *pflag.FlagSet) string {
	usages := strings.TrimSuffix(flags.FlagUsages(), "\n")
	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		lines[i] = h.styleFlagLine(line)
	}
	return strings.Join(lines, "\n")
}

func (h *HelpFormatter) styleFlagLine(line string) string {
	m := flagLine.FindStringSubmatch(line)
	if m == nil {
		return line
	}

	names := lo.Map(strings.Fields(m[2]), func(field string, _ int) string {
		if !strings.HasPrefix(field, "-") {
			return h.styles.flagType.Render(field)
		}
		if name, ok := strings.CutSuffix(field, ","); ok {
			return h.styles.flag.Render(name) + ","
		}
		return h.styles.flag.Render(field)
	})
	return m[1] + strings.Join(names, " ") + m[3] + m[4]
}

// environmentUsage lists the UNITEX_* variables, sorted by name.
func (h *HelpFormatter) environmentUsage() string {
	vars := configloader.ListEnvVars()
	names := slices.Sorted(maps.Keys(vars))
	width := lo.Max(lo.Map(names, func(name string, _ int) int { return len(name) }))

	lines := lo.Map(names, func(name string, _ int) string {
		return "  " + h.styles.envVar.Render(rpad(name, width)) + "   " + vars[name]
	})
	return strings.Join(lines, "\n")
}

type exitCodeHelp struct {
	code int
	desc string
}

// exitCodeUsage lists the exit statuses.
func (h *HelpFormatter) exitCodeUsage() string {
	codes := []exitCodeHelp{
		{ExitSuccess, "success"},
		{ExitInvalidUsage, "invalid command line"},
		{ExitConfigError, "malformed rules file or configuration"},
		{ExitIOError, "a file could not be read or written"},
		{ExitInternalError, "internal error"},
	}

	lines := lo.Map(codes, func(c exitCodeHelp, _ int) string {
		return "  " + h.styles.flag.Render(fmt.Sprintf("%-3d", c.code)) + "   " + c.desc
	})
	return strings.Join(lines, "\n")
}

func rpad(s string, width int) string {
	return s + strings.Repeat(" ", max(width-len(s), 0))
}

func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
