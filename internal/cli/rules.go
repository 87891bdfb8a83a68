package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/unitex/internal/logging"
	"github.com/yaklabco/unitex/internal/ui/pretty"
	"github.com/yaklabco/unitex/pkg/config"
	"github.com/yaklabco/unitex/pkg/reporter"
	"github.com/yaklabco/unitex/pkg/rules"
)

type rulesFlags struct {
	rules    []string
	addRules []string
	format   string
	check    bool
}

const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
)

// ruleInfo represents a rule in JSON output.
type ruleInfo struct {
	TeX    string `json:"tex"`
	Glyph  string `json:"glyph"`
	Script string `json:"script,omitempty"`
	File   string `json:"file"`
	Line   int    `json:"line"`
}

func newRulesCommand() *cobra.Command {
	flags := &rulesFlags{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the compiled rules",
		Long: `Load the rules files a conversion would use and list every rule with its
TeX sequence, its glyph and where it is defined. Rules overriding an earlier
rule are reported as warnings.

Examples:
  unitex rules                      List the rules in use
  unitex rules --format table       List them as a table
  unitex rules -u my.tsv --check    Validate a rules file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRules(cmd, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.rules, "rules", "u", nil, "rules file replacing the default ones (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.addRules, "add-rules", "f", nil, "additional rules file (repeatable)")
	cmd.Flags().StringVar(&flags.format, "format", formatText, "output format: text, table, json")
	cmd.Flags().BoolVar(&flags.check, "check", false, "only validate the rules files")

	return cmd
}

func runRules(cmd *cobra.Command, flags *rulesFlags) error {
	if !lo.Contains([]string{formatText, formatTable, formatJSON}, flags.format) {
		return &UsageError{Err: fmt.Errorf("invalid format %q: must be text, table or json", flags.format)}
	}

	cli := &config.Config{ExtraRules: flags.addRules}
	if cmd.Flags().Changed("rules") {
		cli.Rules = flags.rules
	}

	loadResult, err := loadConfig(cmd, cli)
	if err != nil {
		return err
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	stderr := cmd.ErrOrStderr()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, stderr))

	// The listing shows the forward rules, so compile them whatever the
	// configured direction.
	cfg := loadResult.Config.Clone()
	cfg.Reverse = false

	set, err := loadRuleSet(cfg, logging.Default())
	if err != nil {
		return err
	}

	for i := range set.Warnings {
		fmt.Fprint(stderr, styles.FormatRuleWarning(&set.Warnings[i]))
	}

	if flags.check {
		files := lo.Uniq(lo.Map(set.Rules, func(r rules.Rule, _ int) string { return r.File }))
		logging.NewInteractive().Info("rules are valid",
			logging.FieldRules, len(set.Rules),
			logging.FieldFiles, len(files),
		)
		return nil
	}

	out := cmd.OutOrStdout()
	switch flags.format {
	case formatJSON:
		return outputRulesJSON(out, set.Rules)
	case formatTable:
		colorEnabled := pretty.IsColorEnabled(colorMode, out)
		formatter := pretty.NewTableFormatter(pretty.NewStyles(colorEnabled), colorEnabled, reporter.TerminalWidth(out))
		_, err := io.WriteString(out, formatter.FormatRulesTable(set.Rules))
		return err
	default:
		return outputRulesText(out, pretty.NewStyles(pretty.IsColorEnabled(colorMode, out)), set.Rules)
	}
}

func outputRulesText(w io.Writer, styles *pretty.Styles, rs []rules.Rule) error {
	width := lo.Max(lo.Map(rs, func(r rules.Rule, _ int) int { return ansi.StringWidth(r.TeX()) }))
	for _, r := range rs {
		if _, err := io.WriteString(w, styles.FormatRule(r, width)); err != nil {
			return fmt.Errorf("write rules: %w", err)
		}
	}
	return nil
}

// outputRulesJSON outputs rules as a JSON array.
func outputRulesJSON(w io.Writer, rs []rules.Rule) error {
	infos := make([]ruleInfo, 0, len(rs))
	for _, r := range rs {
		info := ruleInfo{
			TeX:   r.TeX(),
			Glyph: r.Glyph(),
			File:  r.File,
			Line:  r.Line,
		}
		if c := r.Script(); c != 0 {
			info.Script = string(c)
		}
		infos = append(infos, info)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	return nil
}
