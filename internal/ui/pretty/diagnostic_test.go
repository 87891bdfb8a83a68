package pretty_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/unitex/internal/ui/pretty"
	"github.com/yaklabco/unitex/pkg/rules"
)

func TestFormatRuleError(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	got := styles.FormatRuleError(&rules.Error{File: "rules.tsv", Line: 12, Msg: "missing second field"})
	assert.Equal(t, "  rules.tsv:12  error  missing second field\n", got)

	got = styles.FormatRuleWarning(&rules.Error{File: "rules.tsv", Msg: "overrides an earlier rule"})
	assert.Equal(t, "  rules.tsv  warning  overrides an earlier rule\n", got)
}

func TestFormatFileError(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	got := styles.FormatFileError("paper.tex", errors.New("permission denied"))
	assert.Equal(t, "  paper.tex  error  permission denied\n", got)
}

func TestFormatRule(t *testing.T) {
	t.Parallel()

	parsed, err := rules.Parse("rules.tsv", strings.NewReader("\\alpha\tα\n\\mathbb{R}\tℝ\n"))
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	styles := pretty.NewStyles(false)
	assert.Equal(t, "\\alpha      α  rules.tsv:1\n", styles.FormatRule(parsed[0], 10))
	assert.Equal(t, "\\mathbb{R}  ℝ  rules.tsv:2\n", styles.FormatRule(parsed[1], 10))
}

func TestFormatFileHeader(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "paper.tex (changed)", styles.FormatFileHeader("paper.tex", "changed"))
	assert.Equal(t, "paper.tex", styles.FormatFileHeader("paper.tex", ""))
}
