package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/unitex/internal/cli"
	"github.com/yaklabco/unitex/internal/configloader"
	"github.com/yaklabco/unitex/pkg/convert"
	"github.com/yaklabco/unitex/pkg/fsutil"
	"github.com/yaklabco/unitex/pkg/rules"
)

const testRules = "\\alpha\tα\n\\beta\tβ\n_1\t₁\n_2\t₂\n"

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test-version",
		Commit:  "test-commit",
		Date:    "test-date",
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func rulesFile(t *testing.T) string {
	t.Helper()
	return writeFile(t, filepath.Join(t.TempDir(), "rules.tsv"), testRules)
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	if cmd == nil {
		t.Fatal("NewRootCommand returned nil")
	}
	if cmd.Name() != "unitex" {
		t.Errorf("expected name unitex, got %q", cmd.Name())
	}
	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if cmd.Version != "test-version" {
		t.Errorf("expected version test-version, got %q", cmd.Version)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, name := range []string{"rules", "init", "version"} {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Errorf("expected subcommand %q to exist, got error: %v", name, err)
			continue
		}
		if subCmd.Name() != name {
			t.Errorf("expected subcommand name %q, got %q", name, subCmd.Name())
		}
	}
}

func TestRootCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	shorthands := map[string]string{
		"reverse":   "r",
		"rules":     "u",
		"add-rules": "f",
		"in-place":  "i",
		"verbose":   "V",
	}
	for name, short := range shorthands {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("expected flag --%s", name)
			continue
		}
		if flag.Shorthand != short {
			t.Errorf("flag --%s: expected shorthand -%s, got -%s", name, short, flag.Shorthand)
		}
	}

	for _, name := range []string{"debug", "config", "color"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag --%s", name)
		}
	}
}

func TestConvertStdin(t *testing.T) {
	t.Parallel()

	rulesPath := rulesFile(t)

	tests := []struct {
		name  string
		args  []string
		input string
		want  string
	}{
		{"forward", []string{"-u", rulesPath}, "\\alpha x_{12}\n", "α x₁₂\n"},
		{"reverse", []string{"-r", "-u", rulesPath}, "α x₁₂\n", "\\alpha x_{12}\n"},
		{"explicit stdin", []string{"-u", rulesPath, "-"}, "\\beta\n", "β\n"},
		{"raw line", []string{"-u", rulesPath}, "\x03\\alpha\n\\alpha\n", "\\alpha\nα\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := execute(t, tt.input, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stdout != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestConvertFilesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rulesPath := rulesFile(t)
	first := writeFile(t, filepath.Join(dir, "a.tex"), "\\alpha\n")
	second := writeFile(t, filepath.Join(dir, "b.tex"), "\\beta\n")

	stdout, _, err := execute(t, "", "-u", rulesPath, second, first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "β\nα\n" {
		t.Errorf("expected files in argument order, got %q", stdout)
	}
}

func TestConvertAddRules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := writeFile(t, filepath.Join(dir, "base.tsv"), "\\alpha\tα\n")
	extra := writeFile(t, filepath.Join(dir, "extra.tsv"), "\\to\t→\n")

	stdout, _, err := execute(t, "\\alpha \\to\n", "-u", base, "-f", extra)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "α →\n" {
		t.Errorf("expected %q, got %q", "α →\n", stdout)
	}
}

func TestConvertInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rulesPath := rulesFile(t)
	doc := writeFile(t, filepath.Join(dir, "doc.tex"), "\\alpha x_1\n")

	stdout, _, err := execute(t, "", "-u", rulesPath, "-i", "--format", "json", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "α x₁\n" {
		t.Errorf("expected converted file, got %q", got)
	}

	backup, err := os.ReadFile(doc + fsutil.BackupSuffix)
	if err != nil {
		t.Fatalf("expected backup: %v", err)
	}
	if string(backup) != "\\alpha x_1\n" {
		t.Errorf("expected original content in backup, got %q", backup)
	}

	var report struct {
		Summary struct {
			FilesChanged int `json:"filesChanged"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("expected JSON report, got %q: %v", stdout, err)
	}
	if report.Summary.FilesChanged != 1 {
		t.Errorf("expected 1 changed file, got %d", report.Summary.FilesChanged)
	}
}

func TestConvertInPlaceDryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rulesPath := rulesFile(t)
	doc := writeFile(t, filepath.Join(dir, "doc.tex"), "\\alpha\n")

	stdout, _, err := execute(t, "", "-u", rulesPath, "-i", "--dry-run", "--color", "never", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "\\alpha\n" {
		t.Errorf("dry run modified the file: %q", got)
	}
	if _, err := os.Stat(doc + fsutil.BackupSuffix); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("dry run created a backup: %v", err)
	}
	for _, want := range []string{"-\\alpha", "+α"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected diff line %q in output:\n%s", want, stdout)
		}
	}
}

func TestConvertInPlaceRejectsStdin(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "", "-u", rulesFile(t), "-i", "-")
	if code := cli.ExitCode(err); code != cli.ExitInvalidUsage {
		t.Errorf("expected exit code %d, got %d (%v)", cli.ExitInvalidUsage, code, err)
	}
}

func TestConvertErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	badRules := writeFile(t, filepath.Join(dir, "bad.tsv"), "\\alpha\n")
	unbalanced := writeFile(t, filepath.Join(dir, "unbalanced.tsv"), "\\alpha\tα\n\\mathbb{R\tℝ\n")
	rulesPath := rulesFile(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing rules file", []string{"-u", filepath.Join(dir, "missing.tsv")}, cli.ExitIOError},
		{"malformed rules file", []string{"-u", badRules}, cli.ExitConfigError},
		{"unbalanced brace in rules file", []string{"-u", unbalanced}, cli.ExitConfigError},
		{"missing input", []string{"-u", rulesPath, filepath.Join(dir, "missing.tex")}, cli.ExitIOError},
		{"unknown flag", []string{"--no-such-flag"}, cli.ExitInvalidUsage},
		{"bad report format", []string{"-u", rulesPath, "-i", "--format", "xml", dir}, cli.ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := execute(t, "\\alpha\n", tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := cli.ExitCode(err); code != tt.want {
				t.Errorf("expected exit code %d, got %d (%v)", tt.want, code, err)
			}
			if stdout != "" {
				t.Errorf("expected no output, got %q", stdout)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"usage", &cli.UsageError{Err: errors.New("bad flag")}, cli.ExitInvalidUsage},
		{"rule error", fmt.Errorf("load: %w", &rules.Error{File: "r.tsv", Line: 2, Msg: "bad"}), cli.ExitConfigError},
		{"validation", &configloader.ValidationError{Field: "jobs", Message: "must be >= 0"}, cli.ExitConfigError},
		{"no rules", configloader.ErrNoRules, cli.ExitConfigError},
		{"no forward index", convert.ErrNoForwardIndex, cli.ExitConfigError},
		{"path error", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, cli.ExitIOError},
		{"files failed", errors.Join(cli.ErrFilesFailed, errors.New("x")), cli.ExitIOError},
		{"write failure", convert.ErrWriteFailure, cli.ExitIOError},
		{"other", errors.New("boom"), cli.ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cli.ExitCode(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestRulesCommand(t *testing.T) {
	t.Parallel()

	rulesPath := rulesFile(t)

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "", "rules", "-u", rulesPath, "--format", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []struct {
			TeX    string `json:"tex"`
			Glyph  string `json:"glyph"`
			Script string `json:"script"`
			Line   int    `json:"line"`
		}
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", stdout, err)
		}
		if len(got) != 4 {
			t.Fatalf("expected 4 rules, got %d", len(got))
		}
		if got[0].TeX != `\alpha` || got[0].Glyph != "α" || got[0].Line != 1 {
			t.Errorf("unexpected first rule: %+v", got[0])
		}
		if got[2].Script != "_" {
			t.Errorf("expected subscript rule, got %+v", got[2])
		}
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "", "rules", "-u", rulesPath, "--color", "never")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, rulesPath+":2") {
			t.Errorf("expected rule location in output:\n%s", stdout)
		}
	})

	t.Run("check reports overrides", func(t *testing.T) {
		t.Parallel()

		dup := writeFile(t, filepath.Join(t.TempDir(), "dup.tsv"), "\\alpha\tα\n\\alpha\tɑ\n")
		_, stderr, err := execute(t, "", "rules", "-u", dup, "--check", "--color", "never")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "overrides an earlier rule") {
			t.Errorf("expected override warning, got %q", stderr)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "", "rules", "-u", rulesPath, "--format", "xml")
		if code := cli.ExitCode(err); code != cli.ExitInvalidUsage {
			t.Errorf("expected exit code %d, got %d", cli.ExitInvalidUsage, code)
		}
	})
}

func TestInitCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "rules.tsv")

	if _, _, err := execute(t, "", "init", "-o", out, "--with-config", "--dir", dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected rules file: %v", err)
	}
	if len(content) == 0 {
		t.Error("expected starter rules")
	}
	if _, err := os.Stat(filepath.Join(dir, ".unitex.yml")); err != nil {
		t.Errorf("expected config file: %v", err)
	}

	_, _, err = execute(t, "", "init", "-o", out)
	if code := cli.ExitCode(err); code != cli.ExitInvalidUsage {
		t.Errorf("expected existing file to be refused with %d, got %d (%v)", cli.ExitInvalidUsage, code, err)
	}

	if _, _, err := execute(t, "", "init", "-o", out, "--force"); err != nil {
		t.Errorf("expected --force to overwrite: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"unitex", "test-version", "test-commit"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in version output %q", want, stdout)
		}
	}
}

func TestRootHelpListsEnvironment(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Environment:", configloader.RulesFileEnv, "Exit Status:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}
