package config_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/unitex/pkg/config"
	"github.com/yaklabco/unitex/pkg/rules"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies slices", func(t *testing.T) {
		original := &config.Config{
			Rules:      []string{"a.tsv"},
			ExtraRules: []string{"b.tsv"},
			Extensions: []string{".tex"},
			Ignore:     []string{"build/**"},
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, original, clone)
		assert.Equal(t, original, clone)

		clone.Rules[0] = "changed"
		clone.Ignore[0] = "changed"
		assert.Equal(t, "a.tsv", original.Rules[0])
		assert.Equal(t, "build/**", original.Ignore[0])
	})

	t.Run("preserves CLI fields", func(t *testing.T) {
		original := config.NewConfig()
		original.InPlace = true
		original.DryRun = true
		original.Jobs = 4
		original.NoBackups = true
		original.Format = config.FormatJSON

		assert.Equal(t, original, original.Clone())
	})
}

func TestConfigToYAML(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var cfg *config.Config
		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("CLI fields are not persisted", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Reverse = true
		cfg.Jobs = 8
		cfg.InPlace = true

		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Contains(t, string(data), "reverse: true")
		assert.Contains(t, string(data), "mode: sidecar")
		assert.NotContains(t, string(data), "jobs")
		assert.NotContains(t, string(data), "in_place")
	})

	t.Run("header", func(t *testing.T) {
		data, err := config.NewConfig().ToYAMLWithHeader("# head")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("# head\n\n")))
	})
}

func TestFromYAML(t *testing.T) {
	t.Run("parses valid YAML", func(t *testing.T) {
		cfg, err := config.FromYAML([]byte(`
reverse: true
rules: [main.tsv]
extra_rules:
  - extra.tsv
backups:
  enabled: false
  mode: none
`))
		require.NoError(t, err)
		assert.True(t, cfg.Reverse)
		assert.Equal(t, []string{"main.tsv"}, cfg.Rules)
		assert.Equal(t, []string{"extra.tsv"}, cfg.ExtraRules)
		assert.Equal(t, config.BackupsConfig{Enabled: false, Mode: config.BackupModeNone}, cfg.Backups)
	})

	t.Run("empty and comment-only input", func(t *testing.T) {
		cfg, err := config.FromYAML(nil)
		require.NoError(t, err)
		assert.Equal(t, &config.Config{}, cfg)

		cfg, err = config.FromYAML([]byte("# nothing yet\n"))
		require.NoError(t, err)
		assert.Equal(t, &config.Config{}, cfg)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := config.FromYAML([]byte("flavor: gfm\n"))
		require.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Rules = []string{"a.tsv"}
		cfg.Extensions = []string{".tex"}

		data, err := cfg.ToYAML()
		require.NoError(t, err)

		parsed, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, cfg.Rules, parsed.Rules)
		assert.Equal(t, cfg.Extensions, parsed.Extensions)
		assert.Equal(t, cfg.Backups, parsed.Backups)
	})
}

func TestBackupsActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		backups   config.BackupsConfig
		noBackups bool
		want      bool
	}{
		{"default", config.BackupsConfig{Enabled: true, Mode: config.BackupModeSidecar}, false, true},
		{"disabled", config.BackupsConfig{Enabled: false, Mode: config.BackupModeSidecar}, false, false},
		{"mode none", config.BackupsConfig{Enabled: true, Mode: config.BackupModeNone}, false, false},
		{"no-backups flag", config.BackupsConfig{Enabled: true, Mode: config.BackupModeSidecar}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{Backups: tt.backups, NoBackups: tt.noBackups}
			assert.Equal(t, tt.want, cfg.BackupsActive())
		})
	}
}

func TestValidity(t *testing.T) {
	t.Parallel()

	assert.True(t, config.BackupModeSidecar.IsValid())
	assert.True(t, config.BackupModeNone.IsValid())
	assert.False(t, config.BackupMode("xdg").IsValid())
	assert.True(t, config.FormatJSON.IsValid())
	assert.False(t, config.OutputFormat("sarif").IsValid())
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	t.Run("minimal parses to an empty config", func(t *testing.T) {
		t.Parallel()

		data, err := config.GenerateTemplate(config.TemplateOptions{})
		require.NoError(t, err)
		assert.Contains(t, string(data), "# unitex configuration")

		cfg, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, &config.Config{}, cfg)
	})

	t.Run("full parses to the defaults", func(t *testing.T) {
		t.Parallel()

		data, err := config.GenerateTemplate(config.TemplateOptions{Full: true})
		require.NoError(t, err)

		cfg, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, config.NewConfig().Backups, cfg.Backups)
		assert.Contains(t, cfg.Extensions, ".tex")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		data, err := config.GenerateTemplate(config.TemplateOptions{Format: "json"})
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, false, decoded["reverse"])
	})
}

func TestDefaultRules(t *testing.T) {
	t.Parallel()

	parsed, err := rules.Parse(config.RulesFileName, bytes.NewReader(config.DefaultRules))
	require.NoError(t, err)
	assert.NotEmpty(t, parsed)

	set := rules.Compile(parsed, rules.Options{})
	assert.Empty(t, set.Warnings)
	assert.Equal(t, len(parsed), set.Inverse.Len())
}

func TestMergeYAML(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Ignore = []string{"old/**"}

	require.NoError(t, cfg.MergeYAML([]byte("backups:\n  enabled: false\nignore: [new/**]\n")))
	assert.False(t, cfg.Backups.Enabled)
	assert.Equal(t, config.BackupModeSidecar, cfg.Backups.Mode)
	assert.Equal(t, []string{"new/**"}, cfg.Ignore)

	require.Error(t, cfg.MergeYAML([]byte("reverse: [1, 2]\n")))
}
