package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/stackinfo/pkg/match"
)

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load(New())
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "glue-labs", cfg.Match.Pattern)
		assert.Equal(t, "contains", cfg.Match.Mode)
		assert.Equal(t, "stack-info.json", cfg.Output)
		assert.Empty(t, cfg.AWS.Region)
		assert.Empty(t, cfg.AWS.Profile)
		assert.Empty(t, cfg.AWS.Endpoint)
		assert.False(t, cfg.AWS.ForcePathStyle)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Zero(t, cfg.Timeout)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("STACKINFO_MATCH_PATTERN", "data-lake")
		t.Setenv("STACKINFO_OUTPUT", "out.json")
		t.Setenv("STACKINFO_AWS_REGION", "eu-west-1")
		t.Setenv("STACKINFO_LOGGING_LEVEL", "debug")
		t.Setenv("STACKINFO_TIMEOUT", "45s")

		cfg, err := Load(New())
		require.NoError(t, err)

		assert.Equal(t, "data-lake", cfg.Match.Pattern)
		assert.Equal(t, "out.json", cfg.Output)
		assert.Equal(t, "eu-west-1", cfg.AWS.Region)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, 45*time.Second, cfg.Timeout)
	})

	t.Run("ExplicitSetWinsOverEnv", func(t *testing.T) {
		t.Setenv("STACKINFO_OUTPUT", "env.json")

		v := New()
		v.Set("output", "flag.json")

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "flag.json", cfg.Output)
	})
}

func TestReadFile(t *testing.T) {
	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stackinfo.yaml")
		content := "match:\n  pattern: \"glue-labs-*\"\n  mode: glob\naws:\n  endpoint: http://localhost:5555\n  force_path_style: true\ntimeout: 2m\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		v := New()
		require.NoError(t, ReadFile(v, path))

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "glue-labs-*", cfg.Match.Pattern)
		assert.Equal(t, "glob", cfg.Match.Mode)
		assert.Equal(t, "http://localhost:5555", cfg.AWS.Endpoint)
		assert.True(t, cfg.AWS.ForcePathStyle)
		assert.Equal(t, 2*time.Minute, cfg.Timeout)
		assert.Equal(t, "stack-info.json", cfg.Output, "unset keys keep defaults")
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		assert.NoError(t, ReadFile(New(), ""))
	})

	t.Run("missing file", func(t *testing.T) {
		err := ReadFile(New(), filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "config", cfgErr.Key)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Match:   MatchConfig{Pattern: "glue-labs", Mode: "contains"},
			Output:  "stack-info.json",
			Logging: LoggingConfig{Level: "warn"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantKey string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty pattern", func(c *Config) { c.Match.Pattern = "" }, "match"},
		{"unknown mode", func(c *Config) { c.Match.Mode = "regex" }, "match"},
		{"bad glob", func(c *Config) { c.Match.Mode = "glob"; c.Match.Pattern = "[" }, "match"},
		{"empty output", func(c *Config) { c.Output = "" }, "output"},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestValidate_NegativeTimeoutSentinel(t *testing.T) {
	cfg := Config{
		Match:   MatchConfig{Pattern: "glue-labs"},
		Output:  "x.json",
		Logging: LoggingConfig{Level: "info"},
		Timeout: -time.Second,
	}
	assert.ErrorIs(t, cfg.Validate(), ErrNegativeTimeout)
}

func TestSelector(t *testing.T) {
	cfg := Config{Match: MatchConfig{Pattern: "glue-labs"}}

	sel, err := cfg.Selector()
	require.NoError(t, err)
	assert.Equal(t, match.ModeContains, sel.Mode())
	assert.Equal(t, "glue-labs", sel.Pattern())
}
