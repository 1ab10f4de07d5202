// Package config loads stackinfo settings from defaults, an optional config
// file, STACKINFO_* environment variables, and command-line flags.
//
// Precedence (highest first): flags > env > config file > defaults.
// AWS credentials are not configured here; the SDK resolves them from its
// own sources (AWS_PROFILE, AWS_REGION, shared config, instance roles).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/3leaps/stackinfo/internal/observability"
	"github.com/3leaps/stackinfo/pkg/match"
	"github.com/3leaps/stackinfo/pkg/stackinfo"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "STACKINFO"

// Config is the resolved runtime configuration.
type Config struct {
	Match   MatchConfig   `mapstructure:"match"`
	Output  string        `mapstructure:"output"`
	AWS     AWSConfig     `mapstructure:"aws"`
	Logging LoggingConfig `mapstructure:"logging"`

	// Timeout bounds the listing call. Zero leaves the SDK defaults in charge.
	Timeout time.Duration `mapstructure:"timeout"`
}

// MatchConfig selects the bucket.
type MatchConfig struct {
	Pattern string `mapstructure:"pattern"`
	Mode    string `mapstructure:"mode"`
}

// AWSConfig holds optional client overrides. Empty values defer to the SDK.
type AWSConfig struct {
	Region         string `mapstructure:"region"`
	Profile        string `mapstructure:"profile"`
	Endpoint       string `mapstructure:"endpoint"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return "config: " + e.Key + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ErrNegativeTimeout is returned when timeout is below zero.
var ErrNegativeTimeout = errors.New("timeout must not be negative")

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("match.pattern", match.DefaultSubstring)
	v.SetDefault("match.mode", string(match.ModeContains))
	v.SetDefault("output", stackinfo.DefaultOutputPath)
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.force_path_style", false)
	v.SetDefault("logging.level", observability.DefaultLevel)
	v.SetDefault("timeout", "0s")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the config file at path into v. Format follows the file
// extension (yaml, json, toml).
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return &ConfigError{Key: "config", Err: err}
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, &ConfigError{Key: "decode", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that can be verified without network access.
func (c *Config) Validate() error {
	if _, err := c.Selector(); err != nil {
		return &ConfigError{Key: "match", Err: err}
	}
	if c.Output == "" {
		return &ConfigError{Key: "output", Err: errors.New("output path is required")}
	}
	if _, err := observability.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Key: "logging.level", Err: err}
	}
	if c.Timeout < 0 {
		return &ConfigError{Key: "timeout", Err: fmt.Errorf("%w: %s", ErrNegativeTimeout, c.Timeout)}
	}
	return nil
}

// Selector builds the bucket selector described by the match settings.
func (c *Config) Selector() (*match.Selector, error) {
	return match.New(c.Match.Pattern, match.Mode(c.Match.Mode))
}
