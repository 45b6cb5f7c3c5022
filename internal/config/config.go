// Package config provides configuration types, defaults, and persistence
// for lendreg.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudwalk/lending-registry/internal/access"
)

// AccessConfig selects the authorization policy guarding privileged
// operations.
type AccessConfig struct {
	// Policy selects the policy kind.
	// Valid values: "owner" (single owner), "role" (multi-holder role)
	Policy string `mapstructure:"policy"`

	// Owner is the owner identity under the "owner" policy and the
	// initial role holder under the "role" policy.
	Owner string `mapstructure:"owner"`

	// Role names the privileged role under the "role" policy.
	// Default: OWNER_ROLE
	Role string `mapstructure:"role"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level sets the minimum level written to the log file.
	// Valid values: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`

	// Path is the log file location. Empty disables file logging.
	Path string `mapstructure:"path"`
}

// TracingConfig holds trace export configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/lendreg/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Config holds all configuration options for lendreg.
type Config struct {
	// DBPath is the registry database location.
	DBPath string `mapstructure:"db_path"`

	// Market is the ledger identity resources are created under.
	Market string `mapstructure:"market"`

	// Caller is the default acting identity for CLI commands; the
	// --caller flag overrides it.
	Caller string `mapstructure:"caller"`

	// CreationPolicy decides who may create sub-resources.
	// "privileged" (default), "open", or an expression over
	// `creator` and `privileged`, e.g. `privileged || creator == "ops"`.
	CreationPolicy string `mapstructure:"creation_policy"`

	Access  AccessConfig  `mapstructure:"access"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`

	// Flags toggles optional behavior, see the flags package.
	Flags map[string]bool `mapstructure:"flags"`
}

// DefaultDBPath returns the default registry database location.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lendreg/registry.db"
	}
	return filepath.Join(home, ".local", "share", "lendreg", "registry.db")
}

// DefaultTracesFilePath returns the default file exporter output path.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "traces.jsonl"
	}
	return filepath.Join(home, ".config", "lendreg", "traces", "traces.jsonl")
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		DBPath:         DefaultDBPath(),
		CreationPolicy: access.CreationPrivileged,
		Access: AccessConfig{
			Policy: "owner",
			Role:   access.DefaultRole,
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Flags: map[string]bool{
			"resource-cache": true,
			"event-follow":   true,
		},
	}
}

// ValidateAccess checks the access policy configuration.
func ValidateAccess(a AccessConfig) error {
	switch a.Policy {
	case "owner", "role":
	default:
		return fmt.Errorf("invalid access policy %q (valid: owner, role)", a.Policy)
	}
	if a.Owner == "" {
		return fmt.Errorf("access.owner is required")
	}
	if a.Policy == "role" && a.Role == "" {
		return fmt.Errorf("access.role is required under the role policy")
	}
	return nil
}

// ValidateCreationPolicy compiles the creation policy to catch bad
// expressions at startup rather than on first create.
func ValidateCreationPolicy(spec string) error {
	if _, err := access.NewCreationPolicy(spec); err != nil {
		return fmt.Errorf("invalid creation_policy: %w", err)
	}
	return nil
}

// ValidateLog checks the logging configuration.
func ValidateLog(l LogConfig) error {
	switch l.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log.level %q (valid: debug, info, warn, error)", l.Level)
	}
}

// ValidateTracing checks the tracing configuration.
func ValidateTracing(t TracingConfig) error {
	switch t.Exporter {
	case "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("invalid tracing exporter %q (valid: none, file, stdout, otlp)", t.Exporter)
	}
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("invalid tracing sample_rate %v (must be 0.0 to 1.0)", t.SampleRate)
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateAccess(c.Access); err != nil {
		return err
	}
	if err := ValidateCreationPolicy(c.CreationPolicy); err != nil {
		return err
	}
	if err := ValidateLog(c.Log); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}
