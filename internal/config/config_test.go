package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Access.Owner = "ops-admin"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "owner", cfg.Access.Policy)
	assert.Equal(t, "privileged", cfg.CreationPolicy)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "file", cfg.Tracing.Exporter)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults with owner are valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("missing owner", func(t *testing.T) {
		cfg := Defaults()
		require.ErrorContains(t, cfg.Validate(), "access.owner is required")
	})

	t.Run("unknown access policy", func(t *testing.T) {
		cfg := validConfig()
		cfg.Access.Policy = "acl"
		require.ErrorContains(t, cfg.Validate(), `invalid access policy "acl"`)
	})

	t.Run("role policy requires a role name", func(t *testing.T) {
		cfg := validConfig()
		cfg.Access.Policy = "role"
		cfg.Access.Role = ""
		require.ErrorContains(t, cfg.Validate(), "access.role is required")
	})

	t.Run("creation policy expressions are compiled", func(t *testing.T) {
		cfg := validConfig()
		cfg.CreationPolicy = `privileged || creator == "partner-desk"`
		require.NoError(t, cfg.Validate())

		cfg.CreationPolicy = `creator ==`
		require.ErrorContains(t, cfg.Validate(), "invalid creation_policy")
	})

	t.Run("creation policy must be boolean", func(t *testing.T) {
		cfg := validConfig()
		cfg.CreationPolicy = `creator`
		require.Error(t, cfg.Validate())
	})

	t.Run("log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "verbose"
		require.ErrorContains(t, cfg.Validate(), "invalid log.level")
	})

	t.Run("tracing exporter", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracing.Exporter = "zipkin"
		require.ErrorContains(t, cfg.Validate(), "invalid tracing exporter")
	})

	t.Run("tracing sample rate bounds", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracing.SampleRate = 1.5
		require.ErrorContains(t, cfg.Validate(), "sample_rate")
	})
}
