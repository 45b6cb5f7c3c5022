package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "creation_policy: privileged")

	// the template must parse as YAML
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Contains(t, parsed, "access")
}

func TestSaveAccess(t *testing.T) {
	t.Run("creates the file when missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")

		require.NoError(t, SaveAccess(path, AccessConfig{Policy: "owner", Owner: "ops-admin", Role: "OWNER_ROLE"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var parsed struct {
			Access AccessConfig `yaml:"access"`
		}
		require.NoError(t, yaml.Unmarshal(data, &parsed))
		assert.Equal(t, "ops-admin", parsed.Access.Owner)
	})

	t.Run("preserves other sections and comments", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		existing := `# my registry
db_path: /data/registry.db
access:
  policy: owner
  owner: old-admin
log:
  level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(existing), 0o600))

		require.NoError(t, SaveAccess(path, AccessConfig{Policy: "role", Owner: "new-admin", Role: "OWNER_ROLE"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		text := string(data)
		assert.Contains(t, text, "# my registry")
		assert.Contains(t, text, "db_path: /data/registry.db")
		assert.Contains(t, text, "level: debug")
		assert.NotContains(t, text, "old-admin")

		var parsed struct {
			Access AccessConfig `yaml:"access"`
		}
		require.NoError(t, yaml.Unmarshal(data, &parsed))
		assert.Equal(t, "role", parsed.Access.Policy)
		assert.Equal(t, "new-admin", parsed.Access.Owner)
	})
}
