package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cloudwalk/lending-registry/internal/log"
)

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Lendreg Configuration

# Registry database location (default: ~/.local/share/lendreg/registry.db)
# db_path: /path/to/registry.db

# Market identity the ledger records resources under.
# Required before 'lendreg init'.
# market: market-main

# Default acting identity for commands; --caller overrides it.
# caller: ops-admin

# Who may create credit lines and liquidity pools.
# "privileged" (default) limits creation to policy holders,
# "open" admits anyone, or write an expression over the variables
# 'creator' (string) and 'privileged' (bool):
# creation_policy: privileged || creator == "partner-desk"
creation_policy: privileged

# Access control for privileged operations
access:
  policy: owner        # "owner" (single owner) or "role" (multi-holder role)
  # owner: ops-admin   # Required: the owner / initial role holder
  # role: OWNER_ROLE   # Role name under the "role" policy

# Logging
log:
  level: info          # debug, info, warn, error
  # path: ~/.local/share/lendreg/lendreg.log

# Distributed tracing (disabled by default)
# tracing:
#   enabled: true
#   exporter: file              # none, file, stdout, otlp
#   file_path: ~/.config/lendreg/traces/traces.jsonl
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1  # Sample 10% of traces
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// SaveAccess updates the access section in the config file in place,
// preserving comments and formatting elsewhere by editing yaml.Node.
func SaveAccess(configPath string, a AccessConfig) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	accessNode, err := buildAccessNode(a)
	if err != nil {
		return fmt.Errorf("building access node: %w", err)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: "access"},
						accessNode,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind == yaml.MappingNode {
			found := false
			for i := 0; i < len(root.Content)-1; i += 2 {
				if root.Content[i].Value == "access" {
					root.Content[i+1] = accessNode
					found = true
					break
				}
			}
			if !found {
				root.Content = append(root.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: "access"},
					accessNode,
				)
			}
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func buildAccessNode(a AccessConfig) (*yaml.Node, error) {
	var node yaml.Node
	if err := node.Encode(map[string]string{
		"policy": a.Policy,
		"owner":  a.Owner,
		"role":   a.Role,
	}); err != nil {
		return nil, err
	}
	return &node, nil
}
