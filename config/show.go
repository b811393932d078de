package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToYAML renders the merged entries as a YAML mapping in declaration order.
func (c *Config) ToYAML() (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range c.Entries {
		var value yaml.Node
		if err := value.Encode(e); err != nil {
			return "", fmt.Errorf("failed to marshal entry %q: %w", e.Key, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Key},
			&value,
		)
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ToJSON renders the merged entries as a JSON array in declaration order.
func (c *Config) ToJSON() (string, error) {
	entries := c.Entries
	if entries == nil {
		entries = []*Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data) + "\n", nil
}
