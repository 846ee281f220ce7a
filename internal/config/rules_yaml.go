package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ierg/nscsync/internal/model"
)

// ruleYAML is the on-disk shape of one nsc.rename entry.
type ruleYAML struct {
	Mode    string `yaml:"mode"`
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
	Desc    string `yaml:"desc"`
	Import  bool   `yaml:"import"`
}

// decodeOrderedRules walks the raw YAML document down to the nsc.rename
// mapping and decodes its entries in authored order. yaml.Node preserves
// mapping key order; generic map decoding does not.
func decodeOrderedRules(data []byte) ([]model.Rule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	rename := findMapping(doc.Content[0], "nsc", "rename")
	if rename == nil {
		return nil, nil
	}
	if rename.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("nsc.rename: expected a mapping of rule name to rule definition")
	}

	rules := make([]model.Rule, 0, len(rename.Content)/2)
	for i := 0; i+1 < len(rename.Content); i += 2 {
		key := rename.Content[i]
		value := rename.Content[i+1]

		var raw ruleYAML
		if err := value.Decode(&raw); err != nil {
			return nil, fmt.Errorf("nsc.rename.%s: %w", key.Value, err)
		}
		rules = append(rules, model.Rule{
			Name:        key.Value,
			Mode:        raw.Mode,
			Pattern:     raw.Pattern,
			Replace:     raw.Replace,
			Description: raw.Desc,
			Import:      raw.Import,
		})
	}

	return rules, nil
}

// findMapping descends through nested mapping keys and returns the value
// node at the end of the path, or nil if any key is absent.
func findMapping(node *yaml.Node, path ...string) *yaml.Node {
	current := node
	for _, key := range path {
		if current == nil || current.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(current.Content); i += 2 {
			if current.Content[i].Value == key {
				next = current.Content[i+1]
				break
			}
		}
		current = next
	}
	return current
}
