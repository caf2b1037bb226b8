package report

import (
	"bytes"
	"fmt"

	"refdoc/internal/shared/util"

	"gopkg.in/yaml.v3"
)

// frontMatter renders base followed by extra as a YAML mapping with
// double-quoted values. Keys in extra override keys in base in place; new
// keys are appended sorted.
func frontMatter(base [][2]string, extra map[string]string) (string, error) {
	keys := make([]string, 0, len(base)+len(extra))
	values := make(map[string]string, len(base)+len(extra))
	for _, kv := range base {
		if _, ok := values[kv[0]]; !ok {
			keys = append(keys, kv[0])
		}
		values[kv[0]] = kv[1]
	}
	for _, k := range util.SortedStringKeys(extra) {
		if _, ok := values[k]; !ok {
			keys = append(keys, k)
		}
		values[k] = extra[k]
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: values[k], Style: yaml.DoubleQuotedStyle},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	return "---\n" + buf.String() + "---\n", nil
}
