package datasource

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treegrid/pkg/treegrid"
)

// fileNode mirrors treegrid.TreeNode but accepts any scalar field value, so
// `size: 12` and `done: true` load as "12" and "true".
type fileNode struct {
	ID       string         `yaml:"id"`
	Fields   map[string]any `yaml:"fields"`
	Children []fileNode     `yaml:"children"`
}

// LoadFile reads a YAML or JSON node list. JSON is decoded through the YAML
// parser, which accepts it.
func LoadFile(path string) ([]treegrid.TreeNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseNodes(data)
}

// ParseNodes decodes a YAML or JSON document holding a list of nodes.
// Empty input yields an empty forest.
func ParseNodes(data []byte) ([]treegrid.TreeNode, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var nodes []fileNode
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parse nodes: %w", err)
	}
	return convertNodes(nodes, "")
}

func convertNodes(nodes []fileNode, parent string) ([]treegrid.TreeNode, error) {
	out := make([]treegrid.TreeNode, 0, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			if parent == "" {
				return nil, fmt.Errorf("root node %d has no id", i)
			}
			return nil, fmt.Errorf("child %d of %s has no id", i, parent)
		}
		children, err := convertNodes(n.Children, n.ID)
		if err != nil {
			return nil, err
		}
		var fields map[string]string
		if len(n.Fields) > 0 {
			fields = make(map[string]string, len(n.Fields))
			for k, v := range n.Fields {
				fields[k] = scalarString(v)
			}
		}
		if len(children) == 0 {
			children = nil
		}
		out = append(out, treegrid.TreeNode{ID: n.ID, Fields: fields, Children: children})
	}
	return out, nil
}

func scalarString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
