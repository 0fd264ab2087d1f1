package decode

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen11/layerflow/internal/domain/document"
)

// decodeYAML decodes into yaml.Node trees so that mapping keys keep their
// order. Only the first YAML document is read.
func decodeYAML(data []byte) (*document.Layer, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		return document.NewLayer(""), nil
	}

	root := &node
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return document.NewLayer(""), nil
		}
		root = root.Content[0]
	}
	root = resolveAlias(root)
	if root.Kind != yaml.MappingNode {
		return nil, errNotObject
	}
	return yamlMapping(root, "", 1)
}

func yamlMapping(n *yaml.Node, name string, depth int) (*document.Layer, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	layer := document.NewLayer(name)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
		}
		key := keyNode.Value
		v, err := yamlValue(valNode, key, depth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		layer.Set(key, v)
	}
	return layer, nil
}

func yamlValue(n *yaml.Node, key string, depth int) (document.Value, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		l, err := yamlMapping(n, key, depth+1)
		if err != nil {
			return document.Value{}, err
		}
		return document.Nested(l), nil
	case yaml.SequenceNode:
		items := make([]document.Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := yamlValue(c, key, depth+1)
			if err != nil {
				return document.Value{}, err
			}
			items = append(items, item)
		}
		return document.List(items...), nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return document.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return document.Scalar(v), nil
	default:
		return document.Value{}, errors.New("unsupported YAML node")
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
