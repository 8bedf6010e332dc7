package parser

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/any-hub/fsprovider/internal/content"
)

func init() {
	MustRegister(Format{
		Type:        content.TypeYAML,
		Description: "YAML content descriptor",
		Suffixes:    []string{".yaml", ".yml"},
		Decode:      decodeYAML,
	})
}

func decodeYAML(data []byte, name, source string) (*content.Element, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty yaml document")
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("content root must be a YAML mapping")
	}
	return decodeYAMLMapping(root, name, source)
}

func decodeYAMLMapping(node *yaml.Node, name, source string) (*content.Element, error) {
	builder := newElementBuilder(name, source)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolveAlias(node.Content[i+1])

		switch value.Kind {
		case yaml.MappingNode:
			child, err := decodeYAMLMapping(value, key, source)
			if err != nil {
				return nil, err
			}
			builder.addChild(child)
		case yaml.SequenceNode:
			values := make([]any, 0, len(value.Content))
			for _, item := range value.Content {
				item = resolveAlias(item)
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("property %s: only scalars are allowed in multi-value property", key)
				}
				scalar, err := decodeYAMLScalar(item)
				if err != nil {
					return nil, fmt.Errorf("property %s: %w", key, err)
				}
				values = append(values, scalar)
			}
			if err := builder.addProperty(key, values); err != nil {
				return nil, err
			}
		case yaml.ScalarNode:
			scalar, err := decodeYAMLScalar(value)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", key, err)
			}
			if err := builder.addProperty(key, scalar); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("property %s: unsupported yaml node kind %d", key, value.Kind)
		}
	}
	return builder.build(), nil
}

func decodeYAMLScalar(node *yaml.Node) (any, error) {
	var value any
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
