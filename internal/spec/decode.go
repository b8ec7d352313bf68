package spec

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/svcdesc/internal/description"
	"gopkg.in/yaml.v3"
)

// Order records the source order of operation and model names, which a
// plain map[string]any cannot carry.
type Order struct {
	Operations []string
	Models     []string
}

// Options converts the order into description options.
func (o Order) Options() []description.Option {
	return []description.Option{
		description.WithOperationOrder(o.Operations...),
		description.WithModelOrder(o.Models...),
	}
}

// Decode turns document bytes into a description config. Files ending in
// .hcl are read as HCL; anything else as YAML (which covers JSON). Documents
// declaring "openapi: 3.x" or "swagger: 2.x" are imported via FromOpenAPI,
// filtered by opts.
func Decode(ctx context.Context, data []byte, name string, opts ...ImportOption) (map[string]any, Order, error) {
	if strings.EqualFold(filepath.Ext(name), ".hcl") {
		return decodeHCL(data, name)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, Order{}, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse description: %v", err), Cause: err}
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return nil, Order{}, &SpecError{Code: ParseError, Message: "parse description: document is empty"}
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, Order{}, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse description: top level must be a mapping, got %s", kindName(root.Kind)), JSONPointer: "#"}
	}

	var config map[string]any
	if err := root.Decode(&config); err != nil {
		return nil, Order{}, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse description: %v", err), Cause: err}
	}
	if config == nil {
		config = map[string]any{}
	}

	switch version := detectOpenAPIVersion(config); version {
	case 2, 3:
		return importOpenAPI(ctx, data, version, opts)
	}

	return config, Order{
		Operations: mappingKeys(root, "operations"),
		Models:     mappingKeys(root, "models"),
	}, nil
}

// mappingKeys returns the keys, in source order, of the mapping stored under
// key in the root mapping node.
func mappingKeys(root *yaml.Node, key string) []string {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != key {
			continue
		}
		value := root.Content[i+1]
		if value.Kind != yaml.MappingNode {
			return nil
		}
		keys := make([]string, 0, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			keys = append(keys, value.Content[j].Value)
		}
		return keys
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "mapping"
	}
}
