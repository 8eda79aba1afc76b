// Package yaml provides a YAML format. Mapping order is preserved in both
// directions.
package yaml

import (
	"bytes"
	"fmt"
	"math"

	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/internal/tree"
	"gopkg.in/yaml.v3"
)

// yamlFormat implements qualify.Format for YAML.
type yamlFormat struct {
	indent int
}

// Option configures the YAML format.
type Option func(*yamlFormat)

// WithIndent sets the number of spaces used for nesting. The default is 2.
func WithIndent(spaces int) Option {
	return func(f *yamlFormat) { f.indent = spaces }
}

// New returns a YAML format.
func New(opts ...Option) qualify.Format {
	f := &yamlFormat{indent: 2}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ContentType returns the MIME type for YAML.
func (f *yamlFormat) ContentType() string {
	return "application/yaml"
}

// ToJSON converts the first YAML document in data to JSON. Empty input is
// null.
func (f *yamlFormat) ToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return tree.NewNull().JSON()
	}
	n, err := fromYAML(doc.Content[0], 0)
	if err != nil {
		return nil, err
	}
	return n.JSON()
}

// FromJSON converts a JSON document to YAML.
func (f *yamlFormat) FromJSON(data []byte) ([]byte, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(f.indent)
	if err := enc.Encode(toYAML(n)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// maxAliasDepth bounds alias expansion.
const maxAliasDepth = 64

func fromYAML(y *yaml.Node, depth int) (*tree.Node, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("yaml: nesting deeper than %d", maxAliasDepth)
	}
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return tree.NewNull(), nil
		}
		return fromYAML(y.Content[0], depth)
	case yaml.AliasNode:
		return fromYAML(y.Alias, depth+1)
	case yaml.SequenceNode:
		n := &tree.Node{Kind: tree.Array, Items: make([]*tree.Node, 0, len(y.Content))}
		for _, c := range y.Content {
			item, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, item)
		}
		return n, nil
	case yaml.MappingNode:
		return fromMapping(y, depth)
	case yaml.ScalarNode:
		return fromScalar(y)
	}
	return nil, fmt.Errorf("yaml: unsupported node kind %v at line %d", y.Kind, y.Line)
}

// fromMapping converts a mapping. Keys from << merges fill in names the
// mapping does not set itself.
func fromMapping(y *yaml.Node, depth int) (*tree.Node, error) {
	explicit := make(map[string]bool, len(y.Content)/2)
	for i := 0; i+1 < len(y.Content); i += 2 {
		if k := y.Content[i]; k.ShortTag() != "!!merge" {
			explicit[k.Value] = true
		}
	}

	n := &tree.Node{Kind: tree.Object, Members: make([]tree.Member, 0, len(y.Content)/2)}
	merged := make(map[string]bool)
	for i := 0; i+1 < len(y.Content); i += 2 {
		k, v := y.Content[i], y.Content[i+1]
		if k.ShortTag() == "!!merge" {
			sources := []*yaml.Node{v}
			if v.Kind == yaml.SequenceNode {
				sources = v.Content
			}
			for _, src := range sources {
				m, err := fromYAML(src, depth+1)
				if err != nil {
					return nil, err
				}
				if m.Kind != tree.Object {
					return nil, fmt.Errorf("yaml: merge of non-mapping at line %d", v.Line)
				}
				for _, member := range m.Members {
					if explicit[member.Name] || merged[member.Name] {
						continue
					}
					merged[member.Name] = true
					n.Members = append(n.Members, member)
				}
			}
			continue
		}
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("yaml: non-scalar key at line %d", k.Line)
		}
		value, err := fromYAML(v, depth+1)
		if err != nil {
			return nil, err
		}
		n.Members = append(n.Members, tree.Member{Name: k.Value, Value: value})
	}
	return n, nil
}

func fromScalar(y *yaml.Node) (*tree.Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return tree.NewNull(), nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, err
		}
		return tree.NewBool(b), nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err == nil {
			return tree.NewInt(i), nil
		}
		var u uint64
		if err := y.Decode(&u); err != nil {
			return nil, err
		}
		return tree.NewUint(u), nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("yaml: %q at line %d: %w", y.Value, y.Line, tree.ErrUnrepresentable)
		}
		return tree.NewFloat(f)
	}
	return tree.NewString(y.Value), nil
}

func toYAML(n *tree.Node) *yaml.Node {
	switch n.Kind {
	case tree.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case tree.Bool:
		v := "false"
		if n.Bool {
			v = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
	case tree.Number:
		tag := "!!float"
		if n.IsInteger() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.Text}
	case tree.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Text}
	case tree.Array:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(n.Items) == 0 {
			y.Style = yaml.FlowStyle
		}
		for _, item := range n.Items {
			y.Content = append(y.Content, toYAML(item))
		}
		return y
	case tree.Object:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if len(n.Members) == 0 {
			y.Style = yaml.FlowStyle
		}
		for _, m := range n.Members {
			y.Content = append(y.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Name},
				toYAML(m.Value))
		}
		return y
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
