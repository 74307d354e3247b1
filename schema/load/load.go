// Package load reads cache mapping declarations from YAML.
//
// A definition lists key and value columns in order. Order matters,
// both for tuple binding and for the derived table name, so columns
// are sequences, not YAML mappings:
//
//	keys:
//	  - name: region
//	    type: TEXT
//	  - host            # shorthand for an untyped column
//	values:
//	  - name: payload
//	    type: BLOB
//	timestamp: true
//
// Parse returns a validated schema.Mapping; every rule schema.New
// enforces applies here too.
package load

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/cachedict/schema"
	"github.com/syssam/cachedict/schema/field"
)

// Definition is the YAML shape of one cache mapping.
type Definition struct {
	Keys      []Column `yaml:"keys"`
	Values    []Column `yaml:"values"`
	Timestamp bool     `yaml:"timestamp"`
}

// Column is one declared column. In YAML it is either a mapping with
// name and an optional type, or a bare scalar naming an untyped column.
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// UnmarshalYAML accepts both the mapping and the bare-scalar forms.
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Name = node.Value
		c.Type = ""
		return nil
	}
	type plain Column
	return node.Decode((*plain)(c))
}

// Mapping converts the definition into a validated schema.Mapping.
func (d *Definition) Mapping() (*schema.Mapping, error) {
	var opts []schema.Option
	if d.Timestamp {
		opts = append(opts, schema.WithTimestamp())
	}
	return schema.New(fields(d.Keys), fields(d.Values), opts...)
}

func fields(cols []Column) []field.Field {
	fs := make([]field.Field, len(cols))
	for i, c := range cols {
		fs[i] = field.Typed(c.Name, c.Type)
	}
	return fs
}

// Parse decodes a YAML mapping definition and validates it.
func Parse(data []byte) (*schema.Mapping, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("load: parse mapping definition: %w", err)
	}
	return d.Mapping()
}

// ParseFile reads and parses the YAML mapping definition at path.
func ParseFile(path string) (*schema.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read mapping definition: %w", err)
	}
	return Parse(data)
}
