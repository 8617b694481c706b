package pqv

import (
	"bytes"

	"github.com/jamesrr39/goutil/errorsx"
	"gopkg.in/yaml.v3"
)

// SchemaNode is one element of a file schema. Leaf nodes carry a physical Type, group nodes carry Fields.
type SchemaNode struct {
	Name          string        `yaml:"name"`
	Type          string        `yaml:"type,omitempty"`
	Repetition    string        `yaml:"repetition,omitempty"`
	ConvertedType string        `yaml:"converted_type,omitempty"`
	Fields        []*SchemaNode `yaml:"fields,omitempty"`
}

// Text renders the schema tree as YAML.
func (n *SchemaNode) Text() (string, errorsx.Error) {
	if n == nil {
		return "", nil
	}

	buf := bytes.NewBuffer(nil)
	encoder := yaml.NewEncoder(buf)
	encoder.SetIndent(2)

	err := encoder.Encode(n)
	if err != nil {
		return "", errorsx.Wrap(err, "schemaRoot", n.Name)
	}

	err = encoder.Close()
	if err != nil {
		return "", errorsx.Wrap(err)
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// LeafCount returns the number of leaf (column) nodes below n.
func (n *SchemaNode) LeafCount() int {
	if n == nil {
		return 0
	}

	if len(n.Fields) == 0 {
		return 1
	}

	count := 0
	for _, field := range n.Fields {
		count += field.LeafCount()
	}

	return count
}
