package pqvdal

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/pqv-app/pqv"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/schema"
)

// schemaFromHandler builds a schema tree from the flattened (depth-first) schema element list.
// Names are the names written in the file, not the Go field names the reader generates.
func schemaFromHandler(schemaHandler *schema.SchemaHandler) (*pqv.SchemaNode, errorsx.Error) {
	elements := schemaHandler.SchemaElements
	if len(elements) == 0 {
		return nil, errorsx.Errorf("file has no schema elements")
	}

	names := make([]string, len(elements))
	for i, element := range elements {
		names[i] = element.GetName()
		if i < len(schemaHandler.Infos) && schemaHandler.Infos[i] != nil && schemaHandler.Infos[i].ExName != "" {
			names[i] = schemaHandler.Infos[i].ExName
		}
	}

	root, next, err := buildSchemaNode(elements, names, 0)
	if err != nil {
		return nil, err
	}

	if next != len(elements) {
		return nil, errorsx.Errorf("schema has %d elements, but only %d are reachable from the root", len(elements), next)
	}

	return root, nil
}

func buildSchemaNode(elements []*parquet.SchemaElement, names []string, index int) (*pqv.SchemaNode, int, errorsx.Error) {
	if index >= len(elements) {
		return nil, index, errorsx.Errorf("schema element %d missing (schema has %d elements)", index, len(elements))
	}

	element := elements[index]
	node := &pqv.SchemaNode{
		Name: names[index],
	}

	if element.IsSetType() {
		node.Type = element.GetType().String()
	}
	if element.IsSetRepetitionType() {
		node.Repetition = element.GetRepetitionType().String()
	}
	if element.IsSetConvertedType() {
		node.ConvertedType = element.GetConvertedType().String()
	}

	next := index + 1
	for i := int32(0); i < element.GetNumChildren(); i++ {
		child, childNext, err := buildSchemaNode(elements, names, next)
		if err != nil {
			return nil, next, err
		}

		node.Fields = append(node.Fields, child)
		next = childNext
	}

	return node, next, nil
}
