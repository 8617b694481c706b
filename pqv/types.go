package pqv

import "github.com/jamesrr39/goutil/errorsx"

// RowGroup is the materialized set of rows of a single row group, in file order.
type RowGroup []interface{}

// RowGroupSource is an open columnar file that can be read one row group at a time.
type RowGroupSource interface {
	Path() string
	NumRows() int64
	NumRowGroups() int
	ReadRowGroup(index int) (RowGroup, errorsx.Error)
	Schema() *SchemaNode
}
