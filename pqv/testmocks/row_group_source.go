package testmocks

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/pqv-app/pqv"
)

var _ pqv.RowGroupSource = &MockRowGroupSource{}

type MockRowGroupSource struct {
	PathFunc         func() string
	NumRowsFunc      func() int64
	NumRowGroupsFunc func() int
	ReadRowGroupFunc func(index int) (pqv.RowGroup, errorsx.Error)
	SchemaFunc       func() *pqv.SchemaNode

	// ReadRowGroupCalls records the index of every ReadRowGroup call, in order.
	ReadRowGroupCalls []int
}

func (s *MockRowGroupSource) Path() string {
	return s.PathFunc()
}

func (s *MockRowGroupSource) NumRows() int64 {
	return s.NumRowsFunc()
}

func (s *MockRowGroupSource) NumRowGroups() int {
	return s.NumRowGroupsFunc()
}

func (s *MockRowGroupSource) ReadRowGroup(index int) (pqv.RowGroup, errorsx.Error) {
	s.ReadRowGroupCalls = append(s.ReadRowGroupCalls, index)
	return s.ReadRowGroupFunc(index)
}

func (s *MockRowGroupSource) Schema() *pqv.SchemaNode {
	return s.SchemaFunc()
}

// NewMockRowGroupSource creates an in-memory source with one row group per entry in groupSizes.
// Each row is a map of {"row": <global row index>, "group": <group index>}.
func NewMockRowGroupSource(path string, groupSizes ...int) *MockRowGroupSource {
	var groups []pqv.RowGroup
	var totalRows int64
	for groupIndex, size := range groupSizes {
		group := make(pqv.RowGroup, size)
		for i := range group {
			group[i] = map[string]interface{}{
				"row":   totalRows,
				"group": groupIndex,
			}
			totalRows++
		}
		groups = append(groups, group)
	}

	return &MockRowGroupSource{
		PathFunc: func() string {
			return path
		},
		NumRowsFunc: func() int64 {
			return totalRows
		},
		NumRowGroupsFunc: func() int {
			return len(groups)
		},
		ReadRowGroupFunc: func(index int) (pqv.RowGroup, errorsx.Error) {
			if index < 0 || index >= len(groups) {
				return nil, errorsx.Errorf("row group %d out of range", index)
			}
			return groups[index], nil
		},
		SchemaFunc: func() *pqv.SchemaNode {
			return &pqv.SchemaNode{
				Name:       "schema",
				Repetition: "REQUIRED",
				Fields: []*pqv.SchemaNode{
					{Name: "row", Type: "INT64", Repetition: "REQUIRED"},
					{Name: "group", Type: "INT32", Repetition: "REQUIRED"},
				},
			}
		},
	}
}
