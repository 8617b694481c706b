package pqv

// View is what the cursor currently shows: either RowView or SchemaView.
type View interface {
	isView()
}

// RowView shows the row under the cursor.
type RowView struct{}

// SchemaView shows the file schema. Text is computed once when the view is entered.
type SchemaView struct {
	Text string
}

func (RowView) isView()    {}
func (SchemaView) isView() {}
