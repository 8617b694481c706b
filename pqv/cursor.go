package pqv

import (
	"encoding/json"
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
)

// RowCursor pages through a RowGroupSource one row at a time, keeping exactly one row group resident.
// It is not safe for concurrent use.
type RowCursor struct {
	source      RowGroupSource
	buffer      RowGroup
	position    Position
	view        View
	reloadCount int
}

// NewRowCursor creates a cursor on the first row of the source, loading the first row group.
func NewRowCursor(source RowGroupSource) (*RowCursor, errorsx.Error) {
	c := &RowCursor{
		source: source,
		view:   RowView{},
	}

	if source.NumRowGroups() == 0 {
		// empty file; nothing to load
		return c, nil
	}

	buffer, err := c.load(0)
	if err != nil {
		return nil, err
	}

	c.buffer = buffer

	// skip over leading empty row groups
	for !c.position.Contains(len(c.buffer)) && c.position.GroupIndex+1 < source.NumRowGroups() {
		err = c.crossForward()
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *RowCursor) load(groupIndex int) (RowGroup, errorsx.Error) {
	buffer, err := c.source.ReadRowGroup(groupIndex)
	if err != nil {
		return nil, errorsx.Wrap(err, "rowGroupIndex", groupIndex)
	}

	c.reloadCount++
	return buffer, nil
}

func (c *RowCursor) crossForward() errorsx.Error {
	pos := c.position
	pos.GroupIndex++
	pos.GroupStartOffset += int64(len(c.buffer))

	buffer, err := c.load(pos.GroupIndex)
	if err != nil {
		return err
	}

	c.position = pos
	c.buffer = buffer
	return nil
}

// Advance moves to the next row, loading the next row group if a group boundary is crossed.
// It is a no-op on the last row, and while the schema is shown.
func (c *RowCursor) Advance() errorsx.Error {
	if _, ok := c.view.(SchemaView); ok {
		return nil
	}

	pos, crossed := NextPosition(c.position, len(c.buffer), c.source.NumRows())
	if !crossed {
		c.position = pos
		return nil
	}

	buffer, err := c.load(pos.GroupIndex)
	if err != nil {
		return err
	}

	// row groups without rows are passed over
	for len(buffer) == 0 && pos.GroupIndex+1 < c.source.NumRowGroups() {
		pos.GroupIndex++
		buffer, err = c.load(pos.GroupIndex)
		if err != nil {
			return err
		}
	}

	c.position = pos
	c.buffer = buffer
	return nil
}

// Retreat moves to the previous row, loading the previous row group if a group boundary is crossed.
// It is a no-op on the first row, and while the schema is shown.
func (c *RowCursor) Retreat() errorsx.Error {
	if _, ok := c.view.(SchemaView); ok {
		return nil
	}

	pos, crossed := PreviousPosition(c.position)
	if !crossed {
		c.position = pos
		return nil
	}

	buffer, err := c.load(pos.GroupIndex)
	if err != nil {
		return err
	}
	pos = RepairRetreatOffset(pos, len(buffer))

	for len(buffer) == 0 && pos.GroupIndex > 0 {
		pos.GroupIndex--
		buffer, err = c.load(pos.GroupIndex)
		if err != nil {
			return err
		}
		pos = RepairRetreatOffset(pos, len(buffer))
	}

	c.position = pos
	c.buffer = buffer
	return nil
}

// Seek moves the cursor to the row at rowIndex, one row at a time, so that each group boundary on the way
// is crossed exactly once. rowIndex is clamped to the rows in the file.
func (c *RowCursor) Seek(rowIndex int64) errorsx.Error {
	if _, ok := c.view.(SchemaView); ok {
		return errorsx.Errorf("cannot seek while the schema is shown")
	}

	var err errorsx.Error
	for c.position.RowIndex < rowIndex && c.position.RowIndex < c.source.NumRows()-1 {
		err = c.Advance()
		if err != nil {
			return err
		}
	}

	for c.position.RowIndex > rowIndex && c.position.RowIndex > 0 {
		err = c.Retreat()
		if err != nil {
			return err
		}
	}

	return nil
}

// CurrentRow returns the row under the cursor as indented JSON.
// ok is false if there is no row to show, which only happens for a file without rows.
func (c *RowCursor) CurrentRow() (text string, ok bool, err errorsx.Error) {
	indexInGroup := c.position.RowIndex - c.position.GroupStartOffset
	if indexInGroup < 0 || indexInGroup >= int64(len(c.buffer)) {
		return "", false, nil
	}

	rowJSON, marshalErr := json.MarshalIndent(c.buffer[indexInGroup], "", "  ")
	if marshalErr != nil {
		return "", false, errorsx.Wrap(marshalErr, "rowIndex", c.position.RowIndex)
	}

	return string(rowJSON), true, nil
}

// ToggleSchema switches between showing the current row and showing the schema.
// The schema text is computed when the schema view is entered, and dropped when it is left.
func (c *RowCursor) ToggleSchema() errorsx.Error {
	switch c.view.(type) {
	case SchemaView:
		c.view = RowView{}
		return nil
	case RowView:
		text, err := c.source.Schema().Text()
		if err != nil {
			return err
		}
		c.view = SchemaView{Text: text}
		return nil
	default:
		return errorsx.Errorf("unknown view type: %T", c.view)
	}
}

// StatusLine summarises the cursor position, e.g. "data.parquet - group 1/2 - row 3/5".
func (c *RowCursor) StatusLine() string {
	groupNumber := c.position.GroupIndex + 1
	if c.source.NumRowGroups() == 0 {
		groupNumber = 0
	}

	rowNumber := c.position.RowIndex + 1
	if c.source.NumRows() == 0 {
		rowNumber = 0
	}

	return fmt.Sprintf(
		"%s - group %d/%d - row %d/%d",
		c.source.Path(),
		groupNumber,
		c.source.NumRowGroups(),
		rowNumber,
		c.source.NumRows(),
	)
}

func (c *RowCursor) Position() Position {
	return c.position
}

func (c *RowCursor) View() View {
	return c.view
}

// BufferLen is the row count of the resident row group.
func (c *RowCursor) BufferLen() int {
	return len(c.buffer)
}

// ReloadCount is the number of row groups loaded since the cursor was created, including the first.
func (c *RowCursor) ReloadCount() int {
	return c.reloadCount
}
