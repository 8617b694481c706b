package pqv

// Position is the navigable state of a cursor over a row-group partitioned file.
//
// GroupStartOffset is the global index of the first row of the group at GroupIndex.
type Position struct {
	GroupIndex       int
	GroupStartOffset int64
	RowIndex         int64
}

// NextPosition moves one row forward. bufferLen is the row count of the group at pos.GroupIndex.
// The returned bool is true when the new row lies in the next row group, which must then be loaded.
// At the last row (or in an empty file) pos is returned unchanged.
func NextPosition(pos Position, bufferLen int, totalRows int64) (Position, bool) {
	if pos.RowIndex >= totalRows-1 {
		return pos, false
	}

	next := pos
	next.RowIndex++
	if next.RowIndex < pos.GroupStartOffset+int64(bufferLen) {
		return next, false
	}

	next.GroupIndex++
	next.GroupStartOffset += int64(bufferLen)
	return next, true
}

// PreviousPosition moves one row backward. The returned bool is true when the new row lies in the previous
// row group. In that case GroupStartOffset still points at the group that was left, and must be fixed with
// RepairRetreatOffset once the length of the entered group is known.
func PreviousPosition(pos Position) (Position, bool) {
	if pos.RowIndex <= 0 {
		return pos, false
	}

	prev := pos
	prev.RowIndex--
	if prev.RowIndex >= pos.GroupStartOffset {
		return prev, false
	}

	prev.GroupIndex--
	return prev, true
}

// RepairRetreatOffset moves GroupStartOffset back by the row count of the group that was just entered.
func RepairRetreatOffset(pos Position, enteredGroupLen int) Position {
	pos.GroupStartOffset -= int64(enteredGroupLen)
	return pos
}

// Contains reports whether the row at pos.RowIndex is inside a group of bufferLen rows starting at GroupStartOffset.
func (pos Position) Contains(bufferLen int) bool {
	return pos.GroupStartOffset <= pos.RowIndex && pos.RowIndex < pos.GroupStartOffset+int64(bufferLen)
}
