package pqv_test

import (
	"strconv"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/pqv-app/pqv"
	"github.com/jamesrr39/pqv-app/pqv/testmocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var groupShapes = [][]int{
	{1},
	{5},
	{3, 2},
	{2, 5},
	{1, 1, 1},
	{4, 1, 6, 2},
}

func newCursor(t *testing.T, groupSizes ...int) (*pqv.RowCursor, *testmocks.MockRowGroupSource) {
	source := testmocks.NewMockRowGroupSource("test.parquet", groupSizes...)
	cursor, err := pqv.NewRowCursor(source)
	require.NoError(t, errorsx.ErrWithStack(err))

	return cursor, source
}

func sum(values []int) int {
	total := 0
	for _, value := range values {
		total += value
	}
	return total
}

func assertInvariant(t *testing.T, cursor *pqv.RowCursor) {
	t.Helper()
	pos := cursor.Position()
	if cursor.BufferLen() == 0 {
		assert.Equal(t, int64(0), pos.RowIndex)
		return
	}
	assert.Truef(t, pos.Contains(cursor.BufferLen()), "position %#v not inside buffer of %d rows", pos, cursor.BufferLen())
}

func assertRowIndexInText(t *testing.T, cursor *pqv.RowCursor) {
	t.Helper()
	text, ok, err := cursor.CurrentRow()
	require.NoError(t, errorsx.ErrWithStack(err))
	require.True(t, ok)

	// the mock rows record their own global index
	assert.Contains(t, text, `"row": `+strconv.FormatInt(cursor.Position().RowIndex, 10)+"\n")
}

func TestRowCursor_Scenario(t *testing.T) {
	cursor, source := newCursor(t, 3, 2)
	assert.Equal(t, pqv.Position{GroupIndex: 0, GroupStartOffset: 0, RowIndex: 0}, cursor.Position())
	assert.Equal(t, []int{0}, source.ReadRowGroupCalls)

	require.Nil(t, cursor.Advance())
	require.Nil(t, cursor.Advance())
	assert.Equal(t, pqv.Position{GroupIndex: 0, GroupStartOffset: 0, RowIndex: 2}, cursor.Position())
	assert.Equal(t, []int{0}, source.ReadRowGroupCalls)

	require.Nil(t, cursor.Advance())
	assert.Equal(t, pqv.Position{GroupIndex: 1, GroupStartOffset: 3, RowIndex: 3}, cursor.Position())
	assert.Equal(t, []int{0, 1}, source.ReadRowGroupCalls)

	require.Nil(t, cursor.Advance())
	assert.Equal(t, pqv.Position{GroupIndex: 1, GroupStartOffset: 3, RowIndex: 4}, cursor.Position())
	assert.Equal(t, []int{0, 1}, source.ReadRowGroupCalls)

	// last row: saturates
	require.Nil(t, cursor.Advance())
	assert.Equal(t, pqv.Position{GroupIndex: 1, GroupStartOffset: 3, RowIndex: 4}, cursor.Position())
	assertRowIndexInText(t, cursor)

	require.Nil(t, cursor.Retreat())
	require.Nil(t, cursor.Retreat())
	assert.Equal(t, pqv.Position{GroupIndex: 0, GroupStartOffset: 0, RowIndex: 2}, cursor.Position())
	assert.Equal(t, []int{0, 1, 0}, source.ReadRowGroupCalls)
	assertRowIndexInText(t, cursor)

	assert.Equal(t, "test.parquet - group 1/2 - row 3/5", cursor.StatusLine())
}

func TestRowCursor_RetreatUsesLengthOfEnteredGroup(t *testing.T) {
	// the group being left (5 rows) is longer than the group being entered (2 rows)
	cursor, _ := newCursor(t, 2, 5)

	require.Nil(t, cursor.Advance())
	require.Nil(t, cursor.Advance())
	assert.Equal(t, pqv.Position{GroupIndex: 1, GroupStartOffset: 2, RowIndex: 2}, cursor.Position())

	require.Nil(t, cursor.Retreat())
	assert.Equal(t, pqv.Position{GroupIndex: 0, GroupStartOffset: 0, RowIndex: 1}, cursor.Position())
	assertRowIndexInText(t, cursor)
}

func TestRowCursor_Saturation(t *testing.T) {
	for _, shape := range groupShapes {
		cursor, _ := newCursor(t, shape...)
		totalRows := int64(sum(shape))

		for i := int64(0); i < totalRows-1; i++ {
			require.Nil(t, cursor.Advance())
			assertInvariant(t, cursor)
			assertRowIndexInText(t, cursor)
		}
		assert.Equal(t, totalRows-1, cursor.Position().RowIndex)
		assert.Equal(t, len(shape)-1, cursor.Position().GroupIndex)

		require.Nil(t, cursor.Advance())
		assert.Equal(t, totalRows-1, cursor.Position().RowIndex)

		for i := int64(0); i < totalRows-1; i++ {
			require.Nil(t, cursor.Retreat())
			assertInvariant(t, cursor)
			assertRowIndexInText(t, cursor)
		}
		assert.Equal(t, pqv.Position{}, cursor.Position())

		require.Nil(t, cursor.Retreat())
		assert.Equal(t, pqv.Position{}, cursor.Position())
	}
}

func TestRowCursor_RoundTrip(t *testing.T) {
	for _, shape := range groupShapes {
		cursor, _ := newCursor(t, shape...)
		totalRows := int64(sum(shape))

		for cursor.Position().RowIndex < totalRows-1 {
			before := cursor.Position()

			require.Nil(t, cursor.Advance())
			require.Nil(t, cursor.Retreat())
			assert.Equal(t, before, cursor.Position())

			if before.RowIndex > 0 {
				require.Nil(t, cursor.Retreat())
				require.Nil(t, cursor.Advance())
				assert.Equal(t, before, cursor.Position())
			}

			require.Nil(t, cursor.Advance())
		}
	}
}

func TestRowCursor_ReloadCount(t *testing.T) {
	cursor, source := newCursor(t, 4, 1, 6, 2)
	assert.Equal(t, 1, cursor.ReloadCount())

	for i := 0; i < 3; i++ {
		require.Nil(t, cursor.Advance())
	}
	assert.Equal(t, 1, cursor.ReloadCount())

	// boundaries at rows 4, 5 and 11
	for i := 0; i < 9; i++ {
		require.Nil(t, cursor.Advance())
	}
	assert.Equal(t, int64(12), cursor.Position().RowIndex)
	assert.Equal(t, 4, cursor.ReloadCount())
	assert.Equal(t, []int{0, 1, 2, 3}, source.ReadRowGroupCalls)

	for i := 0; i < 12; i++ {
		require.Nil(t, cursor.Retreat())
	}
	assert.Equal(t, 7, cursor.ReloadCount())
	assert.Equal(t, []int{0, 1, 2, 3, 2, 1, 0}, source.ReadRowGroupCalls)
}

func TestRowCursor_SingleGroupNeverReloads(t *testing.T) {
	cursor, _ := newCursor(t, 10)
	for i := 0; i < 20; i++ {
		require.Nil(t, cursor.Advance())
	}
	for i := 0; i < 20; i++ {
		require.Nil(t, cursor.Retreat())
	}
	assert.Equal(t, 1, cursor.ReloadCount())
}

func TestRowCursor_EmptyFile(t *testing.T) {
	t.Run("no row groups", func(t *testing.T) {
		cursor, source := newCursor(t)
		assert.Empty(t, source.ReadRowGroupCalls)

		text, ok, err := cursor.CurrentRow()
		require.NoError(t, errorsx.ErrWithStack(err))
		assert.False(t, ok)
		assert.Equal(t, "", text)

		require.Nil(t, cursor.Advance())
		require.Nil(t, cursor.Retreat())
		assert.Equal(t, pqv.Position{}, cursor.Position())
		assert.Equal(t, "test.parquet - group 0/0 - row 0/0", cursor.StatusLine())
	})

	t.Run("one empty row group", func(t *testing.T) {
		cursor, _ := newCursor(t, 0)

		_, ok, err := cursor.CurrentRow()
		require.NoError(t, errorsx.ErrWithStack(err))
		assert.False(t, ok)

		require.Nil(t, cursor.Advance())
		require.Nil(t, cursor.Retreat())
		assert.Equal(t, pqv.Position{}, cursor.Position())
		assertInvariant(t, cursor)
	})
}

func TestRowCursor_EmptyRowGroupsArePassedOver(t *testing.T) {
	cursor, _ := newCursor(t, 0, 2, 0, 0, 3)
	assert.Equal(t, pqv.Position{GroupIndex: 1, GroupStartOffset: 0, RowIndex: 0}, cursor.Position())

	for i := 0; i < 4; i++ {
		require.Nil(t, cursor.Advance())
		assertInvariant(t, cursor)
		assertRowIndexInText(t, cursor)
	}
	assert.Equal(t, pqv.Position{GroupIndex: 4, GroupStartOffset: 2, RowIndex: 4}, cursor.Position())

	for i := 0; i < 4; i++ {
		require.Nil(t, cursor.Retreat())
		assertInvariant(t, cursor)
		assertRowIndexInText(t, cursor)
	}
	assert.Equal(t, pqv.Position{GroupIndex: 1, GroupStartOffset: 0, RowIndex: 0}, cursor.Position())
}

func TestRowCursor_ToggleSchema(t *testing.T) {
	cursor, _ := newCursor(t, 3, 2)
	require.Nil(t, cursor.Advance())

	rowBefore, ok, err := cursor.CurrentRow()
	require.NoError(t, errorsx.ErrWithStack(err))
	require.True(t, ok)
	assert.Equal(t, pqv.RowView{}, cursor.View())

	require.Nil(t, cursor.ToggleSchema())
	schemaView, isSchemaView := cursor.View().(pqv.SchemaView)
	require.True(t, isSchemaView)
	assert.Contains(t, schemaView.Text, "name: row")

	// navigation does not move the cursor while the schema is shown
	posBefore := cursor.Position()
	require.Nil(t, cursor.Advance())
	require.Nil(t, cursor.Advance())
	require.Nil(t, cursor.Retreat())
	assert.Equal(t, posBefore, cursor.Position())

	require.Nil(t, cursor.ToggleSchema())
	assert.Equal(t, pqv.RowView{}, cursor.View())

	rowAfter, ok, err := cursor.CurrentRow()
	require.NoError(t, errorsx.ErrWithStack(err))
	require.True(t, ok)
	assert.Equal(t, rowBefore, rowAfter)

	t.Run("empty file", func(t *testing.T) {
		cursor, _ := newCursor(t)
		require.Nil(t, cursor.ToggleSchema())
		require.Nil(t, cursor.ToggleSchema())

		_, ok, err := cursor.CurrentRow()
		require.NoError(t, errorsx.ErrWithStack(err))
		assert.False(t, ok)
	})
}

func TestRowCursor_ReloadFailure(t *testing.T) {
	source := testmocks.NewMockRowGroupSource("broken.parquet", 2, 2)
	readGroup := source.ReadRowGroupFunc
	source.ReadRowGroupFunc = func(index int) (pqv.RowGroup, errorsx.Error) {
		if index == 1 {
			return nil, errorsx.Errorf("corrupt row group")
		}
		return readGroup(index)
	}

	cursor, err := pqv.NewRowCursor(source)
	require.NoError(t, errorsx.ErrWithStack(err))

	require.Nil(t, cursor.Advance())

	err = cursor.Advance()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt row group")

	// the cursor is left on the last row it could show
	assert.Equal(t, pqv.Position{GroupIndex: 0, GroupStartOffset: 0, RowIndex: 1}, cursor.Position())
}

func TestRowCursor_Seek(t *testing.T) {
	cursor, source := newCursor(t, 3, 2, 4)

	require.Nil(t, cursor.Seek(6))
	assert.Equal(t, pqv.Position{GroupIndex: 2, GroupStartOffset: 5, RowIndex: 6}, cursor.Position())
	assert.Equal(t, []int{0, 1, 2}, source.ReadRowGroupCalls)

	require.Nil(t, cursor.Seek(100))
	assert.Equal(t, int64(8), cursor.Position().RowIndex)

	require.Nil(t, cursor.Seek(1))
	assert.Equal(t, pqv.Position{GroupIndex: 0, GroupStartOffset: 0, RowIndex: 1}, cursor.Position())

	require.Nil(t, cursor.ToggleSchema())
	assert.Error(t, cursor.Seek(4))
}
