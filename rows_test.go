package xlgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowNumbers returns the r attributes of the <row> nodes in document order.
func rowNumbers(ws *Worksheet) []uint32 {
	var out []uint32
	for _, row := range ws.sheetData().SelectElements("row") {
		out = append(out, rowNumber(row))
	}
	return out
}

func cellAddresses(ws *Worksheet, row uint32) []string {
	var out []string
	if r := findRow(ws.sheetData(), row); r != nil {
		for _, c := range r.SelectElements("c") {
			out = append(out, attr(c, "r"))
		}
	}
	return out
}

func TestRows_StayOrdered(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")

	for _, n := range []uint32{10, 2, 7, 1, 9, 3, 8, 10, 2} {
		_, err := ws.Row(n)
		require.NoError(t, err)
	}
	assert.Equal(t, []uint32{1, 2, 3, 7, 8, 9, 10}, rowNumbers(ws))
	assert.Equal(t, uint32(10), ws.RowCount())
}

func TestCells_StayOrdered(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")

	for _, addr := range []string{"E4", "A4", "AA4", "C4", "B4", "Z4", "C4"} {
		mustCell(t, ws, addr)
	}
	assert.Equal(t, []string{"A4", "B4", "C4", "E4", "Z4", "AA4"}, cellAddresses(ws, 4))
	assert.True(t, ws.HasCell("Z4"))
	assert.False(t, ws.HasCell("D4"))
	assert.False(t, ws.HasCell("A5"))
}

func TestRow_Attributes(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")
	row, err := ws.Row(3)
	require.NoError(t, err)

	_, ok := row.Height()
	assert.False(t, ok)
	require.NoError(t, row.SetHeight(30.5))
	h, ok := row.Height()
	assert.True(t, ok)
	assert.Equal(t, 30.5, h)
	assert.ErrorIs(t, row.SetHeight(410), ErrInput)

	row.SetHidden(true)
	assert.True(t, row.Hidden())
	row.SetHidden(false)
	assert.False(t, row.Hidden())

	_, err = ws.Row(0)
	assert.ErrorIs(t, err, ErrAddress)
}

func TestRow_Values(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")
	row, err := ws.Row(2)
	require.NoError(t, err)

	require.NoError(t, row.SetValues("name", 3, true, nil, 1.5))
	assert.Equal(t, []any{"name", 3.0, true, nil, 1.5}, row.Values())
	assert.Equal(t, 5, row.CellCount())
	assert.Equal(t, "A2:E2", row.Cells().Address())

	assert.ErrorIs(t, row.SetValues(struct{}{}), ErrInput)
}

func TestColumn_WidthSplitsSpans(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")
	root := ws.root()
	cols := childOrCreate(root, "cols", worksheetOrder)
	span := cols.CreateElement("col")
	span.CreateAttr("min", "2")
	span.CreateAttr("max", "6")
	span.CreateAttr("width", "12")

	col, err := ws.ColumnByName("d")
	require.NoError(t, err)
	w, ok := col.Width()
	require.True(t, ok)
	assert.Equal(t, 12.0, w)

	require.NoError(t, col.SetWidth(20))
	var spans [][2]uint64
	for _, el := range cols.SelectElements("col") {
		spans = append(spans, [2]uint64{attrUint(el, "min", 0), attrUint(el, "max", 0)})
	}
	assert.Equal(t, [][2]uint64{{2, 3}, {4, 4}, {5, 6}}, spans)
	w, _ = col.Width()
	assert.Equal(t, 20.0, w)
	other, err := ws.Column(5)
	require.NoError(t, err)
	w, _ = other.Width()
	assert.Equal(t, 12.0, w)

	assert.ErrorIs(t, col.SetWidth(256), ErrInput)
	_, err = ws.Column(MaxCols + 1)
	assert.ErrorIs(t, err, ErrAddress)
}

func TestColumn_Hidden(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")
	col, err := ws.Column(1)
	require.NoError(t, err)

	assert.False(t, col.Hidden())
	col.SetHidden(false)
	assert.Nil(t, ws.root().SelectElement("cols"), "showing an unset column must not create <cols>")

	col.SetHidden(true)
	assert.True(t, col.Hidden())
	col.SetHidden(false)
	assert.False(t, col.Hidden())
}

func TestWorksheet_UsedRangeAndDimension(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")
	assert.Equal(t, "A1:A1", ws.UsedRange().Address())

	require.NoError(t, mustCell(t, ws, "C3").SetValue(1))
	require.NoError(t, mustCell(t, ws, "B7").SetValue(2))
	require.NoError(t, mustCell(t, ws, "F5").SetValue(3))
	assert.Equal(t, "B3:F7", ws.UsedRange().Address())

	ws.UpdateDimension()
	assert.Equal(t, "B3:F7", ws.Dimension())
}
