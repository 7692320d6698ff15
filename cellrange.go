package xlgraph

import "fmt"

// CellRange is a rectangle of cells on a worksheet. Cells are only
// created in the XML when they are dereferenced through an iterator.
type CellRange struct {
	ws  *Worksheet
	ref RangeRef
}

// Reference returns the range bounds.
func (r *CellRange) Reference() RangeRef { return r.ref }

// Address returns the range in "A1:C4" form.
func (r *CellRange) Address() string { return r.ref.String() }

// TopLeft returns the first cell reference.
func (r *CellRange) TopLeft() CellReference { return r.ref.TopLeft }

// BottomRight returns the last cell reference.
func (r *CellRange) BottomRight() CellReference { return r.ref.BottomRight }

// NumRows returns the number of rows spanned.
func (r *CellRange) NumRows() uint32 { return r.ref.NumRows() }

// NumColumns returns the number of columns spanned.
func (r *CellRange) NumColumns() uint16 { return r.ref.NumColumns() }

// Iterator returns a fresh row-major iterator over the range.
func (r *CellRange) Iterator() *CellIterator {
	return &CellIterator{rng: r}
}

// Clear empties the value and formula of every stored cell in the range.
// Row and cell nodes stay in place so styles and neighbours are untouched.
func (r *CellRange) Clear() {
	r.ws.existingCells(r.ref, func(row uint32, col uint16, c *Cell) bool {
		c.Clear()
		return true
	})
}

// Values returns the values of the range row by row. Missing cells are nil.
func (r *CellRange) Values() [][]any {
	out := make([][]any, r.NumRows())
	for i := range out {
		out[i] = make([]any, r.NumColumns())
	}
	r.ws.existingCells(r.ref, func(row uint32, col uint16, c *Cell) bool {
		out[row-r.ref.TopLeft.row][col-r.ref.TopLeft.column] = c.Value()
		return true
	})
	return out
}

// SetValue writes the same value into every cell of the range.
func (r *CellRange) SetValue(value any) error {
	it := r.Iterator()
	for it.Next() {
		if err := it.Cell().SetValue(value); err != nil {
			return err
		}
	}
	return nil
}

func (r *CellRange) String() string {
	return fmt.Sprintf("%s!%s", quoteSheetName(r.ws.Name()), r.ref)
}

// RowRange is a span of consecutive rows.
type RowRange struct {
	ws          *Worksheet
	first, last uint32
}

// First returns the first row number.
func (r *RowRange) First() uint32 { return r.first }

// Last returns the last row number.
func (r *RowRange) Last() uint32 { return r.last }

// NumRows returns the number of rows spanned.
func (r *RowRange) NumRows() uint32 { return r.last - r.first + 1 }

// Iterator returns a fresh iterator over the rows.
func (r *RowRange) Iterator() *RowIterator {
	return &RowIterator{rng: r}
}
