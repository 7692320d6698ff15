package xlgraph

import "fmt"

// CellIterator walks a CellRange row by row. It is single pass; build a
// new one from the range to start over. Mutating the sheet structure
// behind an iterator's back invalidates it.
type CellIterator struct {
	rng     *CellRange
	row     uint32
	col     uint16
	started bool
	done    bool
	cell    *Cell
}

// Next advances to the next position and reports whether there is one.
func (it *CellIterator) Next() bool {
	if it.done {
		return false
	}
	ref := it.rng.ref
	it.cell = nil
	switch {
	case !it.started:
		it.started = true
		it.row, it.col = ref.TopLeft.row, ref.TopLeft.column
	case it.col < ref.BottomRight.column:
		it.col++
	case it.row < ref.BottomRight.row:
		it.row++
		it.col = ref.TopLeft.column
	default:
		it.done = true
		return false
	}
	return true
}

// Reference returns the current position.
func (it *CellIterator) Reference() CellReference {
	ref, _ := NewCellReference(it.row, it.col)
	return ref
}

// Exists reports whether the current cell is stored in the XML, without
// creating it.
func (it *CellIterator) Exists() bool {
	if it.cell != nil {
		return true
	}
	return findCell(it.rng.ws.sheetData(), it.row, it.col) != nil
}

// Cell returns the current cell, creating its row and cell nodes on first
// access.
func (it *CellIterator) Cell() *Cell {
	if it.cell == nil && it.started && !it.done {
		it.cell = it.rng.ws.cell(it.Reference())
	}
	return it.cell
}

// position counts the Next calls made so far.
func (it *CellIterator) position() int {
	total := int(it.rng.NumRows()) * int(it.rng.NumColumns())
	switch {
	case !it.started:
		return 0
	case it.done:
		return total + 1
	}
	ref := it.rng.ref
	return int(it.row-ref.TopLeft.row)*int(ref.NumColumns()) + int(it.col-ref.TopLeft.column) + 1
}

// Distance returns how many Next calls take it to other. Both iterators
// must come from the same range, and other must not be behind it.
func (it *CellIterator) Distance(other *CellIterator) (int, error) {
	if it.rng.ref != other.rng.ref || it.rng.ws.part != other.rng.ws.part {
		return 0, fmt.Errorf("%w: iterators belong to different ranges", ErrInput)
	}
	n := other.position() - it.position()
	if n < 0 {
		return 0, fmt.Errorf("%w: iterator is %d steps ahead of its argument", ErrInput, -n)
	}
	return n, nil
}

// RowIterator walks a RowRange top to bottom.
type RowIterator struct {
	rng     *RowRange
	current uint32
	done    bool
	row     *Row
}

// Next advances to the next row and reports whether there is one.
func (it *RowIterator) Next() bool {
	if it.done {
		return false
	}
	it.row = nil
	switch {
	case it.current == 0:
		it.current = it.rng.first
	case it.current < it.rng.last:
		it.current++
	default:
		it.done = true
		return false
	}
	return true
}

// Number returns the current row number.
func (it *RowIterator) Number() uint32 { return it.current }

// Row returns the current row, creating its node on first access.
func (it *RowIterator) Row() *Row {
	if it.row == nil && it.current != 0 && !it.done {
		it.row = &Row{ws: it.rng.ws, el: locateOrCreateRow(it.rng.ws.sheetData(), it.current)}
	}
	return it.row
}

func (it *RowIterator) position() int {
	switch {
	case it.current == 0:
		return 0
	case it.done:
		return int(it.rng.NumRows()) + 1
	}
	return int(it.current-it.rng.first) + 1
}

// Distance returns how many Next calls take it to other.
func (it *RowIterator) Distance(other *RowIterator) (int, error) {
	if it.rng.first != other.rng.first || it.rng.last != other.rng.last || it.rng.ws.part != other.rng.ws.part {
		return 0, fmt.Errorf("%w: iterators belong to different ranges", ErrInput)
	}
	n := other.position() - it.position()
	if n < 0 {
		return 0, fmt.Errorf("%w: iterator is %d steps ahead of its argument", ErrInput, -n)
	}
	return n, nil
}
