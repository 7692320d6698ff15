package xlgraph

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// worksheetOrder is the child order of <worksheet> required by the schema.
var worksheetOrder = []string{
	"sheetPr", "dimension", "sheetViews", "sheetFormatPr", "cols", "sheetData",
	"sheetCalcPr", "sheetProtection", "protectedRanges", "scenarios", "autoFilter",
	"sortState", "dataConsolidate", "customSheetViews", "mergeCells", "phoneticPr",
	"conditionalFormatting", "dataValidations", "hyperlinks", "printOptions",
	"pageMargins", "pageSetup", "headerFooter", "rowBreaks", "colBreaks",
	"customProperties", "cellWatches", "ignoredErrors", "smartTags", "drawing",
	"legacyDrawing", "legacyDrawingHF", "picture", "oleObjects", "controls",
	"webPublishItems", "tableParts", "extLst",
}

// Worksheet is a sheet with a cell grid.
type Worksheet struct {
	*Sheet
}

func (w *Worksheet) sheetData() *etree.Element {
	return childOrCreate(w.root(), "sheetData", worksheetOrder)
}

func (w *Worksheet) cell(ref CellReference) *Cell {
	row := locateOrCreateRow(w.sheetData(), ref.row)
	return &Cell{doc: w.doc, el: locateOrCreateCell(row, ref.row, ref.column), ref: ref}
}

// Cell returns the cell at address, creating it if needed.
func (w *Worksheet) Cell(address string) (*Cell, error) {
	ref, err := ParseCellReference(address)
	if err != nil {
		return nil, err
	}
	return w.cell(ref), nil
}

// CellAt returns the cell at a 1-based row and column, creating it if needed.
func (w *Worksheet) CellAt(row uint32, column uint16) (*Cell, error) {
	ref, err := NewCellReference(row, column)
	if err != nil {
		return nil, err
	}
	return w.cell(ref), nil
}

// HasCell reports whether a cell node exists at address.
func (w *Worksheet) HasCell(address string) bool {
	ref, err := ParseCellReference(address)
	if err != nil {
		return false
	}
	return findCell(w.sheetData(), ref.row, ref.column) != nil
}

// Range returns the range described by ref, e.g. "A1:C4".
func (w *Worksheet) Range(ref string) (*CellRange, error) {
	rng, err := ParseRange(ref)
	if err != nil {
		return nil, err
	}
	return &CellRange{ws: w, ref: rng}, nil
}

// RangeOf returns the range between two corners.
func (w *Worksheet) RangeOf(topLeft, bottomRight CellReference) (*CellRange, error) {
	rng, err := NewRangeRef(topLeft, bottomRight)
	if err != nil {
		return nil, err
	}
	return &CellRange{ws: w, ref: rng}, nil
}

// UsedRange returns the smallest range holding every stored cell, or A1
// for an empty sheet.
func (w *Worksheet) UsedRange() *CellRange {
	return &CellRange{ws: w, ref: usedRange(w.sheetData())}
}

func usedRange(sheetData *etree.Element) RangeRef {
	var minRow, maxRow uint32
	var minCol, maxCol uint16
	for _, row := range sheetData.SelectElements("row") {
		first, last := firstElement(row), lastElement(row)
		if first == nil {
			continue
		}
		n := rowNumber(row)
		if minRow == 0 || n < minRow {
			minRow = n
		}
		maxRow = max(maxRow, n)
		if c := cellColumn(first); minCol == 0 || c < minCol {
			minCol = c
		}
		maxCol = max(maxCol, cellColumn(last))
	}
	if minRow == 0 || minCol == 0 {
		a1, _ := NewCellReference(1, 1)
		return RangeRef{TopLeft: a1, BottomRight: a1}
	}
	tl, _ := NewCellReference(minRow, minCol)
	br, _ := NewCellReference(maxRow, maxCol)
	return RangeRef{TopLeft: tl, BottomRight: br}
}

// existingCells calls fn for every stored cell inside rng, row by row,
// until fn returns false.
func (w *Worksheet) existingCells(rng RangeRef, fn func(row uint32, col uint16, c *Cell) bool) {
	for _, rowEl := range w.sheetData().SelectElements("row") {
		n := rowNumber(rowEl)
		if n < rng.TopLeft.row {
			continue
		}
		if n > rng.BottomRight.row {
			return
		}
		for _, c := range rowEl.SelectElements("c") {
			col := cellColumn(c)
			if col < rng.TopLeft.column || col > rng.BottomRight.column {
				continue
			}
			ref, err := NewCellReference(n, col)
			if err != nil {
				continue
			}
			if !fn(n, col, &Cell{doc: w.doc, el: c, ref: ref}) {
				return
			}
		}
	}
}

// Row returns row n, creating it if needed.
func (w *Worksheet) Row(n uint32) (*Row, error) {
	if n < 1 || n > MaxRows {
		return nil, fmt.Errorf("%w: row %d out of range 1..%d", ErrAddress, n, MaxRows)
	}
	return &Row{ws: w, el: locateOrCreateRow(w.sheetData(), n)}, nil
}

// RowCount returns the number of the last stored row.
func (w *Worksheet) RowCount() uint32 {
	if last := lastElement(w.sheetData()); last != nil {
		return rowNumber(last)
	}
	return 0
}

// Rows returns the rows from 1 to the last stored row.
func (w *Worksheet) Rows() *RowRange {
	return &RowRange{ws: w, first: 1, last: max(w.RowCount(), 1)}
}

// RowRange returns the rows first..last.
func (w *Worksheet) RowRange(first, last uint32) (*RowRange, error) {
	if first < 1 || last > MaxRows || first > last {
		return nil, fmt.Errorf("%w: invalid row range %d..%d", ErrAddress, first, last)
	}
	return &RowRange{ws: w, first: first, last: last}, nil
}

// Column returns the 1-based column.
func (w *Worksheet) Column(column uint16) (*Column, error) {
	if column < 1 || column > MaxCols {
		return nil, fmt.Errorf("%w: column %d out of range 1..%d", ErrAddress, column, MaxCols)
	}
	return &Column{ws: w, index: column}, nil
}

// ColumnByName returns the column with the given letters, e.g. "AB".
func (w *Worksheet) ColumnByName(letters string) (*Column, error) {
	col, err := ColumnAsNumber(strings.ToUpper(letters))
	if err != nil {
		return nil, err
	}
	return w.Column(col)
}

// Dimension returns the stored <dimension> ref.
func (w *Worksheet) Dimension() string {
	if d := w.root().SelectElement("dimension"); d != nil {
		return attr(d, "ref")
	}
	return ""
}

// UpdateDimension recomputes <dimension> from the stored cells. Saving a
// document does this for every worksheet that was loaded.
func (w *Worksheet) UpdateDimension() { updateDimension(w.root()) }

func updateDimension(root *etree.Element) {
	sheetData := root.SelectElement("sheetData")
	if sheetData == nil {
		return
	}
	rng := usedRange(sheetData)
	ref := rng.String()
	if rng.IsSingleCell() {
		ref = rng.TopLeft.String()
	}
	childOrCreate(root, "dimension", worksheetOrder).CreateAttr("ref", ref)
}

// MergeCells returns the merge list of the sheet.
func (w *Worksheet) MergeCells() *MergeCells {
	return newMergeCells(w.root(), w.doc.logger)
}

// Merge merges the cells of ref. With clearHidden set, every cell but the
// top-left one is emptied, as a spreadsheet application would.
func (w *Worksheet) Merge(ref string, clearHidden bool) error {
	if _, err := w.MergeCells().Append(ref); err != nil {
		return err
	}
	if !clearHidden {
		return nil
	}
	rng, _ := ParseRange(ref)
	w.existingCells(rng, func(_ uint32, _ uint16, c *Cell) bool {
		if c.ref != rng.TopLeft {
			c.Clear()
		}
		return true
	})
	return nil
}

// Unmerge removes the merge exactly covering ref.
func (w *Worksheet) Unmerge(ref string) error {
	m := w.MergeCells()
	i := m.Find(ref)
	if i < 0 {
		return fmt.Errorf("%w: %s is not a merged range", ErrInput, ref)
	}
	return m.Delete(i)
}

// AddTable creates a table over ref. The first row of ref becomes the
// header row; empty header cells get generated column names.
func (w *Worksheet) AddTable(name, ref string) (*Table, error) {
	if err := w.doc.ExecCommand(AddTable{SheetID: w.part.relsID, TableName: name, Ref: ref}); err != nil {
		return nil, err
	}
	return w.Table(name)
}

// Table returns a table of this sheet by name, ignoring case.
func (w *Worksheet) Table(name string) (*Table, error) {
	for _, child := range w.part.children {
		p := w.doc.parts[child]
		if p != nil && p.kind == ContentTable && strings.EqualFold(p.name, name) {
			return newTable(w.doc, p)
		}
	}
	return nil, fmt.Errorf("%w: sheet %q has no table %q", ErrInput, w.Name(), name)
}

// Tables returns the tables of this sheet.
func (w *Worksheet) Tables() ([]*Table, error) {
	var out []*Table
	for _, child := range w.part.children {
		p := w.doc.parts[child]
		if p == nil || p.kind != ContentTable {
			continue
		}
		t, err := newTable(w.doc, p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
