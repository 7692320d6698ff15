package xlgraph

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

var tableOrder = []string{"autoFilter", "sortState", "tableColumns", "tableStyleInfo", "extLst"}

// Table is an Excel table (ListObject) stored in xl/tables/tableN.xml.
// Its body range is always derived from ref and the header and totals
// flags, never stored.
type Table struct {
	doc  *Document
	part *Part
}

func newTable(d *Document, p *Part) (*Table, error) {
	if p.kind != ContentTable {
		return nil, fmt.Errorf("%w: %s is a %s, not a table", ErrInternal, p.path, p.kind)
	}
	root, err := p.root()
	if err != nil {
		return nil, err
	}
	if root.SelectElement("tableColumns") == nil {
		return nil, fmt.Errorf("%w: %s has no <tableColumns>", ErrInternal, p.path)
	}
	return &Table{doc: d, part: p}, nil
}

func (t *Table) root() *etree.Element {
	root, _ := t.part.root()
	return root
}

// Part returns the table's XML part.
func (t *Table) Part() *Part { return t.part }

// ID returns the workbook-unique table id.
func (t *Table) ID() uint64 { return attrUint(t.root(), "id", 0) }

// Name returns the table name.
func (t *Table) Name() string { return attr(t.root(), "name") }

// SetName renames the table and rewrites structured references to it in
// the owning sheet.
func (t *Table) SetName(name string) error {
	old := t.Name()
	if name == old {
		return nil
	}
	if err := validateTableName(name); err != nil {
		return err
	}
	for _, p := range t.doc.partsOfType(ContentTable) {
		if p != t.part && strings.EqualFold(p.name, name) {
			return fmt.Errorf("%w: a table named %q already exists", ErrInput, p.name)
		}
	}
	ws, err := t.Worksheet()
	if err != nil {
		return err
	}
	root := t.root()
	root.CreateAttr("name", name)
	root.CreateAttr("displayName", name)
	t.part.name = name

	re := regexp.MustCompile(`(?i)(^|[^\w.])` + regexp.QuoteMeta(old) + `\[`)
	rename := func(f string) string {
		return re.ReplaceAllString(f, "${1}"+strings.ReplaceAll(name, "$", "$$")+"[")
	}
	for _, f := range ws.root().FindElements("./sheetData/row/c/f") {
		f.SetText(rename(f.Text()))
	}
	for _, col := range root.SelectElement("tableColumns").SelectElements("tableColumn") {
		for _, tag := range []string{"calculatedColumnFormula", "totalsRowFormula"} {
			if el := col.SelectElement(tag); el != nil {
				el.SetText(rename(el.Text()))
			}
		}
	}
	return nil
}

// Ref returns the full table range, header and totals rows included.
func (t *Table) Ref() (RangeRef, error) {
	return ParseRange(attr(t.root(), "ref"))
}

// Worksheet returns the sheet holding the table.
func (t *Table) Worksheet() (*Worksheet, error) {
	p, err := t.doc.Part(t.part.parent)
	if err != nil {
		return nil, err
	}
	s, err := newSheet(t.doc, p)
	if err != nil {
		return nil, err
	}
	return s.Worksheet()
}

// TableRange returns the full table range as cells.
func (t *Table) TableRange() (*CellRange, error) {
	ref, err := t.Ref()
	if err != nil {
		return nil, err
	}
	ws, err := t.Worksheet()
	if err != nil {
		return nil, err
	}
	return &CellRange{ws: ws, ref: ref}, nil
}

// bodyRef derives the data rows from ref and the visibility flags.
func (t *Table) bodyRef() (RangeRef, error) {
	ref, err := t.Ref()
	if err != nil {
		return RangeRef{}, err
	}
	top, bottom := ref.TopLeft.row, ref.BottomRight.row
	if t.IsHeaderVisible() {
		top++
	}
	if t.IsTotalsVisible() {
		bottom--
	}
	if top > bottom {
		return RangeRef{}, fmt.Errorf("%w: table %q has no data rows", ErrInput, t.Name())
	}
	tl, _ := NewCellReference(top, ref.TopLeft.column)
	br, _ := NewCellReference(bottom, ref.BottomRight.column)
	return RangeRef{TopLeft: tl, BottomRight: br}, nil
}

// DataBodyRange returns the data rows of the table.
func (t *Table) DataBodyRange() (*CellRange, error) {
	body, err := t.bodyRef()
	if err != nil {
		return nil, err
	}
	ws, err := t.Worksheet()
	if err != nil {
		return nil, err
	}
	return &CellRange{ws: ws, ref: body}, nil
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() (uint32, error) {
	body, err := t.bodyRef()
	if err != nil {
		return 0, err
	}
	return body.NumRows(), nil
}

// IsHeaderVisible reports whether the first row of ref is a header row.
func (t *Table) IsHeaderVisible() bool {
	return attr(t.root(), "headerRowCount") != "0"
}

// IsTotalsVisible reports whether the last row of ref is a totals row.
func (t *Table) IsTotalsVisible() bool {
	return attr(t.root(), "totalsRowCount") == "1"
}

// SetHeaderVisible shows or hides the header row. The auto filter lives
// on the header row and is dropped with it.
func (t *Table) SetHeaderVisible(visible bool) error {
	if visible == t.IsHeaderVisible() {
		return nil
	}
	ref, err := t.Ref()
	if err != nil {
		return err
	}
	totals := uint32(0)
	if t.IsTotalsVisible() {
		totals = 1
	}
	if visible && ref.NumRows() < totals+2 {
		return fmt.Errorf("%w: table %q has no room for a header row", ErrInput, t.Name())
	}
	if visible {
		t.root().RemoveAttr("headerRowCount")
	} else {
		t.root().CreateAttr("headerRowCount", "0")
	}
	t.syncAutoFilter()
	return t.recompute()
}

// SetTotalsVisible shows or hides the totals row and recomputes its cells.
// The table range does not grow: showing the totals row turns the last data
// row into it, and any value there that no column label or function covers
// is cleared. Hiding it clears the row and returns it to the body.
func (t *Table) SetTotalsVisible(visible bool) error {
	if visible == t.IsTotalsVisible() {
		return nil
	}
	root := t.root()
	ref, err := t.Ref()
	if err != nil {
		return err
	}
	ws, err := t.Worksheet()
	if err != nil {
		return err
	}
	first, _ := NewCellReference(ref.BottomRight.row, ref.TopLeft.column)
	last := RangeRef{TopLeft: first, BottomRight: ref.BottomRight}
	if visible {
		header := uint32(0)
		if t.IsHeaderVisible() {
			header = 1
		}
		if ref.NumRows() < header+2 {
			return fmt.Errorf("%w: table %q has no room for a totals row", ErrInput, t.Name())
		}
		var overwritten int
		ws.existingCells(last, func(_ uint32, _ uint16, c *Cell) bool {
			if c.Value() != nil || c.HasFormula() {
				overwritten++
			}
			return true
		})
		if overwritten > 0 {
			t.doc.logger.Debug("totals row replaces data row",
				zap.String("table", t.Name()),
				zap.Uint32("row", ref.BottomRight.row),
				zap.Int("cells", overwritten))
		}
		root.RemoveAttr("totalsRowShown")
		root.CreateAttr("totalsRowCount", "1")
	} else {
		root.RemoveAttr("totalsRowCount")
		root.CreateAttr("totalsRowShown", "0")
		// the former totals row becomes a data row
		(&CellRange{ws: ws, ref: last}).Clear()
	}
	t.syncAutoFilter()
	return t.recompute()
}

// syncAutoFilter keeps autoFilter@ref equal to the header and data rows.
func (t *Table) syncAutoFilter() {
	root := t.root()
	af := root.SelectElement("autoFilter")
	if !t.IsHeaderVisible() {
		if af != nil {
			removeElement(af)
		}
		return
	}
	ref, err := t.Ref()
	if err != nil {
		return
	}
	if t.IsTotalsVisible() {
		br, _ := NewCellReference(ref.BottomRight.row-1, ref.BottomRight.column)
		ref.BottomRight = br
	}
	childOrCreate(root, "autoFilter", tableOrder).CreateAttr("ref", ref.String())
}

// Columns returns the table columns left to right.
func (t *Table) Columns() []*TableColumn {
	var out []*TableColumn
	for i, el := range t.root().SelectElement("tableColumns").SelectElements("tableColumn") {
		out = append(out, &TableColumn{table: t, el: el, offset: uint16(i)})
	}
	return out
}

// ColumnNames returns the column names left to right.
func (t *Table) ColumnNames() []string {
	var names []string
	for _, c := range t.Columns() {
		names = append(names, c.Name())
	}
	return names
}

// Column returns the column with the given name, ignoring case.
func (t *Table) Column(name string) (*TableColumn, error) {
	for _, c := range t.Columns() {
		if strings.EqualFold(c.Name(), name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: table %q has no column %q", ErrInput, t.Name(), name)
}

// Style returns the table style settings.
func (t *Table) Style() *TableStyle { return &TableStyle{table: t} }

// recompute rewrites the calculated column cells and the totals row from
// the column definitions.
func (t *Table) recompute() error {
	ws, err := t.Worksheet()
	if err != nil {
		return err
	}
	body, err := t.bodyRef()
	if err != nil {
		return err
	}
	name := t.Name()
	for _, col := range t.Columns() {
		column := body.TopLeft.column + col.offset
		if column > body.BottomRight.column {
			break
		}
		if formula := col.CalculatedColumnFormula(); formula != "" {
			for row := body.TopLeft.row; row <= body.BottomRight.row; row++ {
				ref, _ := NewCellReference(row, column)
				if err := ws.cell(ref).SetFormula(formula); err != nil {
					return err
				}
			}
		}
		if !t.IsTotalsVisible() {
			continue
		}
		ref, _ := NewCellReference(body.BottomRight.row+1, column)
		cell := ws.cell(ref)
		switch fn := col.TotalsRowFunction(); fn {
		case "", "none":
			if label := col.TotalsRowLabel(); label != "" {
				err = cell.SetValue(label)
			} else {
				cell.Clear()
			}
		case "custom":
			if f := col.TotalsRowFormula(); f != "" {
				err = cell.SetFormula(f)
			} else {
				cell.Clear()
			}
		default:
			if f := subtotalFormula(fn, name, col.Name()); f != "" {
				err = cell.SetFormula(f)
			} else {
				cell.Clear()
			}
		}
		if err != nil {
			return fmt.Errorf("totals row of %q: %w", col.Name(), err)
		}
	}
	return nil
}
