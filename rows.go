package xlgraph

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Rows inside <sheetData> and cells inside a <row> are kept in ascending
// order. Lookups check both ends first, then walk from whichever end is
// closer to the wanted key.

// locate returns the child of parent with the given key, creating it with
// newChild when missing.
func locate(parent *etree.Element, want uint64, key func(*etree.Element) uint64, newChild func() *etree.Element) *etree.Element {
	first, last := firstElement(parent), lastElement(parent)
	if first == nil {
		el := newChild()
		parent.AddChild(el)
		return el
	}
	switch lastKey := key(last); {
	case lastKey == want:
		return last
	case lastKey < want:
		el := newChild()
		insertAfter(last, el)
		return el
	}
	switch firstKey := key(first); {
	case firstKey == want:
		return first
	case firstKey > want:
		el := newChild()
		insertBefore(first, el)
		return el
	}

	if want-key(first) <= key(last)-want {
		el := first
		for key(el) < want {
			el = nextElement(el)
		}
		if key(el) == want {
			return el
		}
		n := newChild()
		insertBefore(el, n)
		return n
	}
	el := last
	for key(el) > want {
		el = prevElement(el)
	}
	if key(el) == want {
		return el
	}
	n := newChild()
	insertAfter(el, n)
	return n
}

// lookup is locate without creation.
func lookup(parent *etree.Element, want uint64, key func(*etree.Element) uint64) *etree.Element {
	first, last := firstElement(parent), lastElement(parent)
	if first == nil || key(first) > want || key(last) < want {
		return nil
	}
	if want-key(first) <= key(last)-want {
		for el := first; el != nil; el = nextElement(el) {
			if k := key(el); k >= want {
				if k == want {
					return el
				}
				return nil
			}
		}
		return nil
	}
	for el := last; el != nil; el = prevElement(el) {
		if k := key(el); k <= want {
			if k == want {
				return el
			}
			return nil
		}
	}
	return nil
}

func rowKey(el *etree.Element) uint64  { return uint64(rowNumber(el)) }
func cellKey(el *etree.Element) uint64 { return uint64(cellColumn(el)) }

func locateOrCreateRow(sheetData *etree.Element, n uint32) *etree.Element {
	return locate(sheetData, uint64(n), rowKey, func() *etree.Element {
		row := etree.NewElement("row")
		setAttrUint(row, "r", uint64(n))
		return row
	})
}

func locateOrCreateCell(row *etree.Element, rowNum uint32, col uint16) *etree.Element {
	return locate(row, uint64(col), cellKey, func() *etree.Element {
		c := etree.NewElement("c")
		c.CreateAttr("r", ColumnAsString(col)+strconv.FormatUint(uint64(rowNum), 10))
		return c
	})
}

func findRow(sheetData *etree.Element, n uint32) *etree.Element {
	return lookup(sheetData, uint64(n), rowKey)
}

func findCell(sheetData *etree.Element, row uint32, col uint16) *etree.Element {
	r := findRow(sheetData, row)
	if r == nil {
		return nil
	}
	return lookup(r, uint64(col), cellKey)
}

// Row is a <row> of a worksheet.
type Row struct {
	ws *Worksheet
	el *etree.Element
}

// Number returns the 1-based row number.
func (r *Row) Number() uint32 { return rowNumber(r.el) }

// Height returns the custom height in points, if one is set.
func (r *Row) Height() (float64, bool) {
	ht := r.el.SelectAttr("ht")
	if ht == nil {
		return 0, false
	}
	h, err := strconv.ParseFloat(ht.Value, 64)
	return h, err == nil
}

// SetHeight sets a custom row height in points (0 to 409).
func (r *Row) SetHeight(points float64) error {
	if points < 0 || points > 409 {
		return fmt.Errorf("%w: row height %g outside 0..409", ErrInput, points)
	}
	r.el.CreateAttr("ht", strconv.FormatFloat(points, 'f', -1, 64))
	r.el.CreateAttr("customHeight", "1")
	return nil
}

// Hidden reports whether the row is hidden.
func (r *Row) Hidden() bool { return attrBool(r.el, "hidden", false) }

// SetHidden hides or shows the row.
func (r *Row) SetHidden(hidden bool) {
	if hidden {
		r.el.CreateAttr("hidden", "1")
	} else {
		r.el.RemoveAttr("hidden")
	}
}

// CellCount returns the number of <c> nodes in the row.
func (r *Row) CellCount() int { return countElements(r.el, "c") }

func (r *Row) lastColumn() uint16 {
	if last := lastElement(r.el); last != nil {
		return cellColumn(last)
	}
	return 0
}

// Values returns the cell values from column A to the last stored cell;
// gaps are nil.
func (r *Row) Values() []any {
	n := r.lastColumn()
	values := make([]any, n)
	for _, c := range r.el.SelectElements("c") {
		if col := cellColumn(c); col >= 1 && col <= n {
			values[col-1], _ = r.ws.doc.cellValue(c)
		}
	}
	return values
}

// SetValues writes values into consecutive cells starting at column A.
func (r *Row) SetValues(values ...any) error {
	if len(values) > MaxCols {
		return fmt.Errorf("%w: %d values exceed %d columns", ErrAddress, len(values), MaxCols)
	}
	for i, v := range values {
		c := locateOrCreateCell(r.el, r.Number(), uint16(i+1))
		if err := r.ws.doc.writeCellValue(c, v); err != nil {
			return fmt.Errorf("column %s: %w", ColumnAsString(uint16(i+1)), err)
		}
	}
	return nil
}

// Cells returns the range from column A to the last stored cell of the row.
func (r *Row) Cells() *CellRange {
	last := max(r.lastColumn(), 1)
	tl, _ := NewCellReference(r.Number(), 1)
	br, _ := NewCellReference(r.Number(), last)
	return &CellRange{ws: r.ws, ref: RangeRef{TopLeft: tl, BottomRight: br}}
}

// Column is a column of a worksheet, backed by the <cols> entries.
type Column struct {
	ws    *Worksheet
	index uint16
}

// Index returns the 1-based column number.
func (c *Column) Index() uint16 { return c.index }

// node returns the <col> covering the column. With create set, an entry
// spanning several columns is split so the result covers this one alone.
func (c *Column) node(create bool) *etree.Element {
	root := c.ws.root()
	cols := root.SelectElement("cols")
	if cols == nil {
		if !create {
			return nil
		}
		cols = childOrCreate(root, "cols", worksheetOrder)
	}
	idx := uint64(c.index)
	newCol := func() *etree.Element {
		el := etree.NewElement("col")
		setAttrUint(el, "min", idx)
		setAttrUint(el, "max", idx)
		el.CreateAttr("width", "9.140625")
		return el
	}
	for _, el := range cols.SelectElements("col") {
		lo, hi := attrUint(el, "min", 0), attrUint(el, "max", 0)
		if idx < lo {
			if !create {
				return nil
			}
			n := newCol()
			insertBefore(el, n)
			return n
		}
		if idx > hi {
			continue
		}
		if !create || lo == hi {
			return el
		}
		if lo < idx {
			left := el.Copy()
			setAttrUint(left, "max", idx-1)
			insertBefore(el, left)
		}
		if idx < hi {
			right := el.Copy()
			setAttrUint(right, "min", idx+1)
			insertAfter(el, right)
		}
		setAttrUint(el, "min", idx)
		setAttrUint(el, "max", idx)
		return el
	}
	if !create {
		return nil
	}
	n := newCol()
	appendElement(cols, n)
	return n
}

// Width returns the column width, if set.
func (c *Column) Width() (float64, bool) {
	el := c.node(false)
	if el == nil || el.SelectAttr("width") == nil {
		return 0, false
	}
	w, err := strconv.ParseFloat(attr(el, "width"), 64)
	return w, err == nil
}

// SetWidth sets the column width in characters (0 to 255).
func (c *Column) SetWidth(width float64) error {
	if width < 0 || width > 255 {
		return fmt.Errorf("%w: column width %g outside 0..255", ErrInput, width)
	}
	el := c.node(true)
	el.CreateAttr("width", strconv.FormatFloat(width, 'f', -1, 64))
	el.CreateAttr("customWidth", "1")
	return nil
}

// Hidden reports whether the column is hidden.
func (c *Column) Hidden() bool {
	el := c.node(false)
	return el != nil && attrBool(el, "hidden", false)
}

// SetHidden hides or shows the column.
func (c *Column) SetHidden(hidden bool) {
	el := c.node(hidden)
	if el == nil {
		return
	}
	if hidden {
		el.CreateAttr("hidden", "1")
	} else {
		el.RemoveAttr("hidden")
	}
}
