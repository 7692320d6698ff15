package xlgraph

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

var tableColumnOrder = []string{"calculatedColumnFormula", "totalsRowFormula", "xmlColumnPr", "extLst"}

// totalsRowFunctions is the allow-list of totalsRowFunction keywords.
var totalsRowFunctions = map[string]bool{
	"none": true, "sum": true, "min": true, "max": true, "average": true,
	"count": true, "countNums": true, "stdDev": true, "var": true, "custom": true,
}

// TableColumn is one <tableColumn> of a table. Every setter recomputes the
// dependent cells of the table.
type TableColumn struct {
	table  *Table
	el     *etree.Element
	offset uint16
}

// ID returns the column id, unique within the table.
func (c *TableColumn) ID() uint64 { return attrUint(c.el, "id", 0) }

// Name returns the column name, which is also the header cell text.
func (c *TableColumn) Name() string { return attr(c.el, "name") }

// SetName renames the column and its header cell.
func (c *TableColumn) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: table column name must not be empty", ErrInput)
	}
	for _, other := range c.table.Columns() {
		if other.el != c.el && strings.EqualFold(other.Name(), name) {
			return fmt.Errorf("%w: table %q already has a column %q", ErrInput, c.table.Name(), other.Name())
		}
	}
	c.el.CreateAttr("name", name)
	if c.table.IsHeaderVisible() {
		ws, err := c.table.Worksheet()
		if err != nil {
			return err
		}
		ref, err := c.table.Ref()
		if err != nil {
			return err
		}
		header, err := NewCellReference(ref.TopLeft.row, ref.TopLeft.column+c.offset)
		if err != nil {
			return err
		}
		if err := ws.cell(header).SetValue(name); err != nil {
			return err
		}
	}
	return c.table.recompute()
}

// BodyRange returns the data cells of the column.
func (c *TableColumn) BodyRange() (*CellRange, error) {
	body, err := c.table.DataBodyRange()
	if err != nil {
		return nil, err
	}
	col := body.ref.TopLeft.column + c.offset
	tl, _ := NewCellReference(body.ref.TopLeft.row, col)
	br, _ := NewCellReference(body.ref.BottomRight.row, col)
	return &CellRange{ws: body.ws, ref: RangeRef{TopLeft: tl, BottomRight: br}}, nil
}

// TotalsRowFunction returns the aggregate shown in the totals row.
func (c *TableColumn) TotalsRowFunction() string { return attr(c.el, "totalsRowFunction") }

// SetTotalsRowFunction sets the totals row aggregate. Keywords outside
// none, sum, min, max, average, count, countNums, stdDev, var and custom
// are logged and rejected.
func (c *TableColumn) SetTotalsRowFunction(function string) error {
	if !totalsRowFunctions[function] {
		c.table.doc.logger.Warn("rejected totals row function",
			zap.String("table", c.table.Name()),
			zap.String("column", c.Name()),
			zap.String("function", function))
		return fmt.Errorf("%w: %q is not a totals row function", ErrInput, function)
	}
	if function == "none" {
		c.el.RemoveAttr("totalsRowFunction")
	} else {
		c.el.CreateAttr("totalsRowFunction", function)
		c.el.RemoveAttr("totalsRowLabel")
	}
	if function != "custom" {
		if f := c.el.SelectElement("totalsRowFormula"); f != nil {
			removeElement(f)
		}
	}
	return c.table.recompute()
}

// TotalsRowLabel returns the text shown in the totals row.
func (c *TableColumn) TotalsRowLabel() string { return attr(c.el, "totalsRowLabel") }

// SetTotalsRowLabel shows fixed text in the totals row instead of an
// aggregate. An empty label removes it.
func (c *TableColumn) SetTotalsRowLabel(label string) error {
	if label == "" {
		c.el.RemoveAttr("totalsRowLabel")
	} else {
		c.el.CreateAttr("totalsRowLabel", label)
		c.el.RemoveAttr("totalsRowFunction")
		if f := c.el.SelectElement("totalsRowFormula"); f != nil {
			removeElement(f)
		}
	}
	return c.table.recompute()
}

// TotalsRowFormula returns the formula of a custom totals cell.
func (c *TableColumn) TotalsRowFormula() string {
	if f := c.el.SelectElement("totalsRowFormula"); f != nil {
		return f.Text()
	}
	return ""
}

// SetTotalsRowFormula makes the totals cell a custom formula.
func (c *TableColumn) SetTotalsRowFormula(formula string) error {
	formula = strings.TrimPrefix(formula, "=")
	if formula == "" {
		return fmt.Errorf("%w: empty totals row formula", ErrInput)
	}
	childOrCreate(c.el, "totalsRowFormula", tableColumnOrder).SetText(formula)
	c.el.CreateAttr("totalsRowFunction", "custom")
	c.el.RemoveAttr("totalsRowLabel")
	return c.table.recompute()
}

// CalculatedColumnFormula returns the formula filled into every data cell.
func (c *TableColumn) CalculatedColumnFormula() string {
	if f := c.el.SelectElement("calculatedColumnFormula"); f != nil {
		return f.Text()
	}
	return ""
}

// SetCalculatedColumnFormula fills formula into every data cell of the
// column. An empty formula removes it and leaves the cells as they are.
func (c *TableColumn) SetCalculatedColumnFormula(formula string) error {
	formula = strings.TrimPrefix(formula, "=")
	if formula == "" {
		if f := c.el.SelectElement("calculatedColumnFormula"); f != nil {
			removeElement(f)
		}
		return nil
	}
	childOrCreate(c.el, "calculatedColumnFormula", tableColumnOrder).SetText(formula)
	return c.table.recompute()
}
