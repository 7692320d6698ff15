package xlgraph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// CellType identifies the kind of value stored in a cell.
type CellType int

const (
	CellBlank CellType = iota
	CellString
	CellNumber
	CellBoolean
	CellError
)

func (t CellType) String() string {
	switch t {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	case CellBoolean:
		return "boolean"
	case CellError:
		return "error"
	}
	return "blank"
}

var cellOrder = []string{"f", "v", "is", "extLst"}

// excelEpoch is day zero of the 1900 date system as Excel counts it.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// cellValue decodes the value of a <c> node.
func (d *Document) cellValue(c *etree.Element) (any, CellType) {
	v := c.SelectElement("v")
	switch attr(c, "t") {
	case "s":
		if v == nil {
			return nil, CellBlank
		}
		idx, err := strconv.ParseInt(strings.TrimSpace(v.Text()), 10, 32)
		if err != nil || d.sharedStrings == nil {
			return nil, CellBlank
		}
		s, err := d.sharedStrings.Get(int32(idx))
		if err != nil {
			return nil, CellBlank
		}
		return s, CellString
	case "inlineStr":
		if is := c.SelectElement("is"); is != nil {
			return siText(is), CellString
		}
		return "", CellString
	case "str":
		if v == nil {
			return "", CellString
		}
		return v.Text(), CellString
	case "b":
		if v == nil {
			return nil, CellBlank
		}
		return strings.TrimSpace(v.Text()) == "1", CellBoolean
	case "e":
		if v == nil {
			return nil, CellBlank
		}
		return v.Text(), CellError
	}
	if v == nil || strings.TrimSpace(v.Text()) == "" {
		return nil, CellBlank
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
	if err != nil {
		return v.Text(), CellString
	}
	return f, CellNumber
}

// cellDisplayText renders a cell value as text.
func (d *Document) cellDisplayText(c *etree.Element) string {
	v, _ := d.cellValue(c)
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// clearCellContent drops the value and formula of c, keeping its address
// and style.
func clearCellContent(c *etree.Element) {
	for _, tag := range []string{"f", "v", "is"} {
		for el := c.SelectElement(tag); el != nil; el = c.SelectElement(tag) {
			removeElement(el)
		}
	}
	c.RemoveAttr("t")
}

// writeCellString stores s as a shared string, or inline when the document
// was opened with WithInlineStrings.
func (d *Document) writeCellString(c *etree.Element, s string) error {
	if d.opts.inlineStrings {
		clearCellContent(c)
		c.CreateAttr("t", "inlineStr")
		is := etree.NewElement("is")
		setTextPreserving(is.CreateElement("t"), s)
		insertOrdered(c, is, cellOrder)
		return nil
	}
	idx, err := d.sharedStrings.Append(s)
	if err != nil {
		return err
	}
	clearCellContent(c)
	c.CreateAttr("t", "s")
	v := etree.NewElement("v")
	v.SetText(strconv.FormatInt(int64(idx), 10))
	insertOrdered(c, v, cellOrder)
	return nil
}

func (d *Document) writeCellValue(c *etree.Element, value any) error {
	var text, typ string
	switch x := value.(type) {
	case nil:
		clearCellContent(c)
		return nil
	case string:
		return d.writeCellString(c, x)
	case bool:
		text, typ = "0", "b"
		if x {
			text = "1"
		}
	case int:
		text = strconv.FormatInt(int64(x), 10)
	case int8:
		text = strconv.FormatInt(int64(x), 10)
	case int16:
		text = strconv.FormatInt(int64(x), 10)
	case int32:
		text = strconv.FormatInt(int64(x), 10)
	case int64:
		text = strconv.FormatInt(x, 10)
	case uint:
		text = strconv.FormatUint(uint64(x), 10)
	case uint8:
		text = strconv.FormatUint(uint64(x), 10)
	case uint16:
		text = strconv.FormatUint(uint64(x), 10)
	case uint32:
		text = strconv.FormatUint(uint64(x), 10)
	case uint64:
		text = strconv.FormatUint(x, 10)
	case float32:
		text = strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %v cannot be stored in a cell", ErrInput, x)
		}
		text = strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		text = strconv.FormatFloat(x.Sub(excelEpoch).Hours()/24, 'g', -1, 64)
	default:
		return fmt.Errorf("%w: unsupported cell value type %T", ErrInput, value)
	}
	clearCellContent(c)
	if typ != "" {
		c.CreateAttr("t", typ)
	}
	v := etree.NewElement("v")
	v.SetText(text)
	insertOrdered(c, v, cellOrder)
	return nil
}

// Cell is one <c> node of a worksheet.
type Cell struct {
	doc *Document
	el  *etree.Element
	ref CellReference
}

// Reference returns the cell's address.
func (c *Cell) Reference() CellReference { return c.ref }

// Type returns the kind of value stored.
func (c *Cell) Type() CellType {
	_, t := c.doc.cellValue(c.el)
	return t
}

// Value returns nil, a string, a float64 or a bool. Error values are
// returned as their text, e.g. "#DIV/0!".
func (c *Cell) Value() any {
	v, _ := c.doc.cellValue(c.el)
	return v
}

// String returns the value as text.
func (c *Cell) String() string { return c.doc.cellDisplayText(c.el) }

// SetValue stores a value, replacing any formula. Strings are interned in
// the shared string table; nil clears the cell.
func (c *Cell) SetValue(value any) error {
	if err := c.doc.writeCellValue(c.el, value); err != nil {
		return fmt.Errorf("cell %s: %w", c.ref, err)
	}
	return nil
}

// Clear removes the value and formula but keeps the cell's style.
func (c *Cell) Clear() { clearCellContent(c.el) }

// HasFormula reports whether the cell has a formula.
func (c *Cell) HasFormula() bool { return c.el.SelectElement("f") != nil }

// Formula returns the formula text without a leading "=".
func (c *Cell) Formula() string {
	if f := c.el.SelectElement("f"); f != nil {
		return f.Text()
	}
	return ""
}

// SetFormula sets the formula. The cached value is dropped so the result
// is computed by the spreadsheet application.
func (c *Cell) SetFormula(formula string) error {
	formula = strings.TrimPrefix(formula, "=")
	if formula == "" {
		return fmt.Errorf("%w: cell %s: empty formula", ErrInput, c.ref)
	}
	clearCellContent(c.el)
	f := etree.NewElement("f")
	f.SetText(formula)
	insertOrdered(c.el, f, cellOrder)
	return nil
}

// ClearFormula removes the formula and keeps the cached value.
func (c *Cell) ClearFormula() {
	if f := c.el.SelectElement("f"); f != nil {
		removeElement(f)
	}
}

// StyleIndex returns the cellXfs index of the cell.
func (c *Cell) StyleIndex() uint64 { return attrUint(c.el, "s", 0) }

// SetStyleIndex sets the cellXfs index of the cell.
func (c *Cell) SetStyleIndex(index uint64) {
	if index == 0 {
		c.el.RemoveAttr("s")
		return
	}
	setAttrUint(c.el, "s", index)
}
