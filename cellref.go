package xlgraph

import (
	"fmt"
	"strconv"
	"strings"
)

// Excel grid limits.
const (
	MaxRows = 1048576
	MaxCols = 16384
)

// CellReference is a validated, 1-based (row, column) position on a sheet.
type CellReference struct {
	row     uint32
	column  uint16
	address string
}

// NewCellReference creates a CellReference from 1-based row and column numbers.
func NewCellReference(row uint32, column uint16) (CellReference, error) {
	if row < 1 || row > MaxRows {
		return CellReference{}, fmt.Errorf("%w: row %d out of range 1..%d", ErrAddress, row, MaxRows)
	}
	if column < 1 || column > MaxCols {
		return CellReference{}, fmt.Errorf("%w: column %d out of range 1..%d", ErrAddress, column, MaxCols)
	}
	return CellReference{
		row:     row,
		column:  column,
		address: ColumnAsString(column) + strconv.FormatUint(uint64(row), 10),
	}, nil
}

// MustCellReference is like ParseCellReference but panics on error.
// Intended for constant addresses in tests and templates.
func MustCellReference(address string) CellReference {
	ref, err := ParseCellReference(address)
	if err != nil {
		panic(err)
	}
	return ref
}

// ParseCellReference parses an address like "A1" or "XFD1048576".
// Column letters must be uppercase and the whole string must be consumed.
func ParseCellReference(address string) (CellReference, error) {
	i := 0
	for i < len(address) && address[i] >= 'A' && address[i] <= 'Z' {
		i++
	}
	if i == 0 || i > 3 {
		return CellReference{}, fmt.Errorf("%w: invalid cell reference %q", ErrAddress, address)
	}
	digits := address[i:]
	if digits == "" || digits[0] == '0' {
		return CellReference{}, fmt.Errorf("%w: invalid row in cell reference %q", ErrAddress, address)
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return CellReference{}, fmt.Errorf("%w: invalid row in cell reference %q", ErrAddress, address)
		}
	}
	row, err := strconv.ParseUint(digits, 10, 32)
	if err != nil || row > MaxRows {
		return CellReference{}, fmt.Errorf("%w: row out of range in cell reference %q", ErrAddress, address)
	}
	col, err := ColumnAsNumber(address[:i])
	if err != nil {
		return CellReference{}, fmt.Errorf("invalid cell reference %q: %w", address, err)
	}
	return NewCellReference(uint32(row), col)
}

// Row returns the 1-based row number.
func (c CellReference) Row() uint32 { return c.row }

// Column returns the 1-based column number.
func (c CellReference) Column() uint16 { return c.column }

// Address returns the canonical "A1" form.
func (c CellReference) Address() string { return c.address }

// String implements fmt.Stringer.
func (c CellReference) String() string { return c.address }

// IsZero reports whether c is the zero value (not a valid reference).
func (c CellReference) IsZero() bool { return c.row == 0 }

// Offset returns the reference moved by the given number of rows and columns.
func (c CellReference) Offset(rows, cols int) (CellReference, error) {
	r := int64(c.row) + int64(rows)
	col := int64(c.column) + int64(cols)
	if r < 1 || r > MaxRows || col < 1 || col > MaxCols {
		return CellReference{}, fmt.Errorf("%w: offset (%d,%d) from %s leaves the sheet", ErrAddress, rows, cols, c.address)
	}
	return NewCellReference(uint32(r), uint16(col))
}

// ColumnAsString converts a 1-based column number to letters.
// 1→"A", 26→"Z", 27→"AA", 16384→"XFD"
func ColumnAsString(column uint16) string {
	var buf [3]byte
	i := len(buf)
	n := int(column)
	for n > 0 && i > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// ColumnAsNumber converts column letters to a 1-based column number.
// "A"→1, "Z"→26, "AA"→27
func ColumnAsNumber(letters string) (uint16, error) {
	if letters == "" || len(letters) > 3 {
		return 0, fmt.Errorf("%w: invalid column name %q", ErrAddress, letters)
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		ch := letters[i]
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("%w: invalid column name %q", ErrAddress, letters)
		}
		n = n*26 + int(ch-'A') + 1
	}
	if n > MaxCols {
		return 0, fmt.Errorf("%w: column %q beyond %s", ErrAddress, letters, ColumnAsString(MaxCols))
	}
	return uint16(n), nil
}

// splitAddress splits "AB12" into its column letters and row digits without validating.
func splitAddress(address string) (letters, digits string) {
	i := 0
	for i < len(address) && address[i] >= 'A' && address[i] <= 'Z' {
		i++
	}
	return address[:i], address[i:]
}

// RangeRef is a rectangular block of cells given by its corners.
type RangeRef struct {
	TopLeft     CellReference
	BottomRight CellReference
}

// NewRangeRef creates a RangeRef, failing if the corners are not ordered.
func NewRangeRef(topLeft, bottomRight CellReference) (RangeRef, error) {
	if topLeft.IsZero() || bottomRight.IsZero() {
		return RangeRef{}, fmt.Errorf("%w: range corner is not set", ErrAddress)
	}
	if topLeft.row > bottomRight.row || topLeft.column > bottomRight.column {
		return RangeRef{}, fmt.Errorf("%w: top left %s is below or right of bottom right %s",
			ErrAddress, topLeft, bottomRight)
	}
	return RangeRef{TopLeft: topLeft, BottomRight: bottomRight}, nil
}

// ParseRange parses "A1:C4". A single address is accepted as a 1x1 range.
func ParseRange(s string) (RangeRef, error) {
	first, last, found := strings.Cut(s, ":")
	if !found {
		last = first
	}
	tl, err := ParseCellReference(first)
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	br, err := ParseCellReference(last)
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return NewRangeRef(tl, br)
}

// String formats the range as "A1:C4".
func (r RangeRef) String() string {
	return r.TopLeft.address + ":" + r.BottomRight.address
}

// NumRows returns the height of the range.
func (r RangeRef) NumRows() uint32 { return r.BottomRight.row - r.TopLeft.row + 1 }

// NumColumns returns the width of the range.
func (r RangeRef) NumColumns() uint16 { return r.BottomRight.column - r.TopLeft.column + 1 }

// IsSingleCell reports whether both corners are the same cell.
func (r RangeRef) IsSingleCell() bool {
	return r.TopLeft.row == r.BottomRight.row && r.TopLeft.column == r.BottomRight.column
}

// Contains reports whether ref lies inside the range.
func (r RangeRef) Contains(ref CellReference) bool {
	return ref.row >= r.TopLeft.row && ref.row <= r.BottomRight.row &&
		ref.column >= r.TopLeft.column && ref.column <= r.BottomRight.column
}

// Overlaps reports whether the two rectangles share at least one cell.
func (r RangeRef) Overlaps(other RangeRef) bool {
	rowsIntersect := r.TopLeft.row <= other.BottomRight.row && other.TopLeft.row <= r.BottomRight.row
	colsIntersect := r.TopLeft.column <= other.BottomRight.column && other.TopLeft.column <= r.BottomRight.column
	return rowsIntersect && colsIntersect
}

// RangesOverlap parses both range strings and tests them for overlap.
func RangesOverlap(a, b string) (bool, error) {
	ra, err := ParseRange(a)
	if err != nil {
		return false, err
	}
	rb, err := ParseRange(b)
	if err != nil {
		return false, err
	}
	return ra.Overlaps(rb), nil
}
