package xlgraph

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// MergeCells is the <mergeCells> list of a worksheet. Entries never
// overlap and are never single cells.
type MergeCells struct {
	root   *etree.Element
	logger *zap.Logger
}

// newMergeCells wraps the merge list of a worksheet root. Entries without
// a usable ref are removed from the XML and logged.
func newMergeCells(root *etree.Element, logger *zap.Logger) *MergeCells {
	m := &MergeCells{root: root, logger: logger}
	container := root.SelectElement("mergeCells")
	if container == nil {
		return m
	}
	healed := 0
	for _, el := range container.SelectElements("mergeCell") {
		if _, err := ParseRange(attr(el, "ref")); err != nil {
			logger.Warn("removing invalid mergeCell", zap.String("ref", attr(el, "ref")), zap.Error(err))
			removeElement(el)
			healed++
		}
	}
	if healed > 0 {
		m.sync()
	}
	return m
}

func (m *MergeCells) container() *etree.Element {
	return m.root.SelectElement("mergeCells")
}

// sync updates the count attribute and drops the container when it is empty.
func (m *MergeCells) sync() {
	c := m.container()
	if c == nil {
		return
	}
	n := countElements(c, "mergeCell")
	if n == 0 {
		removeElement(c)
		return
	}
	setAttrUint(c, "count", uint64(n))
}

// Count returns the number of merged ranges.
func (m *MergeCells) Count() int {
	c := m.container()
	if c == nil {
		return 0
	}
	return countElements(c, "mergeCell")
}

// Ranges returns the merged ranges in document order.
func (m *MergeCells) Ranges() []RangeRef {
	return mergeRanges(m.root)
}

// Merge returns the i-th merged range.
func (m *MergeCells) Merge(i int) (RangeRef, error) {
	el := m.entry(i)
	if el == nil {
		return RangeRef{}, fmt.Errorf("%w: merge index %d out of range 0..%d", ErrInput, i, m.Count()-1)
	}
	return ParseRange(attr(el, "ref"))
}

func (m *MergeCells) entry(i int) *etree.Element {
	c := m.container()
	if c == nil || i < 0 {
		return nil
	}
	return nthElement(c, i)
}

// Find returns the index of the merge exactly covering ref, or -1.
// Column letters may be given in either case.
func (m *MergeCells) Find(ref string) int {
	want, err := ParseRange(strings.ToUpper(ref))
	if err != nil {
		return -1
	}
	for i, r := range m.Ranges() {
		if r == want {
			return i
		}
	}
	return -1
}

// FindContaining returns the index of the merge containing cell, or -1.
func (m *MergeCells) FindContaining(cell CellReference) int {
	for i, r := range m.Ranges() {
		if r.Contains(cell) {
			return i
		}
	}
	return -1
}

// Append adds a merged range and returns its index. Single cells and
// ranges overlapping an existing merge are rejected.
func (m *MergeCells) Append(ref string) (int, error) {
	rng, err := ParseRange(ref)
	if err != nil {
		return -1, err
	}
	if rng.IsSingleCell() {
		return -1, fmt.Errorf("%w: cannot merge the single cell %s", ErrInput, rng)
	}
	existing := m.Ranges()
	for _, r := range existing {
		if r.Overlaps(rng) {
			return -1, fmt.Errorf("%w: %s overlaps existing merged range %s", ErrInput, rng, r)
		}
	}
	el := etree.NewElement("mergeCell")
	el.CreateAttr("ref", rng.String())
	appendElement(childOrCreate(m.root, "mergeCells", worksheetOrder), el)
	m.sync()
	return len(existing), nil
}

// Delete removes the i-th merged range.
func (m *MergeCells) Delete(i int) error {
	el := m.entry(i)
	if el == nil {
		return fmt.Errorf("%w: merge index %d out of range 0..%d", ErrInput, i, m.Count()-1)
	}
	removeElement(el)
	m.sync()
	return nil
}

// mergeRanges parses the merge list without healing it; unparseable
// entries are skipped.
func mergeRanges(root *etree.Element) []RangeRef {
	c := root.SelectElement("mergeCells")
	if c == nil {
		return nil
	}
	var out []RangeRef
	for _, el := range c.SelectElements("mergeCell") {
		if r, err := ParseRange(attr(el, "ref")); err == nil {
			out = append(out, r)
		}
	}
	return out
}
