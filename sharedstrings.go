package xlgraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/beevik/etree"
)

// MaxSharedStrings is the largest number of entries a shared string table may hold.
const MaxSharedStrings = math.MaxInt32

// SharedStrings is the package-wide, append-only string table. Entries are
// never removed or moved, so an index handed out once stays valid for the
// life of the document.
type SharedStrings struct {
	part    *Part
	entries []string
	nodes   []*etree.Element
	lookup  map[string]int32
}

func newSharedStrings(p *Part) (*SharedStrings, error) {
	root, err := p.root()
	if err != nil {
		return nil, err
	}
	s := &SharedStrings{part: p, lookup: make(map[string]int32)}
	for _, si := range root.SelectElements("si") {
		text := siText(si)
		idx := int32(len(s.entries))
		s.entries = append(s.entries, text)
		s.nodes = append(s.nodes, si)
		if _, dup := s.lookup[text]; !dup {
			s.lookup[text] = idx
		}
	}
	return s, nil
}

// siText returns the plain text of an <si>, concatenating rich text runs.
func siText(si *etree.Element) string {
	if t := si.SelectElement("t"); t != nil {
		return t.Text()
	}
	var b strings.Builder
	for _, r := range si.SelectElements("r") {
		if t := r.SelectElement("t"); t != nil {
			b.WriteString(t.Text())
		}
	}
	return b.String()
}

// Count returns the number of entries, cleared ones included.
func (s *SharedStrings) Count() int { return len(s.entries) }

// Get returns the string at index.
func (s *SharedStrings) Get(index int32) (string, error) {
	if index < 0 || int(index) >= len(s.entries) {
		return "", fmt.Errorf("%w: shared string index %d out of range (table has %d entries)", ErrInput, index, len(s.entries))
	}
	return s.entries[index], nil
}

// Index returns the index of str, if interned.
func (s *SharedStrings) Index(str string) (int32, bool) {
	idx, ok := s.lookup[str]
	return idx, ok
}

// Append interns str and returns its index. Appending a string that is
// already present returns the existing index.
func (s *SharedStrings) Append(str string) (int32, error) {
	if idx, ok := s.lookup[str]; ok {
		return idx, nil
	}
	if len(s.entries) >= MaxSharedStrings {
		return 0, fmt.Errorf("%w: shared string table is full (%d entries)", ErrInput, MaxSharedStrings)
	}
	root, err := s.part.root()
	if err != nil {
		return 0, err
	}
	si := etree.NewElement("si")
	setTextPreserving(si.CreateElement("t"), str)
	appendElement(root, si)

	idx := int32(len(s.entries))
	s.entries = append(s.entries, str)
	s.nodes = append(s.nodes, si)
	s.lookup[str] = idx
	s.updateCounts(root)
	return idx, nil
}

// Clear blanks the entry at index but keeps its slot, so every other
// index stays valid.
func (s *SharedStrings) Clear(index int32) error {
	old, err := s.Get(index)
	if err != nil {
		return err
	}
	if s.lookup[old] == index {
		delete(s.lookup, old)
	}
	s.entries[index] = ""
	si := s.nodes[index]
	for len(si.Child) > 0 {
		si.RemoveChildAt(0)
	}
	si.CreateElement("t")
	return nil
}

func (s *SharedStrings) updateCounts(root *etree.Element) {
	n := uint64(len(s.entries))
	setAttrUint(root, "uniqueCount", n)
	if attrUint(root, "count", 0) < n {
		setAttrUint(root, "count", n)
	}
}

// setTextPreserving sets element text, marking it xml:space="preserve"
// when leading or trailing whitespace would otherwise be dropped.
func setTextPreserving(t *etree.Element, text string) {
	t.SetText(text)
	if text != strings.TrimSpace(text) {
		t.CreateAttr("xml:space", "preserve")
	} else {
		t.RemoveAttr("xml:space")
	}
}
