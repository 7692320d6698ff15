package xlgraph

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Element-only traversal helpers. Package XML is full of whitespace
// char-data between elements, so sibling walks must skip anything that is
// not an element.

func firstElement(parent *etree.Element) *etree.Element {
	for _, tok := range parent.Child {
		if el, ok := tok.(*etree.Element); ok {
			return el
		}
	}
	return nil
}

func lastElement(parent *etree.Element) *etree.Element {
	for i := len(parent.Child) - 1; i >= 0; i-- {
		if el, ok := parent.Child[i].(*etree.Element); ok {
			return el
		}
	}
	return nil
}

func nextElement(el *etree.Element) *etree.Element {
	parent := el.Parent()
	if parent == nil {
		return nil
	}
	for i := el.Index() + 1; i < len(parent.Child); i++ {
		if next, ok := parent.Child[i].(*etree.Element); ok {
			return next
		}
	}
	return nil
}

func prevElement(el *etree.Element) *etree.Element {
	parent := el.Parent()
	if parent == nil {
		return nil
	}
	for i := el.Index() - 1; i >= 0; i-- {
		if prev, ok := parent.Child[i].(*etree.Element); ok {
			return prev
		}
	}
	return nil
}

// nthElement returns the n-th (0-based) element child, ignoring char-data.
func nthElement(parent *etree.Element, n int) *etree.Element {
	for _, tok := range parent.Child {
		if el, ok := tok.(*etree.Element); ok {
			if n == 0 {
				return el
			}
			n--
		}
	}
	return nil
}

func countElements(parent *etree.Element, tag string) int {
	n := 0
	for _, el := range parent.ChildElements() {
		if tag == "" || el.FullTag() == tag {
			n++
		}
	}
	return n
}

func isWhitespace(tok etree.Token) bool {
	cd, ok := tok.(*etree.CharData)
	return ok && strings.TrimSpace(cd.Data) == ""
}

// removeElement detaches el together with the whitespace run in front of it.
func removeElement(el *etree.Element) {
	parent := el.Parent()
	if parent == nil {
		return
	}
	idx := el.Index()
	parent.RemoveChildAt(idx)
	for idx > 0 && isWhitespace(parent.Child[idx-1]) {
		idx--
		parent.RemoveChildAt(idx)
	}
}

// insertBefore places el directly in front of ref, copying the indentation
// that precedes ref so pretty-printed files stay pretty.
func insertBefore(ref, el *etree.Element) {
	parent := ref.Parent()
	idx := ref.Index()
	if idx > 0 && isWhitespace(parent.Child[idx-1]) {
		ws := parent.Child[idx-1].(*etree.CharData).Data
		parent.InsertChildAt(idx, el)
		parent.InsertChildAt(idx+1, etree.NewText(ws))
		return
	}
	parent.InsertChildAt(idx, el)
}

// insertAfter places el directly behind ref.
func insertAfter(ref, el *etree.Element) {
	parent := ref.Parent()
	idx := ref.Index()
	if idx > 0 && isWhitespace(parent.Child[idx-1]) {
		ws := parent.Child[idx-1].(*etree.CharData).Data
		parent.InsertChildAt(idx+1, etree.NewText(ws))
		parent.InsertChildAt(idx+2, el)
		return
	}
	parent.InsertChildAt(idx+1, el)
}

// appendElement appends el after the last element child of parent.
func appendElement(parent, el *etree.Element) {
	if last := lastElement(parent); last != nil {
		insertAfter(last, el)
		return
	}
	parent.AddChild(el)
}

// insertOrdered inserts el among parent's children so that the element
// order given by schemaOrder is respected. Tags missing from schemaOrder
// sort last.
func insertOrdered(parent, el *etree.Element, schemaOrder []string) {
	rank := func(tag string) int {
		for i, t := range schemaOrder {
			if t == tag {
				return i
			}
		}
		return len(schemaOrder)
	}
	want := rank(el.Tag)
	for _, child := range parent.ChildElements() {
		if rank(child.Tag) > want {
			insertBefore(child, el)
			return
		}
	}
	appendElement(parent, el)
}

// childOrCreate returns the named child, creating it in schema order when absent.
func childOrCreate(parent *etree.Element, tag string, schemaOrder []string) *etree.Element {
	if c := parent.SelectElement(tag); c != nil {
		return c
	}
	c := etree.NewElement(tag)
	insertOrdered(parent, c, schemaOrder)
	return c
}

func attr(el *etree.Element, key string) string {
	return el.SelectAttrValue(key, "")
}

func hasAttr(el *etree.Element, key string) bool {
	return el.SelectAttr(key) != nil
}

func attrUint(el *etree.Element, key string, dflt uint64) uint64 {
	a := el.SelectAttr(key)
	if a == nil {
		return dflt
	}
	v, err := strconv.ParseUint(a.Value, 10, 64)
	if err != nil {
		return dflt
	}
	return v
}

// attrBool reads an xsd:boolean attribute ("1"/"true").
func attrBool(el *etree.Element, key string, dflt bool) bool {
	a := el.SelectAttr(key)
	if a == nil {
		return dflt
	}
	switch a.Value {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	return dflt
}

func setAttrUint(el *etree.Element, key string, v uint64) {
	el.CreateAttr(key, strconv.FormatUint(v, 10))
}

func setAttrBool(el *etree.Element, key string, v bool) {
	if v {
		el.CreateAttr(key, "1")
		return
	}
	el.CreateAttr(key, "0")
}

// rowNumber reads the r attribute of a <row>.
func rowNumber(row *etree.Element) uint32 {
	return uint32(attrUint(row, "r", 0))
}

// cellColumn reads the column part of the r attribute of a <c>.
func cellColumn(c *etree.Element) uint16 {
	letters, _ := splitAddress(attr(c, "r"))
	col, err := ColumnAsNumber(letters)
	if err != nil {
		return 0
	}
	return col
}
