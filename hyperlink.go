package xlgraph

import (
	"fmt"

	"github.com/beevik/etree"
)

// Hyperlink is a clickable link anchored to a cell. URL targets are stored
// as external relationships of the sheet; Location targets (e.g.
// "Sheet2!A1") are stored inline.
type Hyperlink struct {
	Ref      CellReference
	URL      string
	Location string
	Display  string
	Tooltip  string
}

// String returns the display text for the hyperlink.
func (h Hyperlink) String() string {
	switch {
	case h.Display != "":
		return h.Display
	case h.URL != "":
		return h.URL
	}
	return h.Location
}

func (w *Worksheet) hyperlinkNode(ref CellReference) *etree.Element {
	links := w.root().SelectElement("hyperlinks")
	if links == nil {
		return nil
	}
	for _, el := range links.SelectElements("hyperlink") {
		if attr(el, "ref") == ref.String() {
			return el
		}
	}
	return nil
}

// Hyperlinks returns the links of the sheet in document order.
func (w *Worksheet) Hyperlinks() ([]Hyperlink, error) {
	links := w.root().SelectElement("hyperlinks")
	if links == nil {
		return nil, nil
	}
	var out []Hyperlink
	for _, el := range links.SelectElements("hyperlink") {
		ref, err := ParseCellReference(attr(el, "ref"))
		if err != nil {
			// multi-cell anchors are keyed by their first cell
			rng, rerr := ParseRange(attr(el, "ref"))
			if rerr != nil {
				return nil, err
			}
			ref = rng.TopLeft
		}
		h := Hyperlink{
			Ref:      ref,
			Location: attr(el, "location"),
			Display:  attr(el, "display"),
			Tooltip:  attr(el, "tooltip"),
		}
		if id := attr(el, "r:id"); id != "" {
			rels, err := w.doc.relationshipsFor(w.part.path, false)
			if err != nil {
				return nil, err
			}
			rel, ok := rels.ByID(id)
			if !ok {
				return nil, fmt.Errorf("%w: hyperlink %s refers to missing relationship %s", ErrInternal, ref, id)
			}
			h.URL = rel.Target
		}
		out = append(out, h)
	}
	return out, nil
}

// AddHyperlink anchors a link to h.Ref, replacing any link already there.
// When Display is set it is also written as the cell text.
func (w *Worksheet) AddHyperlink(h Hyperlink) error {
	if h.Ref.IsZero() {
		return fmt.Errorf("%w: hyperlink needs a cell reference", ErrInput)
	}
	if (h.URL == "") == (h.Location == "") {
		return fmt.Errorf("%w: hyperlink %s needs exactly one of URL and Location", ErrInput, h.Ref)
	}
	if err := w.DeleteHyperlink(h.Ref.String()); err != nil {
		return err
	}
	el := etree.NewElement("hyperlink")
	el.CreateAttr("ref", h.Ref.String())
	if h.URL != "" {
		rels, err := w.doc.relationshipsFor(w.part.path, true)
		if err != nil {
			return err
		}
		rel, err := rels.Add(RelationshipHyperlink, h.URL)
		if err != nil {
			return err
		}
		el.CreateAttr("r:id", rel.ID)
	} else {
		el.CreateAttr("location", h.Location)
	}
	if h.Display != "" {
		el.CreateAttr("display", h.Display)
	}
	if h.Tooltip != "" {
		el.CreateAttr("tooltip", h.Tooltip)
	}
	appendElement(childOrCreate(w.root(), "hyperlinks", worksheetOrder), el)

	if h.Display != "" {
		return w.cell(h.Ref).SetValue(h.Display)
	}
	return nil
}

// DeleteHyperlink removes the link anchored at ref, if any, together with
// its relationship.
func (w *Worksheet) DeleteHyperlink(ref string) error {
	cell, err := ParseCellReference(ref)
	if err != nil {
		return err
	}
	el := w.hyperlinkNode(cell)
	if el == nil {
		return nil
	}
	if id := attr(el, "r:id"); id != "" {
		rels, err := w.doc.relationshipsFor(w.part.path, false)
		if err != nil {
			return err
		}
		rels.Delete(id)
	}
	links := el.Parent()
	removeElement(el)
	if len(links.ChildElements()) == 0 {
		removeElement(links)
	}
	return nil
}
