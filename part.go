package xlgraph

import (
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// Part is one XML document inside the package. Links to other parts are
// stored as package paths and resolved through the owning Document.
type Part struct {
	path     string
	relsID   string
	kind     ContentType
	name     string
	parent   string
	children []string

	raw string
	doc *etree.Document
}

func newPart(partPath, relsID string, kind ContentType, raw string) *Part {
	return &Part{
		path:   strings.TrimPrefix(partPath, "/"),
		relsID: relsID,
		kind:   kind,
		raw:    raw,
	}
}

// Path returns the archive path, without a leading slash.
func (p *Part) Path() string { return p.path }

// RelsID returns the relationship id the part is referenced by, if any.
func (p *Part) RelsID() string { return p.relsID }

// Type returns the content type classification.
func (p *Part) Type() ContentType { return p.kind }

// Name returns the logical name (sheet or table name), if any.
func (p *Part) Name() string { return p.name }

// Parent returns the path of the owning part, or "".
func (p *Part) Parent() string { return p.parent }

// Children returns the paths of the parts this part owns.
func (p *Part) Children() []string {
	return append([]string(nil), p.children...)
}

func (p *Part) addChild(childPath string) {
	for _, c := range p.children {
		if c == childPath {
			return
		}
	}
	p.children = append(p.children, childPath)
}

func (p *Part) removeChild(childPath string) {
	for i, c := range p.children {
		if c == childPath {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

// Document returns the parsed XML, parsing the raw text on first access.
func (p *Part) Document() (*etree.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(p.raw); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInternal, p.path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s has no document element", ErrInternal, p.path)
	}
	p.doc = doc
	p.raw = ""
	return doc, nil
}

// root returns the document element.
func (p *Part) root() (*etree.Element, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}
	return doc.Root(), nil
}

// XML returns the serialized content. Unparsed parts are returned verbatim.
func (p *Part) XML() (string, error) {
	if p.doc == nil {
		return p.raw, nil
	}
	s, err := p.doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("%w: serialize %s: %v", ErrInternal, p.path, err)
	}
	return s, nil
}

// SetXML replaces the content; it is parsed lazily again on next access.
func (p *Part) SetXML(s string) {
	p.raw = s
	p.doc = nil
}

// dir returns the folder holding the part, with a trailing slash.
func (p *Part) dir() string {
	d := path.Dir(p.path)
	if d == "." {
		return ""
	}
	return d + "/"
}

// relsPathFor returns the path of the relationship part belonging to partPath,
// e.g. xl/worksheets/_rels/sheet1.xml.rels.
func relsPathFor(partPath string) string {
	dir, file := path.Split(strings.TrimPrefix(partPath, "/"))
	return dir + "_rels/" + file + ".rels"
}
