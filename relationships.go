package xlgraph

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// RelationshipType classifies a relationship edge.
type RelationshipType int

const (
	RelationshipUnknown RelationshipType = iota
	RelationshipCoreProperties
	RelationshipExtendedProperties
	RelationshipCustomProperties
	RelationshipWorkbook
	RelationshipWorksheet
	RelationshipChartsheet
	RelationshipStyles
	RelationshipSharedStrings
	RelationshipCalculationChain
	RelationshipExternalLink
	RelationshipExternalLinkPath
	RelationshipTheme
	RelationshipDrawing
	RelationshipImage
	RelationshipChart
	RelationshipChartStyle
	RelationshipChartColorStyle
	RelationshipPrinterSettings
	RelationshipVMLDrawing
	RelationshipControlProperties
	RelationshipComments
	RelationshipVBAProject
	RelationshipTable
	RelationshipHyperlink
)

const (
	relDomainOpenXML   = "http://schemas.openxmlformats.org/officeDocument/2006"
	relDomainPackage   = "http://schemas.openxmlformats.org/package/2006"
	relDomainMS2006    = "http://schemas.microsoft.com/office/2006"
	relDomainMS2011    = "http://schemas.microsoft.com/office/2011"
	relSection         = "/relationships/"
	relsNamespace      = "http://schemas.openxmlformats.org/package/2006/relationships"
	officeRelNamespace = relDomainOpenXML + "/relationships"
)

var relationshipURIs = map[RelationshipType]string{
	RelationshipCoreProperties:     relDomainPackage + relSection + "metadata/core-properties",
	RelationshipExtendedProperties: relDomainOpenXML + relSection + "extended-properties",
	RelationshipCustomProperties:   relDomainOpenXML + relSection + "custom-properties",
	RelationshipWorkbook:           relDomainOpenXML + relSection + "officeDocument",
	RelationshipWorksheet:          relDomainOpenXML + relSection + "worksheet",
	RelationshipChartsheet:         relDomainOpenXML + relSection + "chartsheet",
	RelationshipStyles:             relDomainOpenXML + relSection + "styles",
	RelationshipSharedStrings:      relDomainOpenXML + relSection + "sharedStrings",
	RelationshipCalculationChain:   relDomainOpenXML + relSection + "calcChain",
	RelationshipExternalLink:       relDomainOpenXML + relSection + "externalLink",
	RelationshipExternalLinkPath:   relDomainOpenXML + relSection + "externalLinkPath",
	RelationshipTheme:              relDomainOpenXML + relSection + "theme",
	RelationshipDrawing:            relDomainOpenXML + relSection + "drawing",
	RelationshipImage:              relDomainOpenXML + relSection + "image",
	RelationshipChart:              relDomainOpenXML + relSection + "chart",
	RelationshipChartStyle:         relDomainMS2011 + relSection + "chartStyle",
	RelationshipChartColorStyle:    relDomainMS2011 + relSection + "chartColorStyle",
	RelationshipPrinterSettings:    relDomainOpenXML + relSection + "printerSettings",
	RelationshipVMLDrawing:         relDomainOpenXML + relSection + "vmlDrawing",
	RelationshipControlProperties:  relDomainOpenXML + relSection + "ctrlProp",
	RelationshipComments:           relDomainOpenXML + relSection + "comments",
	RelationshipVBAProject:         relDomainMS2006 + relSection + "vbaProject",
	RelationshipTable:              relDomainOpenXML + relSection + "table",
	RelationshipHyperlink:          relDomainOpenXML + relSection + "hyperlink",
}

// ParseRelationshipType maps a Type URI to a RelationshipType. URIs from
// other domains (e.g. strict OOXML purl.oclc.org) are matched by their
// "/relationships/..." suffix.
func ParseRelationshipType(uri string) RelationshipType {
	for t, u := range relationshipURIs {
		if u == uri {
			return t
		}
	}
	i := strings.Index(uri, relSection)
	if i < 0 {
		return RelationshipUnknown
	}
	suffix := uri[i:]
	for t, u := range relationshipURIs {
		if strings.HasSuffix(u, suffix) {
			return t
		}
	}
	return RelationshipUnknown
}

// URI returns the Type attribute value for t.
func (t RelationshipType) URI() (string, error) {
	u, ok := relationshipURIs[t]
	if !ok {
		return "", fmt.Errorf("%w: relationship type %d not recognized", ErrInternal, int(t))
	}
	return u, nil
}

func (t RelationshipType) external() bool {
	return t == RelationshipExternalLinkPath || t == RelationshipHyperlink
}

// Relationship is one edge in a relationships part.
type Relationship struct {
	ID       string
	Type     RelationshipType
	TypeURI  string
	Target   string
	External bool
}

// IsValid reports whether the item was found.
func (r Relationship) IsValid() bool { return r.ID != "" }

// Relationships wraps one .rels part. The owner path determines how
// relative targets resolve.
type Relationships struct {
	part      *Part
	owner     string // path of the part the rels file describes ("" for the package root)
	highWater uint64
}

func newRelationships(p *Part, owner string) (*Relationships, error) {
	if _, err := p.root(); err != nil {
		return nil, err
	}
	r := &Relationships{part: p, owner: owner}
	for _, el := range r.elements() {
		n, ok := parseRelsID(attr(el, "Id"))
		if ok && n > r.highWater {
			r.highWater = n
		}
	}
	return r, nil
}

func (r *Relationships) rootElement() *etree.Element {
	root, _ := r.part.root()
	return root
}

func (r *Relationships) elements() []*etree.Element {
	return r.rootElement().SelectElements("Relationship")
}

func parseRelsID(id string) (uint64, bool) {
	digits, ok := strings.CutPrefix(id, "rId")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}

func toRelationship(el *etree.Element) Relationship {
	uri := attr(el, "Type")
	return Relationship{
		ID:       attr(el, "Id"),
		Type:     ParseRelationshipType(uri),
		TypeURI:  uri,
		Target:   attr(el, "Target"),
		External: attr(el, "TargetMode") == "External",
	}
}

// Items returns all relationships in document order.
func (r *Relationships) Items() []Relationship {
	els := r.elements()
	items := make([]Relationship, 0, len(els))
	for _, el := range els {
		items = append(items, toRelationship(el))
	}
	return items
}

// ByID returns the relationship with the given id.
func (r *Relationships) ByID(id string) (Relationship, bool) {
	for _, el := range r.elements() {
		if attr(el, "Id") == id {
			return toRelationship(el), true
		}
	}
	return Relationship{}, false
}

// ByTarget returns the first relationship whose target resolves to the
// same package path as target. Both relative and absolute forms match.
func (r *Relationships) ByTarget(target string) (Relationship, bool) {
	want := r.resolve(target)
	for _, el := range r.elements() {
		if attr(el, "TargetMode") == "External" {
			if attr(el, "Target") == target {
				return toRelationship(el), true
			}
			continue
		}
		if r.resolve(attr(el, "Target")) == want {
			return toRelationship(el), true
		}
	}
	return Relationship{}, false
}

// resolve turns a target into an absolute package path without leading slash.
func (r *Relationships) resolve(target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(target)[1:]
	}
	return path.Clean(path.Join(path.Dir(r.owner), target))
}

// AbsoluteTarget returns the package path a relationship points to.
func (r *Relationships) AbsoluteTarget(rel Relationship) string {
	if rel.External {
		return rel.Target
	}
	return r.resolve(rel.Target)
}

// NewID returns the next free id. Ids are never reused within a session,
// even after the highest id was deleted.
func (r *Relationships) NewID() (string, error) {
	next := r.highWater
	for _, el := range r.elements() {
		id := attr(el, "Id")
		n, ok := parseRelsID(id)
		if !ok {
			return "", fmt.Errorf("%w: relationship id %q in %s is not of the form rId<number>", ErrInput, id, r.part.path)
		}
		if n > next {
			next = n
		}
	}
	return "rId" + strconv.FormatUint(next+1, 10), nil
}

// Add appends a relationship and returns it.
func (r *Relationships) Add(t RelationshipType, target string) (Relationship, error) {
	uri, err := t.URI()
	if err != nil {
		return Relationship{}, err
	}
	id, err := r.NewID()
	if err != nil {
		return Relationship{}, err
	}
	n, _ := parseRelsID(id)
	r.highWater = n

	el := etree.NewElement("Relationship")
	el.CreateAttr("Id", id)
	el.CreateAttr("Type", uri)
	el.CreateAttr("Target", target)
	if t.external() {
		el.CreateAttr("TargetMode", "External")
	}
	appendElement(r.rootElement(), el)
	return toRelationship(el), nil
}

// Delete removes the relationship with the given id. Remaining ids are
// not renumbered.
func (r *Relationships) Delete(id string) {
	for _, el := range r.elements() {
		if attr(el, "Id") == id {
			removeElement(el)
			return
		}
	}
}

// relativeTarget computes target relative to the folder of owner, the form
// Excel writes into .rels files.
func relativeTarget(owner, target string) string {
	from := strings.Split(path.Dir(owner), "/")
	if from[0] == "." {
		from = nil
	}
	to := strings.Split(target, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var b strings.Builder
	for j := i; j < len(from); j++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[i:], "/"))
	return b.String()
}
