package xlgraph

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/beevik/etree"
)

// Heading pair categories maintained by the document.
const (
	headingWorksheets = "Worksheets"
	headingCharts     = "Charts"
)

// HeadingPair is one category of docProps/app.xml TitlesOfParts.
type HeadingPair struct {
	Name  string
	Count int
}

// AppProperties wraps docProps/app.xml. The sheet title list and heading
// pairs are kept in sync with workbook.xml by the document commands.
type AppProperties struct {
	part *Part
}

func newAppProperties(p *Part) (*AppProperties, error) {
	if _, err := p.root(); err != nil {
		return nil, err
	}
	return &AppProperties{part: p}, nil
}

func (a *AppProperties) rootElement() *etree.Element {
	root, _ := a.part.root()
	return root
}

func (a *AppProperties) vector(container string) *etree.Element {
	c := a.rootElement().SelectElement(container)
	if c == nil {
		return nil
	}
	return c.SelectElement("vt:vector")
}

// HeadingPairs returns the categories in document order.
func (a *AppProperties) HeadingPairs() []HeadingPair {
	vec := a.vector("HeadingPairs")
	if vec == nil {
		return nil
	}
	variants := vec.SelectElements("vt:variant")
	var pairs []HeadingPair
	for i := 0; i+1 < len(variants); i += 2 {
		name := variants[i].SelectElement("vt:lpstr")
		count := variants[i+1].SelectElement("vt:i4")
		if name == nil || count == nil {
			continue
		}
		n, _ := strconv.Atoi(count.Text())
		pairs = append(pairs, HeadingPair{Name: name.Text(), Count: n})
	}
	return pairs
}

// Titles returns every TitlesOfParts entry.
func (a *AppProperties) Titles() []string {
	vec := a.vector("TitlesOfParts")
	if vec == nil {
		return nil
	}
	var titles []string
	for _, el := range vec.SelectElements("vt:lpstr") {
		titles = append(titles, el.Text())
	}
	return titles
}

// SheetNames returns the titles listed under the worksheet and chart categories.
func (a *AppProperties) SheetNames() []string {
	titles := a.Titles()
	var names []string
	pos := 0
	for _, hp := range a.HeadingPairs() {
		end := min(pos+hp.Count, len(titles))
		if hp.Name == headingWorksheets || hp.Name == headingCharts {
			names = append(names, titles[pos:end]...)
		}
		pos = end
	}
	return names
}

// SetSheetName renames one sheet title.
func (a *AppProperties) SetSheetName(oldName, newName string) error {
	el := a.titleNode(oldName)
	if el == nil {
		return fmt.Errorf("%w: app properties list no sheet %q", ErrInternal, oldName)
	}
	el.SetText(newName)
	return nil
}

func (a *AppProperties) titleNode(name string) *etree.Element {
	vec := a.vector("TitlesOfParts")
	if vec == nil {
		return nil
	}
	for _, el := range vec.SelectElements("vt:lpstr") {
		if el.Text() == name {
			return el
		}
	}
	return nil
}

// ensureSheetLists creates HeadingPairs and TitlesOfParts when a producer
// left them out, and brings them in line with the workbook.
func (a *AppProperties) ensureSheetLists(worksheets, chartsheets []string) error {
	root := a.rootElement()
	for _, container := range []string{"HeadingPairs", "TitlesOfParts"} {
		c := root.SelectElement(container)
		if c == nil {
			c = etree.NewElement(container)
			appendElement(root, c)
		}
		if c.SelectElement("vt:vector") == nil {
			vec := c.CreateElement("vt:vector")
			if container == "HeadingPairs" {
				vec.CreateAttr("baseType", "variant")
			} else {
				vec.CreateAttr("baseType", "lpstr")
			}
			vec.CreateAttr("size", "0")
		}
	}
	if root.SelectAttr("xmlns:vt") == nil {
		root.CreateAttr("xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes")
	}
	a.syncSheets(worksheets, chartsheets)
	return nil
}

// syncSheets rewrites the worksheet and chart categories from the given
// name lists, keeping any other category (e.g. named ranges) in place.
func (a *AppProperties) syncSheets(worksheets, chartsheets []string) {
	hpVec, titleVec := a.vector("HeadingPairs"), a.vector("TitlesOfParts")
	if hpVec == nil || titleVec == nil {
		return
	}
	type block struct {
		name   string
		titles []string
	}
	titles := a.Titles()
	var blocks []block
	pos := 0
	seenWS, seenCS := false, false
	for _, hp := range a.HeadingPairs() {
		end := min(pos+hp.Count, len(titles))
		b := block{name: hp.Name, titles: titles[pos:end]}
		pos = end
		switch hp.Name {
		case headingWorksheets:
			b.titles, seenWS = worksheets, true
		case headingCharts:
			b.titles, seenCS = chartsheets, true
		}
		blocks = append(blocks, b)
	}
	if !seenWS {
		blocks = append([]block{{name: headingWorksheets, titles: worksheets}}, blocks...)
	}
	if !seenCS {
		at := 0
		for i, b := range blocks {
			if b.name == headingWorksheets {
				at = i + 1
			}
		}
		blocks = append(blocks[:at], append([]block{{name: headingCharts, titles: chartsheets}}, blocks[at:]...)...)
	}

	clearChildren(hpVec)
	clearChildren(titleVec)
	pairs, total := 0, 0
	for _, b := range blocks {
		if len(b.titles) == 0 && (b.name == headingWorksheets || b.name == headingCharts) {
			continue
		}
		hpVec.CreateElement("vt:variant").CreateElement("vt:lpstr").SetText(b.name)
		hpVec.CreateElement("vt:variant").CreateElement("vt:i4").SetText(strconv.Itoa(len(b.titles)))
		pairs++
		for _, t := range b.titles {
			titleVec.CreateElement("vt:lpstr").SetText(t)
			total++
		}
	}
	setAttrUint(hpVec, "size", uint64(pairs*2))
	setAttrUint(titleVec, "size", uint64(total))
}

func clearChildren(el *etree.Element) {
	for len(el.Child) > 0 {
		el.RemoveChildAt(len(el.Child) - 1)
	}
}

var (
	appVersionRegex = regexp.MustCompile(`^[0-9]{1,2}\.[0-9]{1,5}$`)
	appProperties   = map[string]func(string) error{
		"Application":       nil,
		"AppVersion":        validateAppVersion,
		"Company":           nil,
		"DocSecurity":       validateDocSecurity,
		"HyperlinkBase":     nil,
		"HyperlinksChanged": validateXSDBool,
		"LinksUpToDate":     validateXSDBool,
		"Manager":           nil,
		"ScaleCrop":         validateXSDBool,
		"SharedDoc":         validateXSDBool,
		"Template":          nil,
		"TotalTime":         validateUint,
	}
)

func validateAppVersion(v string) error {
	if !appVersionRegex.MatchString(v) {
		return fmt.Errorf("%w: AppVersion %q must be of the form XX.YYYYY", ErrProperty, v)
	}
	return nil
}

func validateDocSecurity(v string) error {
	switch v {
	case "0", "1", "2", "4", "8":
		return nil
	}
	return fmt.Errorf("%w: DocSecurity %q must be one of 0, 1, 2, 4, 8", ErrProperty, v)
}

func validateXSDBool(v string) error {
	if v != "true" && v != "false" {
		return fmt.Errorf("%w: %q is not true or false", ErrProperty, v)
	}
	return nil
}

func validateUint(v string) error {
	if _, err := strconv.ParseUint(v, 10, 32); err != nil {
		return fmt.Errorf("%w: %q is not a non-negative integer", ErrProperty, v)
	}
	return nil
}

// Property returns the text of a top-level app property.
func (a *AppProperties) Property(name string) (string, bool) {
	el := a.rootElement().SelectElement(name)
	if el == nil {
		return "", false
	}
	return el.Text(), true
}

// SetProperty sets a top-level app property after validating its format.
func (a *AppProperties) SetProperty(name, value string) error {
	validate, known := appProperties[name]
	if !known {
		return fmt.Errorf("%w: unknown app property %q", ErrInput, name)
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	root := a.rootElement()
	el := root.SelectElement(name)
	if el == nil {
		el = etree.NewElement(name)
		appendElement(root, el)
	}
	el.SetText(value)
	return nil
}

// DeleteProperty removes a top-level app property.
func (a *AppProperties) DeleteProperty(name string) {
	if el := a.rootElement().SelectElement(name); el != nil {
		removeElement(el)
	}
}

// CoreProperties wraps docProps/core.xml.
type CoreProperties struct {
	part *Part
}

var coreProperties = map[string]bool{
	"cp:category": false, "cp:contentStatus": false, "dcterms:created": true,
	"dc:creator": false, "dc:description": false, "dc:identifier": false,
	"cp:keywords": false, "dc:language": false, "cp:lastModifiedBy": false,
	"cp:lastPrinted": true, "dcterms:modified": true, "cp:revision": false,
	"dc:subject": false, "dc:title": false, "cp:version": false,
}

func newCoreProperties(p *Part) (*CoreProperties, error) {
	if _, err := p.root(); err != nil {
		return nil, err
	}
	return &CoreProperties{part: p}, nil
}

// Property returns a core property by qualified name, e.g. "dc:title".
func (c *CoreProperties) Property(name string) (string, bool) {
	root, _ := c.part.root()
	el := root.SelectElement(name)
	if el == nil {
		return "", false
	}
	return el.Text(), true
}

// SetProperty sets a core property. Date properties must be RFC 3339.
func (c *CoreProperties) SetProperty(name, value string) error {
	isDate, known := coreProperties[name]
	if !known {
		return fmt.Errorf("%w: unknown core property %q", ErrInput, name)
	}
	if isDate {
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return fmt.Errorf("%w: %s value %q is not an RFC 3339 timestamp", ErrProperty, name, value)
		}
	}
	root, _ := c.part.root()
	el := root.SelectElement(name)
	if el == nil {
		el = etree.NewElement(name)
		if isDate && name != "cp:lastPrinted" {
			el.CreateAttr("xsi:type", "dcterms:W3CDTF")
		}
		appendElement(root, el)
	}
	el.SetText(value)
	return nil
}

// SetModified stamps dcterms:modified with t.
func (c *CoreProperties) SetModified(t time.Time) error {
	return c.SetProperty("dcterms:modified", t.UTC().Format(time.RFC3339))
}

// DeleteProperty removes a core property.
func (c *CoreProperties) DeleteProperty(name string) {
	root, _ := c.part.root()
	if el := root.SelectElement(name); el != nil {
		removeElement(el)
	}
}
