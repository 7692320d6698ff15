package xlgraph

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ContentType classifies a package part.
type ContentType int

const (
	ContentUnknown ContentType = iota
	ContentWorkbook
	ContentWorkbookMacroEnabled
	ContentWorksheet
	ContentChartsheet
	ContentExternalLink
	ContentTheme
	ContentStyles
	ContentSharedStrings
	ContentDrawing
	ContentChart
	ContentChartStyle
	ContentChartColorStyle
	ContentControlProperties
	ContentCalculationChain
	ContentVBAProject
	ContentCoreProperties
	ContentExtendedProperties
	ContentCustomProperties
	ContentComments
	ContentTable
	ContentVMLDrawing
	ContentRelationships
	ContentPackageTypes
)

const (
	mimeOfficeDocument = "application/vnd.openxmlformats-officedocument"
	mimePackage        = "application/vnd.openxmlformats-package"
	mimeExcel          = "application/vnd.ms-excel"
	mimeOffice         = "application/vnd.ms-office"
)

var contentTypeStrings = map[ContentType]string{
	ContentWorkbook:             mimeOfficeDocument + ".spreadsheetml.sheet.main+xml",
	ContentWorkbookMacroEnabled: mimeExcel + ".sheet.macroEnabled.main+xml",
	ContentWorksheet:            mimeOfficeDocument + ".spreadsheetml.worksheet+xml",
	ContentChartsheet:           mimeOfficeDocument + ".spreadsheetml.chartsheet+xml",
	ContentExternalLink:         mimeOfficeDocument + ".spreadsheetml.externalLink+xml",
	ContentTheme:                mimeOfficeDocument + ".theme+xml",
	ContentStyles:               mimeOfficeDocument + ".spreadsheetml.styles+xml",
	ContentSharedStrings:        mimeOfficeDocument + ".spreadsheetml.sharedStrings+xml",
	ContentDrawing:              mimeOfficeDocument + ".drawing+xml",
	ContentChart:                mimeOfficeDocument + ".drawingml.chart+xml",
	ContentChartStyle:           mimeOffice + ".chartstyle+xml",
	ContentChartColorStyle:      mimeOffice + ".chartcolorstyle+xml",
	ContentControlProperties:    mimeExcel + ".controlproperties+xml",
	ContentCalculationChain:     mimeOfficeDocument + ".spreadsheetml.calcChain+xml",
	ContentVBAProject:           mimeOffice + ".vbaProject",
	ContentCoreProperties:       mimePackage + ".core-properties+xml",
	ContentExtendedProperties:   mimeOfficeDocument + ".extended-properties+xml",
	ContentCustomProperties:     mimeOfficeDocument + ".custom-properties+xml",
	ContentComments:             mimeOfficeDocument + ".spreadsheetml.comments+xml",
	ContentTable:                mimeOfficeDocument + ".spreadsheetml.table+xml",
	ContentVMLDrawing:           mimeOfficeDocument + ".vmlDrawing",
	ContentRelationships:        mimePackage + ".relationships+xml",
}

var contentTypesByString = func() map[string]ContentType {
	m := make(map[string]ContentType, len(contentTypeStrings))
	for k, v := range contentTypeStrings {
		m[v] = k
	}
	return m
}()

// ParseContentType maps a MIME string to its ContentType; unrecognized
// strings map to ContentUnknown.
func ParseContentType(s string) ContentType {
	if t, ok := contentTypesByString[s]; ok {
		return t
	}
	return ContentUnknown
}

// MIME returns the content type string, or "" for ContentUnknown.
func (t ContentType) MIME() string { return contentTypeStrings[t] }

func (t ContentType) String() string {
	switch t {
	case ContentWorkbook, ContentWorkbookMacroEnabled:
		return "workbook"
	case ContentWorksheet:
		return "worksheet"
	case ContentChartsheet:
		return "chartsheet"
	case ContentSharedStrings:
		return "sharedStrings"
	case ContentStyles:
		return "styles"
	case ContentTable:
		return "table"
	case ContentCalculationChain:
		return "calcChain"
	case ContentCoreProperties:
		return "coreProperties"
	case ContentExtendedProperties:
		return "appProperties"
	case ContentRelationships:
		return "relationships"
	case ContentPackageTypes:
		return "contentTypes"
	case ContentUnknown:
		return "unknown"
	}
	s := contentTypeStrings[t]
	return s[strings.LastIndexAny(s, ".-")+1:]
}

// ContentItem is one Override entry.
type ContentItem struct {
	Path string // package path without leading slash
	Type ContentType
	MIME string // literal content type, kept for unknown types
}

// ContentTypes wraps [Content_Types].xml.
type ContentTypes struct {
	part *Part
}

func newContentTypes(p *Part) (*ContentTypes, error) {
	if _, err := p.root(); err != nil {
		return nil, err
	}
	return &ContentTypes{part: p}, nil
}

func (c *ContentTypes) types() *etree.Element {
	root, _ := c.part.root()
	return root
}

// Items returns every Override entry in document order.
func (c *ContentTypes) Items() []ContentItem {
	var items []ContentItem
	for _, el := range c.types().SelectElements("Override") {
		mime := attr(el, "ContentType")
		items = append(items, ContentItem{
			Path: strings.TrimPrefix(attr(el, "PartName"), "/"),
			Type: ParseContentType(mime),
			MIME: mime,
		})
	}
	return items
}

// TypeOf returns the declared content type of a path.
func (c *ContentTypes) TypeOf(partPath string) (ContentItem, bool) {
	if el := c.find(partPath); el != nil {
		mime := attr(el, "ContentType")
		return ContentItem{Path: strings.TrimPrefix(partPath, "/"), Type: ParseContentType(mime), MIME: mime}, true
	}
	return ContentItem{}, false
}

func (c *ContentTypes) find(partPath string) *etree.Element {
	want := "/" + strings.TrimPrefix(partPath, "/")
	for _, el := range c.types().SelectElements("Override") {
		if attr(el, "PartName") == want {
			return el
		}
	}
	return nil
}

// AddOverride declares the content type of a part. An existing entry for
// the same path is replaced.
func (c *ContentTypes) AddOverride(partPath string, t ContentType) error {
	mime := t.MIME()
	if mime == "" {
		return fmt.Errorf("%w: no content type string for %s", ErrInternal, partPath)
	}
	if el := c.find(partPath); el != nil {
		el.CreateAttr("ContentType", mime)
		return nil
	}
	el := etree.NewElement("Override")
	el.CreateAttr("PartName", "/"+strings.TrimPrefix(partPath, "/"))
	el.CreateAttr("ContentType", mime)
	appendElement(c.types(), el)
	return nil
}

// DeleteOverride removes the entry for a path, if present.
func (c *ContentTypes) DeleteOverride(partPath string) {
	if el := c.find(partPath); el != nil {
		removeElement(el)
	}
}
