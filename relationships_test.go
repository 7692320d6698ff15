package xlgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRelationshipType_Parse(t *testing.T) {
	tests := []struct {
		uri  string
		want RelationshipType
	}{
		{"http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet", RelationshipWorksheet},
		{"http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties", RelationshipCoreProperties},
		{"http://purl.oclc.org/ooxml/officeDocument/relationships/worksheet", RelationshipWorksheet},
		{"http://schemas.microsoft.com/office/2011/relationships/chartStyle", RelationshipChartStyle},
		{"http://example.com/custom", RelationshipUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRelationshipType(tt.uri), tt.uri)
	}

	uri, err := RelationshipTable.URI()
	require.NoError(t, err)
	assert.Equal(t, RelationshipTable, ParseRelationshipType(uri))
	_, err = RelationshipUnknown.URI()
	assert.ErrorIs(t, err, ErrInternal)
}

func TestRelationships_IDsAreNotReused(t *testing.T) {
	doc := newTestDocument(t)
	rels := doc.WorkbookRelationships()

	first, err := rels.Add(RelationshipWorksheet, "worksheets/sheet9.xml")
	require.NoError(t, err)
	second, err := rels.Add(RelationshipWorksheet, "worksheets/sheet10.xml")
	require.NoError(t, err)

	rels.Delete(second.ID)
	next, err := rels.NewID()
	require.NoError(t, err)
	assert.NotEqual(t, second.ID, next)
	assert.NotEqual(t, first.ID, next)

	got, ok := rels.ByID(first.ID)
	require.True(t, ok)
	assert.Equal(t, "xl/worksheets/sheet9.xml", rels.AbsoluteTarget(got))
	_, ok = rels.ByTarget("/xl/worksheets/sheet9.xml")
	assert.True(t, ok, "absolute targets resolve to the same part")
	_, ok = rels.ByID(second.ID)
	assert.False(t, ok)
}

func TestRelationships_RejectsMalformedIDs(t *testing.T) {
	doc := newTestDocument(t)
	rels := doc.WorkbookRelationships()
	el := rels.rootElement().CreateElement("Relationship")
	el.CreateAttr("Id", "sheetRel")

	_, err := rels.NewID()
	assert.ErrorIs(t, err, ErrInput)
}

func TestRelativeTarget(t *testing.T) {
	tests := []struct {
		owner, target, want string
	}{
		{"xl/workbook.xml", "xl/worksheets/sheet1.xml", "worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/tables/table1.xml", "../tables/table1.xml"},
		{"", "xl/workbook.xml", "xl/workbook.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet2.xml", "sheet2.xml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeTarget(tt.owner, tt.target), tt.owner+" -> "+tt.target)
	}
}

func TestContentTypes(t *testing.T) {
	doc := newTestDocument(t)
	ct := doc.ContentTypes()

	item, ok := ct.TypeOf("/xl/workbook.xml")
	require.True(t, ok)
	assert.Equal(t, ContentWorkbook, item.Type)
	assert.Equal(t, "workbook", item.Type.String())

	require.NoError(t, ct.AddOverride("xl/extra.xml", ContentStyles))
	require.NoError(t, ct.AddOverride("/xl/extra.xml", ContentTable))
	n := 0
	for _, it := range ct.Items() {
		if it.Path == "xl/extra.xml" {
			n++
			assert.Equal(t, ContentTable, it.Type)
		}
	}
	assert.Equal(t, 1, n, "a second override for the same path replaces the first")

	ct.DeleteOverride("xl/extra.xml")
	_, ok = ct.TypeOf("xl/extra.xml")
	assert.False(t, ok)

	assert.ErrorIs(t, ct.AddOverride("xl/x.xml", ContentUnknown), ErrInternal)
	assert.Equal(t, ContentUnknown, ParseContentType("application/x-made-up"))
}

func TestSharedStrings(t *testing.T) {
	doc := newTestDocument(t)
	ss := doc.SharedStrings()

	a, err := ss.Append("alpha")
	require.NoError(t, err)
	b, err := ss.Append(" beta ")
	require.NoError(t, err)
	again, err := ss.Append("alpha")
	require.NoError(t, err)
	assert.Equal(t, a, again)
	assert.Equal(t, 2, ss.Count())

	root, err := ss.part.root()
	require.NoError(t, err)
	assert.Equal(t, "2", attr(root, "uniqueCount"))
	assert.Equal(t, "preserve", attr(ss.nodes[b].SelectElement("t"), "xml:space"))

	require.NoError(t, ss.Clear(a))
	s, err := ss.Get(a)
	require.NoError(t, err)
	assert.Equal(t, "", s)
	s, err = ss.Get(b)
	require.NoError(t, err)
	assert.Equal(t, " beta ", s, "clearing keeps every other index stable")
	_, ok := ss.Index("alpha")
	assert.False(t, ok)
	assert.Equal(t, 2, ss.Count())

	_, err = ss.Get(2)
	assert.ErrorIs(t, err, ErrInput)
	_, err = ss.Get(-1)
	assert.ErrorIs(t, err, ErrInput)
	assert.ErrorIs(t, ss.Clear(5), ErrInput)
}

func TestSharedStrings_RichText(t *testing.T) {
	path := writeExcelizeFile(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellRichText("Sheet1", "A1", []excelize.RichTextRun{
			{Text: "bold "},
			{Text: "plain"},
		}))
	})
	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()
	assert.Equal(t, "bold plain", mustCell(t, mustWorksheet(t, doc, "Sheet1"), "A1").Value())
}
