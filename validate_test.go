package xlgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// messages returns the issue messages for easier matching.
func messages(issues []ValidationIssue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Message)
	}
	return out
}

func TestValidate_MissingContentType(t *testing.T) {
	doc := newTestDocument(t)
	doc.ContentTypes().DeleteOverride("xl/worksheets/sheet1.xml")

	issues := doc.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, "[ERROR] [Content_Types].xml: no content type declared for xl/worksheets/sheet1.xml", issues[0].String())
}

func TestValidate_DanglingRelationship(t *testing.T) {
	doc := newTestDocument(t)
	rel, err := doc.WorkbookRelationships().Add(RelationshipTheme, "theme/theme9.xml")
	require.NoError(t, err)

	issues := doc.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, "xl/_rels/workbook.xml.rels", issues[0].Path)
	assert.Equal(t, "relationship "+rel.ID+" targets missing part xl/theme/theme9.xml", issues[0].Message)
}

func TestValidate_SheetState(t *testing.T) {
	doc := newTestDocument(t)
	wb := doc.Workbook()
	wb.sheetElements()[0].CreateAttr("state", "hidden")

	issues := doc.Validate()
	assert.Equal(t, []string{"no visible sheet", `active sheet "Sheet1" is hidden`}, messages(issues))
	assert.Equal(t, SeverityWarning, issues[1].Severity)

	wb.sheetElements()[0].RemoveAttr("state")
	wb.setActiveTab(3)
	assert.Equal(t, []string{"activeTab 3 is past the last sheet"}, messages(doc.Validate()))
}

func TestValidate_SheetWithoutRelationship(t *testing.T) {
	doc := newTestDocument(t)
	_, err := doc.Workbook().AddWorksheet("Two")
	require.NoError(t, err)
	node := doc.Workbook().sheetNodeByName("Two")
	node.CreateAttr("r:id", "rId99")

	assert.Contains(t, messages(doc.Validate()), `sheet "Two" references unknown relationship "rId99"`)
}

func TestValidate_AppTitles(t *testing.T) {
	doc := newTestDocument(t)
	require.NoError(t, doc.AppProperties().SetSheetName("Sheet1", "Ghost"))

	issues := doc.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, "docProps/app.xml", issues[0].Path)
	assert.Equal(t, "sheet titles [Ghost] do not match workbook [Sheet1]", issues[0].Message)
}

func TestValidate_Tables(t *testing.T) {
	doc, ws, tbl := salesTable(t)
	second, err := ws.AddTable("Second", "E1:F3")
	require.NoError(t, err)
	require.Empty(t, doc.Validate())

	second.root().CreateAttr("id", "1")
	cols := tbl.root().SelectElement("tableColumns")
	cols.RemoveChild(cols.SelectElements("tableColumn")[2])

	msgs := messages(doc.Validate())
	require.Len(t, msgs, 2)
	assert.Equal(t, `table "Sales" has 2 columns but ref A1:C4 spans 3`, msgs[0])
	assert.Equal(t, "table id 1 is also used by xl/tables/table1.xml", msgs[1])
}

func TestDescribe(t *testing.T) {
	doc := newTestDocument(t)
	_, err := doc.Workbook().AddWorksheet("Data")
	require.NoError(t, err)

	out := doc.Describe()
	assert.True(t, strings.HasPrefix(out, "Document: "+doc.Path()+"\n"))
	assert.Contains(t, out, "Sheets: Sheet1, Data\n")
	assert.Contains(t, out, "\nxl/workbook.xml [workbook]")
	assert.Contains(t, out, `  xl/worksheets/sheet2.xml [worksheet] id="rId`)
	assert.Contains(t, out, `name="Data"`)

	wb, err := doc.Part("xl/workbook.xml")
	require.NoError(t, err)
	wb.addChild("xl/ghost.xml")
	assert.Contains(t, doc.Describe(), "  xl/ghost.xml [missing]\n")
}
