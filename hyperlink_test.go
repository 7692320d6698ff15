package xlgraph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestHyperlink_AddAndReplace(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")

	require.NoError(t, ws.AddHyperlink(Hyperlink{
		Ref:     MustCellReference("A1"),
		URL:     "https://example.com/report",
		Display: "Report",
		Tooltip: "open the report",
	}))
	require.NoError(t, ws.AddHyperlink(Hyperlink{Ref: MustCellReference("B2"), Location: "Sheet1!C3"}))
	assert.Equal(t, "Report", mustCell(t, ws, "A1").Value())

	links, err := ws.Hyperlinks()
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "https://example.com/report", links[0].URL)
	assert.Equal(t, "open the report", links[0].Tooltip)
	assert.Equal(t, "Report", links[0].String())
	assert.Equal(t, "Sheet1!C3", links[1].Location)
	assert.Equal(t, "Sheet1!C3", links[1].String())

	rels, err := doc.relationshipsFor(ws.Part().Path(), false)
	require.NoError(t, err)
	rel, ok := rels.ByTarget("https://example.com/report")
	require.True(t, ok)
	assert.True(t, rel.External)
	assert.Equal(t, RelationshipHyperlink, rel.Type)

	// replacing the link drops its relationship
	require.NoError(t, ws.AddHyperlink(Hyperlink{Ref: MustCellReference("A1"), Location: "Sheet1!A9"}))
	_, ok = rels.ByTarget("https://example.com/report")
	assert.False(t, ok)
	links, err = ws.Hyperlinks()
	require.NoError(t, err)
	assert.Len(t, links, 2)
	assert.Empty(t, doc.Validate())
}

func TestHyperlink_Rejects(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")

	assert.ErrorIs(t, ws.AddHyperlink(Hyperlink{URL: "https://example.com"}), ErrInput)
	assert.ErrorIs(t, ws.AddHyperlink(Hyperlink{Ref: MustCellReference("A1")}), ErrInput)
	assert.ErrorIs(t, ws.AddHyperlink(Hyperlink{
		Ref: MustCellReference("A1"), URL: "https://example.com", Location: "Sheet1!A2",
	}), ErrInput)
	assert.ErrorIs(t, ws.DeleteHyperlink("1A"), ErrAddress)
	assert.NoError(t, ws.DeleteHyperlink("Z9"))
}

func TestHyperlink_Delete(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")
	require.NoError(t, ws.AddHyperlink(Hyperlink{Ref: MustCellReference("C3"), URL: "https://example.com"}))

	require.NoError(t, ws.DeleteHyperlink("C3"))
	links, err := ws.Hyperlinks()
	require.NoError(t, err)
	assert.Empty(t, links)
	assert.Nil(t, ws.root().SelectElement("hyperlinks"))
}

func TestHyperlink_ExcelizeReadsLink(t *testing.T) {
	doc := newTestDocument(t)
	ws := mustWorksheet(t, doc, "Sheet1")
	require.NoError(t, ws.AddHyperlink(Hyperlink{Ref: MustCellReference("A1"), URL: "https://example.com"}))
	require.NoError(t, ws.AddHyperlink(Hyperlink{Ref: MustCellReference("A2"), Location: "Sheet1!B5"}))

	path := filepath.Join(t.TempDir(), "links.xlsx")
	require.NoError(t, doc.SaveAs(path))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	ok, target, err := f.GetCellHyperLink("Sheet1", "A1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", target)
	ok, target, err = f.GetCellHyperLink("Sheet1", "A2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Sheet1!B5", target)
}
