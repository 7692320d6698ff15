package xlgraph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreate_EmptyWorkbook(t *testing.T) {
	doc := newTestDocument(t)

	assert.Equal(t, []string{"Sheet1"}, doc.Workbook().SheetNames())
	assert.Equal(t, 1, doc.Workbook().WorksheetCount())
	assert.Equal(t, 0, doc.SharedStrings().Count())
	assert.NotNil(t, doc.AppProperties())
	assert.NotNil(t, doc.CoreProperties())
	assert.Empty(t, doc.Validate())

	wb, err := doc.Part("xl/workbook.xml")
	require.NoError(t, err)
	assert.Equal(t, ContentWorkbook, wb.Type())
	assert.Contains(t, wb.Children(), "xl/worksheets/sheet1.xml")
}

func TestCreate_DefaultSheetName(t *testing.T) {
	doc := newTestDocument(t, WithDefaultSheetName("Data"))
	assert.Equal(t, []string{"Data"}, doc.Workbook().SheetNames())
	assert.Equal(t, []string{"Data"}, doc.AppProperties().SheetNames())
}

func TestCreate_InvalidInput(t *testing.T) {
	_, err := Create("")
	assert.ErrorIs(t, err, ErrInput)

	_, err = Create(filepath.Join(t.TempDir(), "x.xlsx"), WithDefaultSheetName("bad/name"))
	assert.ErrorIs(t, err, ErrInput)

	_, err = Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestDocument_HelloRoundTrip(t *testing.T) {
	doc := newTestDocument(t)
	ws, err := doc.Workbook().AddWorksheet("Sheet2")
	require.NoError(t, err)
	require.NoError(t, mustCell(t, ws, "B2").SetValue("hello"))

	path := filepath.Join(t.TempDir(), "hello.xlsx")
	require.NoError(t, doc.SaveAs(path))
	assert.Equal(t, path, doc.Path())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, []string{"Sheet1", "Sheet2"}, again.Workbook().SheetNames())
	assert.Equal(t, "hello", mustCell(t, mustWorksheet(t, again, "Sheet2"), "B2").Value())
	assert.Equal(t, "B2", mustWorksheet(t, again, "Sheet2").Dimension())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Sheet2", "B2")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.Equal(t, []string{"Sheet1", "Sheet2"}, f.GetSheetList())
}

func TestDocument_OpenExcelizeFile(t *testing.T) {
	path := writeExcelizeFile(t, func(f *excelize.File) {
		_, err := f.NewSheet("Data")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Data", "A1", 42))
		require.NoError(t, f.SetCellValue("Data", "B1", "text"))
		require.NoError(t, f.SetCellValue("Data", "C1", true))
		require.NoError(t, f.SetCellFormula("Data", "D1", "A1*2"))
	})

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, []string{"Sheet1", "Data"}, doc.Workbook().SheetNames())
	assert.ElementsMatch(t, []string{"Sheet1", "Data"}, doc.AppProperties().SheetNames())
	ws := mustWorksheet(t, doc, "Data")
	assert.Equal(t, 42.0, mustCell(t, ws, "A1").Value())
	assert.Equal(t, CellNumber, mustCell(t, ws, "A1").Type())
	assert.Equal(t, "text", mustCell(t, ws, "B1").Value())
	assert.Equal(t, true, mustCell(t, ws, "C1").Value())
	assert.Equal(t, "A1*2", mustCell(t, ws, "D1").Formula())
}

func TestDocument_ExcelizeReadsEdits(t *testing.T) {
	path := writeExcelizeFile(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "keep"))
	})
	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	ws := mustWorksheet(t, doc, "Sheet1")
	require.NoError(t, mustCell(t, ws, "A2").SetValue(3.5))
	require.NoError(t, mustCell(t, ws, "A3").SetFormula("=A2*2"))
	require.NoError(t, ws.SetName("Renamed"))
	require.NoError(t, doc.Save())
	require.NoError(t, doc.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Renamed"}, f.GetSheetList())
	v, err := f.GetCellValue("Renamed", "A1")
	require.NoError(t, err)
	assert.Equal(t, "keep", v)
	v, err = f.GetCellValue("Renamed", "A2")
	require.NoError(t, err)
	assert.Equal(t, "3.5", v)
	formula, err := f.GetCellFormula("Renamed", "A3")
	require.NoError(t, err)
	assert.Equal(t, "A2*2", formula)
}

func TestDocument_InlineStrings(t *testing.T) {
	doc := newTestDocument(t, WithInlineStrings(true))
	ws := mustWorksheet(t, doc, "Sheet1")
	require.NoError(t, mustCell(t, ws, "A1").SetValue("  padded "))
	assert.Equal(t, 0, doc.SharedStrings().Count())

	again := reopen(t, doc)
	assert.Equal(t, "  padded ", mustCell(t, mustWorksheet(t, again, "Sheet1"), "A1").Value())
}

func TestDocument_SaveAfterClose(t *testing.T) {
	doc := newTestDocument(t)
	require.NoError(t, doc.Close())
	assert.ErrorIs(t, doc.Save(), ErrInput)
	assert.NoError(t, doc.Close())
}

func TestDocument_RecalculateOnOpen(t *testing.T) {
	doc := newTestDocument(t, WithRecalculateOnOpen(true))
	again := reopen(t, doc)
	root, err := again.Workbook().part.root()
	require.NoError(t, err)
	assert.Equal(t, "1", attr(root.SelectElement("calcPr"), "fullCalcOnLoad"))
}

func TestDocument_CalcChainDroppedOnSave(t *testing.T) {
	doc := newTestDocument(t)
	rel, err := doc.WorkbookRelationships().Add(RelationshipCalculationChain, "calcChain.xml")
	require.NoError(t, err)
	require.NoError(t, doc.ContentTypes().AddOverride("xl/calcChain.xml", ContentCalculationChain))
	p := newPart("xl/calcChain.xml", rel.ID, ContentCalculationChain,
		xmlDecl+`<calcChain xmlns="`+mainNamespace+`"><c r="A1" i="1"/></calcChain>`)
	doc.addPart(p)

	again := reopen(t, doc)
	_, err = again.Part("xl/calcChain.xml")
	assert.ErrorIs(t, err, ErrInternal)
	_, ok := again.WorkbookRelationships().ByTarget("calcChain.xml")
	assert.False(t, ok)
	_, ok = again.ContentTypes().TypeOf("xl/calcChain.xml")
	assert.False(t, ok)
}

func TestDocument_PartByName(t *testing.T) {
	doc := newTestDocument(t)
	p := doc.PartByName("Sheet1")
	require.NotNil(t, p)
	assert.Equal(t, "xl/worksheets/sheet1.xml", p.Path())
	assert.Equal(t, "rId1", p.RelsID())
	assert.Equal(t, "xl/workbook.xml", p.Parent())
	assert.Nil(t, doc.PartByName("nope"))
}
