package xlgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownCommand struct{}

func (unknownCommand) Name() string { return "unknown" }

type unknownQuery struct{}

func (*unknownQuery) Name() string { return "unknown" }

func TestExecCommand_Dispatch(t *testing.T) {
	doc := newTestDocument(t)

	assert.ErrorIs(t, doc.ExecCommand(unknownCommand{}), ErrInternal)

	err := doc.ExecCommand(SetSheetName{SheetID: "rId99", NewName: "x"})
	require.ErrorIs(t, err, ErrInternal)
	assert.Contains(t, err.Error(), "setSheetName: ")

	err = doc.ExecCommand(SetSheetName{SheetID: "rId1", OldName: "Stale", NewName: "x"})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, []string{"Sheet1"}, doc.Workbook().SheetNames())

	require.NoError(t, doc.ExecCommand(AddWorksheet{SheetName: "Cmd"}))
	assert.True(t, doc.Workbook().WorksheetExists("Cmd"))
}

func TestExecQuery_SheetLookups(t *testing.T) {
	doc := newTestDocument(t)
	_, err := doc.Workbook().AddChartsheet("Chart")
	require.NoError(t, err)

	byName := &QuerySheetFromName{SheetName: "Chart"}
	require.NoError(t, doc.ExecQuery(byName))
	assert.Equal(t, "xl/chartsheets/sheet1.xml", byName.Part.Path())
	id := byName.Part.RelsID()

	name := &QuerySheetName{SheetID: id}
	require.NoError(t, doc.ExecQuery(name))
	assert.Equal(t, "Chart", name.SheetName)

	kind := &QuerySheetType{SheetID: id}
	require.NoError(t, doc.ExecQuery(kind))
	assert.Equal(t, ContentChartsheet, kind.Type)

	idx := &QuerySheetIndex{SheetID: id}
	require.NoError(t, doc.ExecQuery(idx))
	assert.Equal(t, 2, idx.Index)

	active := &QuerySheetIsActive{SheetID: id}
	require.NoError(t, doc.ExecQuery(active))
	assert.False(t, active.Active)

	relsID := &QuerySheetRelsID{SheetPath: "xl/chartsheets/sheet1.xml"}
	require.NoError(t, doc.ExecQuery(relsID))
	assert.Equal(t, id, relsID.RelsID)

	target := &QuerySheetRelsTarget{SheetID: id}
	require.NoError(t, doc.ExecQuery(target))
	assert.Equal(t, "xl/chartsheets/sheet1.xml", target.Target)

	assert.ErrorIs(t, doc.ExecQuery(&QuerySheetFromName{SheetName: "none"}), ErrInternal)
	assert.ErrorIs(t, doc.ExecQuery(&QuerySheetName{SheetID: "rId99"}), ErrInternal)
	assert.ErrorIs(t, doc.ExecQuery(&unknownQuery{}), ErrInternal)
}

func TestExecQuery_Parts(t *testing.T) {
	doc, _, _ := salesTable(t)

	ss := &QuerySharedStrings{}
	require.NoError(t, doc.ExecQuery(ss))
	assert.Same(t, doc.SharedStrings(), ss.Strings)

	xml := &QueryXmlData{Path: "/xl/workbook.xml"}
	require.NoError(t, doc.ExecQuery(xml))
	assert.Equal(t, ContentWorkbook, xml.Part.Type())

	tbl := &QueryTableFromName{TableName: "sales"}
	require.NoError(t, doc.ExecQuery(tbl))
	assert.Equal(t, "xl/tables/table1.xml", tbl.Part.Path())
	err := doc.ExecQuery(&QueryTableFromName{TableName: "nope"})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Contains(t, err.Error(), `"nope"`)
}
