package xlgraph

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAppProperties_SetProperty(t *testing.T) {
	doc := newTestDocument(t)
	app := doc.AppProperties()

	tests := []struct {
		name, value string
		err         error
	}{
		{"Company", "Acme", nil},
		{"AppVersion", "16.0300", nil},
		{"AppVersion", "1.2.3", ErrProperty},
		{"DocSecurity", "4", nil},
		{"DocSecurity", "3", ErrProperty},
		{"ScaleCrop", "yes", ErrProperty},
		{"TotalTime", "-1", ErrProperty},
		{"TotalTime", "12", nil},
		{"Colour", "red", ErrInput},
	}
	for _, tt := range tests {
		err := app.SetProperty(tt.name, tt.value)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, "%s=%s", tt.name, tt.value)
			continue
		}
		require.NoError(t, err, "%s=%s", tt.name, tt.value)
		got, ok := app.Property(tt.name)
		require.True(t, ok)
		assert.Equal(t, tt.value, got)
	}

	app.DeleteProperty("Company")
	_, ok := app.Property("Company")
	assert.False(t, ok)
}

func TestCoreProperties_SetProperty(t *testing.T) {
	doc := newTestDocument(t)
	core := doc.CoreProperties()

	require.NoError(t, core.SetProperty("dc:title", "Quarterly"))
	got, ok := core.Property("dc:title")
	require.True(t, ok)
	assert.Equal(t, "Quarterly", got)

	assert.ErrorIs(t, core.SetProperty("dcterms:created", "yesterday"), ErrProperty)
	assert.ErrorIs(t, core.SetProperty("dc:colour", "red"), ErrInput)

	require.NoError(t, core.SetModified(time.Date(2024, time.March, 5, 8, 30, 0, 0, time.UTC)))
	got, _ = core.Property("dcterms:modified")
	assert.Equal(t, "2024-03-05T08:30:00Z", got)
	root, err := core.part.root()
	require.NoError(t, err)
	assert.Equal(t, "dcterms:W3CDTF", attr(root.SelectElement("dcterms:modified"), "xsi:type"))

	core.DeleteProperty("dc:title")
	_, ok = core.Property("dc:title")
	assert.False(t, ok)
}

func TestAppProperties_KeepsOtherCategories(t *testing.T) {
	doc := newTestDocument(t)
	app := doc.AppProperties()
	hp := app.vector("HeadingPairs")
	hp.CreateElement("vt:variant").CreateElement("vt:lpstr").SetText("Named Ranges")
	hp.CreateElement("vt:variant").CreateElement("vt:i4").SetText("1")
	app.vector("TitlesOfParts").CreateElement("vt:lpstr").SetText("Print_Area")

	_, err := doc.Workbook().AddWorksheet("Two")
	require.NoError(t, err)

	assert.Equal(t, []HeadingPair{{Name: "Worksheets", Count: 2}, {Name: "Named Ranges", Count: 1}}, app.HeadingPairs())
	assert.Equal(t, []string{"Sheet1", "Two", "Print_Area"}, app.Titles())
	assert.Equal(t, []string{"Sheet1", "Two"}, app.SheetNames())
	assert.Equal(t, "4", attr(hp, "size"))
	assert.Equal(t, "3", attr(app.vector("TitlesOfParts"), "size"))
}

func TestProperties_ExcelizeReadsThem(t *testing.T) {
	doc := newTestDocument(t)
	require.NoError(t, doc.CoreProperties().SetProperty("dc:title", "Budget"))
	require.NoError(t, doc.AppProperties().SetProperty("Company", "Acme"))

	path := filepath.Join(t.TempDir(), "props.xlsx")
	require.NoError(t, doc.SaveAs(path))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	core, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "Budget", core.Title)
	assert.Equal(t, "xlgraph", core.Creator)
	app, err := f.GetAppProps()
	require.NoError(t, err)
	assert.Equal(t, "Acme", app.Company)
}
