package xlgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("00FF00")
	require.NoError(t, err)
	assert.Equal(t, Color{A: 0xFF, G: 0xFF}, c)
	assert.Equal(t, "FF00FF00", c.Hex())

	c, err = ParseColor("80112233")
	require.NoError(t, err)
	assert.Equal(t, Color{A: 0x80, R: 0x11, G: 0x22, B: 0x33}, c)

	for _, bad := range []string{"", "FFF", "GG112233", "FF1122334"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInput, bad)
	}
}

func TestSheet_TabColor(t *testing.T) {
	doc := newTestDocument(t)
	s, err := doc.Workbook().Sheet("Sheet1")
	require.NoError(t, err)

	_, ok := s.Color()
	assert.False(t, ok)
	s.SetColor(Color{A: 0xFF, R: 0xC0})
	got, ok := s.Color()
	require.True(t, ok)
	assert.Equal(t, "FFC00000", got.Hex())

	again := reopen(t, doc)
	s2, err := again.Workbook().Sheet("Sheet1")
	require.NoError(t, err)
	got, ok = s2.Color()
	require.True(t, ok)
	assert.Equal(t, "FFC00000", got.Hex())
}

func TestChartsheet(t *testing.T) {
	doc := newTestDocument(t)
	cs, err := doc.Workbook().AddChartsheet("Chart")
	require.NoError(t, err)

	assert.False(t, cs.HasDrawing())
	assert.True(t, cs.ZoomToFit())
	cs.SetZoomToFit(false)
	assert.False(t, cs.ZoomToFit())
	cs.SetColor(Color{A: 0xFF, B: 0xFF})
	assert.False(t, cs.IsSelected())

	_, err = doc.Workbook().Worksheet("Chart")
	assert.ErrorIs(t, err, ErrInput)

	again := reopen(t, doc)
	reopened, err := again.Workbook().Chartsheet("Chart")
	require.NoError(t, err)
	assert.False(t, reopened.ZoomToFit())
	c, ok := reopened.Color()
	require.True(t, ok)
	assert.Equal(t, "FF0000FF", c.Hex())
	assert.Empty(t, again.Validate())
}
