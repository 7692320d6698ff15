package xlgraph

import (
	"archive/zip"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipArchive_RoundTrip(t *testing.T) {
	a := NewZipArchive()
	assert.False(t, a.IsOpen())
	assert.ErrorIs(t, a.AddEntry("x.xml", "<x/>"), ErrInternal)

	require.NoError(t, a.Open(""))
	require.NoError(t, a.AddEntry("b.xml", "<b/>"))
	require.NoError(t, a.AddEntry(contentTypesPath, "<Types/>"))
	require.NoError(t, a.AddEntry("gone.xml", "<g/>"))
	require.NoError(t, a.DeleteEntry("gone.xml"))
	require.NoError(t, a.DeleteEntry("never.xml"))
	assert.ErrorIs(t, a.Save(""), ErrInput)

	path := filepath.Join(t.TempDir(), "nested", "a.zip")
	require.NoError(t, a.Save(path))

	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	require.NoError(t, r.Close())
	assert.Equal(t, []string{contentTypesPath, "b.xml"}, names)

	b := NewZipArchive()
	require.NoError(t, b.Open(path))
	data, err := b.GetEntry("b.xml")
	require.NoError(t, err)
	assert.Equal(t, "<b/>", data)
	assert.False(t, b.HasEntry("gone.xml"))
	_, err = b.GetEntry("gone.xml")
	assert.ErrorIs(t, err, ErrInternal)

	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Save(""), ErrInternal)
}

func TestZipArchive_OpenMissing(t *testing.T) {
	err := NewZipArchive().Open(filepath.Join(t.TempDir(), "missing.zip"))
	assert.ErrorIs(t, err, ErrInternal)
}

// countingArchive records how often the document saves through it.
type countingArchive struct {
	Archive
	saves int
}

func (c *countingArchive) Save(path string) error {
	c.saves++
	return c.Archive.Save(path)
}

func TestWithArchive(t *testing.T) {
	var made []*countingArchive
	newArchive := func() Archive {
		c := &countingArchive{Archive: NewZipArchive()}
		made = append(made, c)
		return c
	}
	doc := newTestDocument(t, WithArchive(newArchive))
	require.NotEmpty(t, made)
	before := made[len(made)-1].saves
	require.NoError(t, doc.Save())
	assert.Equal(t, before+1, made[len(made)-1].saves)
}
