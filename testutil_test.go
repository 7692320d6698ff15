package xlgraph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTestDocument creates an empty workbook in a temp dir.
func newTestDocument(t *testing.T, opts ...Option) *Document {
	t.Helper()
	doc, err := Create(filepath.Join(t.TempDir(), "book.xlsx"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

// reopen saves doc and opens the result as a new document.
func reopen(t *testing.T, doc *Document, opts ...Option) *Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reopened.xlsx")
	require.NoError(t, doc.SaveAs(path))
	out, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

// observedLogger returns a logger whose entries at level and above can be inspected.
func observedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// writeExcelizeFile builds a workbook with excelize and returns its path.
func writeExcelizeFile(t *testing.T, build func(f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f)
	path := filepath.Join(t.TempDir(), "excelize.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func mustWorksheet(t *testing.T, doc *Document, name string) *Worksheet {
	t.Helper()
	ws, err := doc.Workbook().Worksheet(name)
	require.NoError(t, err)
	return ws
}

func mustCell(t *testing.T, ws *Worksheet, address string) *Cell {
	t.Helper()
	c, err := ws.Cell(address)
	require.NoError(t, err)
	return c
}
