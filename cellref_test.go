package xlgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellReference(t *testing.T) {
	tests := []struct {
		address string
		row     uint32
		column  uint16
	}{
		{"A1", 1, 1},
		{"Z9", 9, 26},
		{"AA10", 10, 27},
		{"AZ1", 1, 52},
		{"XFD1048576", MaxRows, MaxCols},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			ref, err := ParseCellReference(tt.address)
			require.NoError(t, err)
			assert.Equal(t, tt.row, ref.Row())
			assert.Equal(t, tt.column, ref.Column())
			assert.Equal(t, tt.address, ref.Address())
		})
	}
}

func TestParseCellReference_Invalid(t *testing.T) {
	for _, address := range []string{"", "A", "1", "a1", "A0", "A01", "XFE1", "A1048577", "AAAA1", "A1B", "A-1"} {
		t.Run(address, func(t *testing.T) {
			_, err := ParseCellReference(address)
			assert.ErrorIs(t, err, ErrAddress)
		})
	}
}

func TestNewCellReference_Bounds(t *testing.T) {
	_, err := NewCellReference(0, 1)
	assert.ErrorIs(t, err, ErrAddress)
	_, err = NewCellReference(1, 0)
	assert.ErrorIs(t, err, ErrAddress)
	_, err = NewCellReference(MaxRows+1, 1)
	assert.ErrorIs(t, err, ErrAddress)
	_, err = NewCellReference(1, MaxCols+1)
	assert.ErrorIs(t, err, ErrAddress)

	ref, err := NewCellReference(3, 28)
	require.NoError(t, err)
	assert.Equal(t, "AB3", ref.String())
}

func TestColumnConversions(t *testing.T) {
	prev := ""
	for col := uint16(1); col <= MaxCols; col++ {
		letters := ColumnAsString(col)
		n, err := ColumnAsNumber(letters)
		require.NoError(t, err, letters)
		require.Equal(t, col, n, letters)
		// shorter names sort first, then alphabetically: Z < AA < AB
		require.True(t, len(prev) < len(letters) || (len(prev) == len(letters) && prev < letters),
			"%s should follow %s", letters, prev)
		prev = letters
	}
	assert.Equal(t, "Z", ColumnAsString(26))
	assert.Equal(t, "AA", ColumnAsString(27))
	assert.Equal(t, "AB", ColumnAsString(28))
	assert.Equal(t, "XFD", ColumnAsString(MaxCols))
	assert.Equal(t, "ZZ", ColumnAsString(702))

	_, err := ColumnAsNumber("XFE")
	assert.ErrorIs(t, err, ErrAddress)
}

func TestCellReference_Offset(t *testing.T) {
	ref := MustCellReference("B2")
	moved, err := ref.Offset(3, 2)
	require.NoError(t, err)
	assert.Equal(t, "D5", moved.Address())

	_, err = ref.Offset(-2, 0)
	assert.ErrorIs(t, err, ErrAddress)
}

func TestParseRange(t *testing.T) {
	rng, err := ParseRange("B2:D5")
	require.NoError(t, err)
	assert.Equal(t, uint32(4), rng.NumRows())
	assert.Equal(t, uint16(3), rng.NumColumns())
	assert.Equal(t, "B2:D5", rng.String())
	assert.False(t, rng.IsSingleCell())
	assert.True(t, rng.Contains(MustCellReference("C3")))
	assert.False(t, rng.Contains(MustCellReference("E3")))

	single, err := ParseRange("C7")
	require.NoError(t, err)
	assert.True(t, single.IsSingleCell())

	_, err = ParseRange("D5:B2")
	assert.ErrorIs(t, err, ErrAddress)
	_, err = ParseRange("B2:")
	assert.ErrorIs(t, err, ErrAddress)
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"B2:C3", "C3:D4", true},
		{"B2:C3", "D4:E5", false},
		{"A1:A10", "A5", true},
		{"A1:C1", "A2:C2", false},
		{"A1:Z100", "M50:N51", true},
	}
	for _, tt := range tests {
		got, err := RangesOverlap(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
	}
}
