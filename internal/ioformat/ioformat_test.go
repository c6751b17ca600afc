package ioformat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eda-tools/fmpart/pkg/perrors"
)

const sampleInput = `NumCells 4
Cell A 1
Cell B 1
Cell C 1
Cell D 1
NumNets 2
Net N1 2
  Cell A
  Cell B
Net N2 2
  Cell C
  Cell D
`

func TestParse_ValidInput(t *testing.T) {
	cells, nets, err := Parse(strings.NewReader(sampleInput))
	require.NoError(t, err)
	require.Len(t, cells, 4)
	require.Len(t, nets, 2)
	assert.Equal(t, "A", cells[0].Name)
	assert.Equal(t, []string{"C", "D"}, nets[1].Cells)
}

func TestParse_UndeclaredCellReferenceIsReferenceError(t *testing.T) {
	input := `NumCells 1
Cell A 1
NumNets 1
Net N1 2
  Cell A
  Cell B
`
	_, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, perrors.IsReferenceError(err))
}

func TestParse_MalformedTokenStreamIsInputError(t *testing.T) {
	input := `NumCells 1
Cell A notanumber
`
	_, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, perrors.IsInputError(err))
}

func TestParse_NegativeNumCellsIsInputError(t *testing.T) {
	input := `NumCells -1
`
	_, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, perrors.IsInputError(err))
}

func TestParse_NegativeNetArityIsInputError(t *testing.T) {
	input := `NumCells 1
Cell A 1
NumNets 1
Net N1 -2
`
	_, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, perrors.IsInputError(err))
}

func TestParse_TruncatedInputIsInputError(t *testing.T) {
	input := `NumCells 2
Cell A 1
`
	_, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, perrors.IsInputError(err))
}

func TestWrite_SortsCellsByLengthThenLex(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, 1, [][]string{{"bbbb", "a", "cc", "aa"}, {"x"}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "CutSize 1")
	assert.Contains(t, out, "GroupA 4\na\naa\ncc\nbbbb\n")
	assert.Contains(t, out, "GroupB 1\nx\n")
}

func TestGroupLetter_SpreadsheetStyleForKGreaterThan26(t *testing.T) {
	assert.Equal(t, "A", groupLetter(0))
	assert.Equal(t, "Z", groupLetter(25))
	assert.Equal(t, "AA", groupLetter(26))
	assert.Equal(t, "AZ", groupLetter(51))
	assert.Equal(t, "BA", groupLetter(52))
}
