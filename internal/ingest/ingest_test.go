package ingest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type failingReader struct{ read bool }

func (f *failingReader) Read([]byte) (int, error) {
	f.read = true
	return 0, errors.New("must not be read")
}

func TestOpen_RejectsUnsupportedBeforeReading(t *testing.T) {
	loader := NewLoader(zerolog.Nop(), 0)
	for _, name := range []string{"legacy.xls", "notes.pdf", "noext"} {
		t.Run(name, func(t *testing.T) {
			r := &failingReader{}
			_, err := loader.Open(name, r)
			assert.ErrorIs(t, err, common.ErrUnsupportedFileType)
			assert.False(t, r.read)
		})
	}
}

func TestOpen_CSV(t *testing.T) {
	loader := NewLoader(zerolog.Nop(), 0)
	data := "\xEF\xBB\xBFname,age,active\nAlice,30,TRUE\n\"Smith, Bob\",4.5,false\n,,\n\n"

	wb, err := loader.Open("people.CSV", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{DelimitedSheetName}, wb.SheetNames)

	rows, err := wb.Rows("")
	require.NoError(t, err)
	require.Len(t, rows, 3, "trailing blank rows are dropped")
	assert.Equal(t, []string{"name", "age", "active"}, rows[0].Strings())
	assert.True(t, rows[1].Equal(models.Row{models.TextCell("Alice"), models.NumberCell(30), models.BoolCell(true)}))
	assert.True(t, rows[2].Equal(models.Row{models.TextCell("Smith, Bob"), models.NumberCell(4.5), models.BoolCell(false)}))
}

func TestOpen_TSVAndSniffedTXT(t *testing.T) {
	loader := NewLoader(zerolog.Nop(), 0)

	wb, err := loader.Open("a.tsv", strings.NewReader("a\tb\n1\t2\n"))
	require.NoError(t, err)
	rows, _ := wb.Rows("")
	assert.Equal(t, []string{"a", "b"}, rows[0].Strings())

	wb, err = loader.Open("a.txt", strings.NewReader("x\ty\n"))
	require.NoError(t, err)
	rows, _ = wb.Rows("")
	assert.Equal(t, []string{"x", "y"}, rows[0].Strings())
}

func TestOpen_TooLarge(t *testing.T) {
	loader := NewLoader(zerolog.Nop(), 8)
	_, err := loader.Open("big.csv", strings.NewReader(strings.Repeat("a,", 20)))
	assert.ErrorIs(t, err, common.ErrInputTooLarge)
}

func TestOpen_CorruptXLSX(t *testing.T) {
	loader := NewLoader(zerolog.Nop(), 0)
	_, err := loader.Open("broken.xlsx", strings.NewReader("this is not a zip archive"))
	assert.ErrorIs(t, err, common.ErrUnparseableInput)

	var fileErr *common.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "broken.xlsx", fileErr.Name)
}

func TestOpen_InvalidUTF8CSV(t *testing.T) {
	loader := NewLoader(zerolog.Nop(), 0)
	_, err := loader.Open("bad.csv", bytes.NewReader([]byte{'a', ',', 0xff, 0xfe, '\n'}))
	assert.ErrorIs(t, err, common.ErrUnparseableInput)
}

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "id"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "active"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 1))
	require.NoError(t, f.SetCellStr("Sheet1", "B2", "007"))
	require.NoError(t, f.SetCellValue("Sheet1", "C2", true))

	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Second", "A1", 2.5))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestOpen_XLSX(t *testing.T) {
	loader := NewLoader(zerolog.Nop(), 0)
	wb, err := loader.Open("book.xlsx", bytes.NewReader(buildWorkbook(t)))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Second"}, wb.SheetNames)

	table, err := wb.Table("Sheet1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "active"}, table.HeaderNames())
	require.Len(t, table.Body, 1)
	assert.True(t, table.Body[0][0].Equal(models.NumberCell(1)))
	assert.True(t, table.Body[0][1].Equal(models.TextCell("007")), "string cells stay text")
	assert.True(t, table.Body[0][2].Equal(models.BoolCell(true)))

	second, err := wb.Rows("Second")
	require.NoError(t, err)
	assert.True(t, second[0][0].Equal(models.NumberCell(2.5)))

	_, err = wb.Rows("Missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLoader_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, os.WriteFile(path, buildWorkbook(t), 0644))

	wb, err := NewLoader(zerolog.Nop(), 0).OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "book.xlsx", wb.Name)
}

func TestSplitTable(t *testing.T) {
	rows := []models.Row{
		ParseRow([]string{"title"}),
		ParseRow([]string{"name", "age"}),
		ParseRow([]string{"Bob", "30"}),
	}

	table := SplitTable(rows, 1)
	assert.Equal(t, []string{"name", "age"}, table.HeaderNames())
	assert.Len(t, table.Body, 1)

	table = SplitTable(rows, NoHeaderRow)
	assert.Equal(t, []string{"A", "B"}, table.HeaderNames())
	assert.Len(t, table.Body, 3)

	table = SplitTable(rows, 10)
	assert.Empty(t, table.Header)
	assert.Empty(t, table.Body)
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Cell
	}{
		{"", models.EmptyCell()},
		{"42", models.NumberCell(42)},
		{"-1.5e3", models.NumberCell(-1500)},
		{".5", models.NumberCell(0.5)},
		{"true", models.BoolCell(true)},
		{"FALSE", models.BoolCell(false)},
		{"NaN", models.TextCell("NaN")},
		{"0x10", models.TextCell("0x10")},
		{"1,000", models.TextCell("1,000")},
		{" ", models.TextCell(" ")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseCell(tt.raw)
			assert.True(t, tt.want.Equal(got), "ParseCell(%q) = %#v", tt.raw, got)
		})
	}
}

func TestToCSVText(t *testing.T) {
	rows := []models.Row{
		{models.TextCell("name"), models.TextCell("note")},
		{models.TextCell("Bob"), models.TextCell("likes, commas")},
		{models.NumberCell(3), models.EmptyCell(), models.BoolCell(true)},
	}
	assert.Equal(t, "name,note\nBob,\"likes, commas\"\n3,,TRUE\n", ToCSVText(rows))
}
