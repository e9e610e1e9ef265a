package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// DelimitedSheetName names the single sheet of a CSV or TSV file.
const DelimitedSheetName = "Sheet1"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeDelimited(name string, data []byte, delimiter rune) (*Workbook, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errors.New("content is not valid UTF-8")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []models.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, ParseRow(record))
	}

	wb := newWorkbook(name)
	wb.addSheet(DelimitedSheetName, rows)
	return wb, nil
}

// sniffDelimiter picks tab when the first line has tabs and no commas.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.IndexByte(line, '\t') >= 0 && bytes.IndexByte(line, ',') < 0 {
		return '\t'
	}
	return ','
}
