package ingest

import (
	"io"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/xuri/excelize/v2"
)

func decodeXLSX(name string, r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	wb := newWorkbook(name)
	for _, sheet := range f.GetSheetList() {
		raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}

		rows := make([]models.Row, len(raw))
		for y, fields := range raw {
			row := make(models.Row, len(fields))
			for x, value := range fields {
				row[x] = xlsxCell(f, sheet, x+1, y+1, value)
			}
			rows[y] = row
		}
		wb.addSheet(sheet, rows)
	}
	return wb, nil
}

// xlsxCell uses the stored cell type so text that looks numeric stays text.
func xlsxCell(f *excelize.File, sheet string, col, row int, value string) models.Cell {
	if value == "" {
		return models.EmptyCell()
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ParseCell(value)
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return ParseCell(value)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return models.BoolCell(value == "1" || strings.EqualFold(value, "TRUE"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return models.TextCell(value)
	case excelize.CellTypeFormula:
		// formula results stored as strings
		return models.TextCell(value)
	default:
		return ParseCell(value)
	}
}

// letterHeader names n columns the way spreadsheets do: A, B, ..., Z, AA, ...
func letterHeader(n int) models.Row {
	header := make(models.Row, n)
	for i := range header {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			name = ""
		}
		header[i] = models.TextCell(name)
	}
	return header
}
