package differ

import (
	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// UnionHeaders returns the ordered union of two header lists: every left name in order,
// then right names not already present. Duplicates collapse to their first occurrence.
func UnionHeaders(left, right []string) []string {
	seen := make(map[string]struct{}, len(left)+len(right))
	out := make([]string, 0, len(left)+len(right))
	for _, names := range [][]string{left, right} {
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// ClassifyColumns tags every combined column with the sides it appears on.
func ClassifyColumns(left, right []string) []models.Column {
	inLeft := toSet(left)
	inRight := toSet(right)

	union := UnionHeaders(left, right)
	cols := make([]models.Column, len(union))
	for i, name := range union {
		_, l := inLeft[name]
		_, r := inRight[name]
		status := models.ColumnCommon
		switch {
		case l && !r:
			status = models.ColumnLeftOnly
		case r && !l:
			status = models.ColumnRightOnly
		}
		cols[i] = models.Column{Name: name, Status: status}
	}
	return cols
}

// ProjectRow zips a row against its own side's header names. Cells past the header
// are dropped; when a name repeats, the later column wins.
func ProjectRow(header []string, row models.Row) map[string]models.Cell {
	fields := make(map[string]models.Cell, len(header))
	for i, name := range header {
		if i < len(row) {
			fields[name] = row[i]
		} else {
			fields[name] = models.EmptyCell()
		}
	}
	return fields
}

// CombinedCells lays out projected fields over the combined columns. Absent fields are empty.
func CombinedCells(columns []string, fields map[string]models.Cell) models.Row {
	out := make(models.Row, len(columns))
	for i, name := range columns {
		if c, ok := fields[name]; ok {
			out[i] = c
		}
	}
	return out
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
