package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/models"
)

var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseCell infers a cell kind from raw text: empty, TRUE/FALSE, decimal number or text.
func ParseCell(raw string) models.Cell {
	if raw == "" {
		return models.EmptyCell()
	}
	trimmed := strings.TrimSpace(raw)
	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return models.BoolCell(true)
	case "FALSE":
		return models.BoolCell(false)
	}
	if numberPattern.MatchString(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return models.NumberCell(f)
		}
	}
	return models.TextCell(raw)
}

// ParseRow applies ParseCell to every field.
func ParseRow(fields []string) models.Row {
	row := make(models.Row, len(fields))
	for i, f := range fields {
		row[i] = ParseCell(f)
	}
	return row
}
