package ingest

import (
	"bytes"
	"encoding/csv"

	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// ToCSVText serializes rows as CSV, one row per line, quoting where needed.
func ToCSVText(rows []models.Row) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		_ = w.Write(row.Strings())
	}
	w.Flush()
	return buf.String()
}
