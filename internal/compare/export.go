package compare

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/ingest"
	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// ExportFormat names a plain-text rendering of a text comparison.
type ExportFormat string

const (
	ExportUnified ExportFormat = "unified"
	ExportCSV     ExportFormat = "csv"
)

// ParseExportFormat accepts "unified" or "csv".
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportUnified, ExportCSV:
		return f, nil
	}
	return "", common.NewValidationError("format", s, "must be unified or csv")
}

// ContentType is the MIME type served for an export.
func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Extension is the file extension used when an export is downloaded.
func (f ExportFormat) Extension() string {
	if f == ExportCSV {
		return ".csv"
	}
	return ".txt"
}

// Export renders a finished text comparison. The CSV form carries the request texts,
// the unified form the aligned lines of res.
func Export(format ExportFormat, req TextRequest, res *TextResult) (string, error) {
	switch format {
	case ExportUnified:
		return UnifiedText(res.Units), nil
	case ExportCSV:
		return TwoColumnCSV(req.Left, req.Right)
	}
	return "", common.NewValidationError("format", string(format), "must be unified or csv")
}

// SheetText builds a text request that compares two sheets line by line, each side
// serialized as CSV.
func SheetText(left, right []models.Row) TextRequest {
	return TextRequest{Left: ingest.ToCSVText(left), Right: ingest.ToCSVText(right)}
}

// Line prefixes of the unified text export.
const (
	PrefixAdded   = "+ "
	PrefixRemoved = "- "
	PrefixSame    = "  "
)

// UnifiedText renders an alignment as prefixed lines. A modified line is written as its
// removed form followed by its added form.
func UnifiedText(units []models.AlignedUnit[string]) string {
	var b strings.Builder
	for _, u := range units {
		switch u.Kind {
		case models.UnitSame:
			writeLine(&b, PrefixSame, u.Content)
		case models.UnitAdded:
			writeLine(&b, PrefixAdded, u.Content)
		case models.UnitRemoved:
			writeLine(&b, PrefixRemoved, u.Content)
		case models.UnitModified:
			writeLine(&b, PrefixRemoved, u.Left)
			writeLine(&b, PrefixAdded, u.Right)
		}
	}
	return b.String()
}

func writeLine(b *strings.Builder, prefix, line string) {
	b.WriteString(prefix)
	b.WriteString(line)
	b.WriteByte('\n')
}

// TwoColumnCSV writes both full texts as a single "Original,Changed" record.
func TwoColumnCSV(original, changed string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll([][]string{{"Original", "Changed"}, {original, changed}}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
