// Package ingest decodes uploaded spreadsheet files into typed rows.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/rs/zerolog"
)

// NoHeaderRow marks a sheet without a header row.
const NoHeaderRow = -1

type fileFormat int

const (
	formatCSV fileFormat = iota
	formatTSV
	formatDelimited
	formatXLSX
)

var acceptedExtensions = map[string]fileFormat{
	".csv":  formatCSV,
	".tsv":  formatTSV,
	".txt":  formatDelimited,
	".xlsx": formatXLSX,
	".xlsm": formatXLSX,
}

// AcceptedExtensions lists the file extensions Open accepts.
func AcceptedExtensions() []string {
	return []string{".csv", ".tsv", ".txt", ".xlsx", ".xlsm"}
}

// CheckExtension rejects names whose extension is not accepted. Nothing is read.
func CheckExtension(name string) error {
	_, err := formatFor(name)
	return err
}

func formatFor(name string) (fileFormat, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := acceptedExtensions[ext]; ok {
		return f, nil
	}
	if ext == "" {
		return 0, common.NewUnsupportedFileError(name, "file has no extension")
	}
	return 0, common.NewUnsupportedFileError(name, fmt.Sprintf("extension %s is not one of %s", ext, strings.Join(AcceptedExtensions(), ", ")))
}

// Workbook is a decoded file: one or more named sheets of rows.
type Workbook struct {
	Name       string
	SheetNames []string
	sheets     map[string][]models.Row
}

func newWorkbook(name string) *Workbook {
	return &Workbook{Name: name, sheets: make(map[string][]models.Row)}
}

func (w *Workbook) addSheet(sheet string, rows []models.Row) {
	w.SheetNames = append(w.SheetNames, sheet)
	w.sheets[sheet] = trimRows(rows)
}

// Rows returns the rows of a sheet. An empty sheet name selects the first sheet.
func (w *Workbook) Rows(sheet string) ([]models.Row, error) {
	if sheet == "" {
		if len(w.SheetNames) == 0 {
			return nil, nil
		}
		sheet = w.SheetNames[0]
	}
	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, common.WrapErrorf(common.ErrNotFound, "sheet %q in %s", sheet, w.Name)
	}
	return rows, nil
}

// Table splits a sheet into a header row and body rows. headerRow is 0-based; NoHeaderRow
// names columns A, B, C... and keeps every row as body. A header row past the end of the
// sheet yields an empty table.
func (w *Workbook) Table(sheet string, headerRow int) (models.Table, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return models.Table{}, err
	}
	return SplitTable(rows, headerRow), nil
}

// SplitTable is Workbook.Table over already decoded rows.
func SplitTable(rows []models.Row, headerRow int) models.Table {
	if headerRow < 0 {
		return models.Table{Header: letterHeader(maxWidth(rows)), Body: rows}
	}
	if headerRow >= len(rows) {
		return models.Table{Header: models.Row{}, Body: []models.Row{}}
	}
	return models.Table{Header: rows[headerRow], Body: rows[headerRow+1:]}
}

// Loader opens uploaded files with a size limit.
type Loader struct {
	logger      zerolog.Logger
	fileManager *common.FileManager
	maxBytes    int64
}

// NewLoader creates a Loader. A maxBytes of 0 disables the size limit.
func NewLoader(logger zerolog.Logger, maxBytes int64) *Loader {
	componentLogger := logger.With().Str("component", "Ingest").Logger()
	return &Loader{
		logger:      componentLogger,
		fileManager: common.NewFileManager(componentLogger),
		maxBytes:    maxBytes,
	}
}

// OpenFile reads and decodes a file from disk.
func (l *Loader) OpenFile(path string) (*Workbook, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}
	data, err := l.fileManager.ReadFile(path, common.FileReadOptions{MaxSize: l.maxBytes})
	if err != nil {
		return nil, err
	}
	return l.decode(filepath.Base(path), data)
}

// Open decodes an uploaded file. The extension is checked before anything is read.
func (l *Loader) Open(name string, r io.Reader) (*Workbook, error) {
	if err := CheckExtension(name); err != nil {
		return nil, err
	}
	data, err := common.ReadAllLimited(r, l.maxBytes)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to read %s", name)
	}
	return l.decode(name, data)
}

func (l *Loader) decode(name string, data []byte) (*Workbook, error) {
	format, err := formatFor(name)
	if err != nil {
		return nil, err
	}

	var wb *Workbook
	switch format {
	case formatXLSX:
		wb, err = decodeXLSX(name, bytes.NewReader(data))
	case formatTSV:
		wb, err = decodeDelimited(name, data, '\t')
	case formatDelimited:
		wb, err = decodeDelimited(name, data, sniffDelimiter(data))
	default:
		wb, err = decodeDelimited(name, data, ',')
	}
	if err != nil {
		l.logger.Warn().Err(err).Str("file", name).Msg("Failed to decode file")
		return nil, common.NewUnparseableFileError(name, err)
	}

	l.logger.Debug().Str("file", name).Strs("sheets", wb.SheetNames).Msg("Decoded workbook")
	return wb, nil
}

func trimRows(rows []models.Row) []models.Row {
	out := make([]models.Row, len(rows))
	for i, r := range rows {
		end := len(r)
		for end > 0 && r[end-1].IsEmpty() {
			end--
		}
		out[i] = r[:end]
	}
	end := len(out)
	for end > 0 && len(out[end-1]) == 0 {
		end--
	}
	return out[:end]
}

func maxWidth(rows []models.Row) int {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	return width
}
