package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/compare"
	"github.com/MeiTetsuH/diffchecker/internal/differ"
	"github.com/MeiTetsuH/diffchecker/internal/ingest"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/MeiTetsuH/diffchecker/internal/reporter"
)

// workbookInfo describes the file a side currently holds.
type workbookInfo struct {
	Name   string   `json:"name"`
	Sheets []string `json:"sheets"`
}

// tableTextResponse is the line view of two sheets, each serialized as CSV.
type tableTextResponse struct {
	Result *compare.TextResult `json:"result"`
	Left   workbookInfo        `json:"left"`
	Right  workbookInfo        `json:"right"`
}

type tableCompareResponse struct {
	Result    *compare.TableResult    `json:"result"`
	Left      workbookInfo            `json:"left"`
	Right     workbookInfo            `json:"right"`
	Saved     *models.SavedComparison `json:"saved,omitempty"`
	SaveError string                  `json:"save_error,omitempty"`
}

// tableForm is the parsed multipart form of a table comparison.
type tableForm struct {
	leftSheet   string
	rightSheet  string
	leftHeader  int
	rightHeader int
	strategy    differ.Strategy
	granularity differ.Granularity
	save        string
}

func infoOf(wb *ingest.Workbook) workbookInfo {
	return workbookInfo{Name: wb.Name, Sheets: wb.SheetNames}
}

func (s *Server) parseTableForm(w http.ResponseWriter, r *http.Request, p *pipelines) error {
	limit := p.maxUpload
	if limit <= 0 {
		limit = 32 << 20
	}
	// Two files plus form fields.
	r.Body = http.MaxBytesReader(w, r.Body, 2*limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return common.WrapErrorf(common.ErrInputTooLarge, "upload exceeds %d bytes", maxBytesErr.Limit)
		}
		return common.WrapError(common.ErrInvalidInput, "malformed multipart form: "+err.Error())
	}
	return nil
}

func headerRowField(r *http.Request, field string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < ingest.NoHeaderRow {
		return 0, common.NewValidationError(field, raw, "must be an integer >= -1")
	}
	return n, nil
}

func readTableForm(r *http.Request, p *pipelines) (tableForm, error) {
	f := tableForm{
		leftSheet:   r.FormValue("left_sheet"),
		rightSheet:  r.FormValue("right_sheet"),
		strategy:    differ.Strategy(r.FormValue("strategy")),
		granularity: differ.Granularity(r.FormValue("granularity")),
		save:        strings.TrimSpace(r.FormValue("save")),
	}
	if f.leftSheet == "" {
		f.leftSheet = p.tableConfig.LeftSheet
	}
	if f.rightSheet == "" {
		f.rightSheet = p.tableConfig.RightSheet
	}
	var err error
	if f.leftHeader, err = headerRowField(r, "left_header", p.tableConfig.LeftHeaderRow); err != nil {
		return f, err
	}
	if f.rightHeader, err = headerRowField(r, "right_header", p.tableConfig.RightHeaderRow); err != nil {
		return f, err
	}
	return f, nil
}

// loadSide decodes an uploaded file for one side. Only a successful decode replaces what
// the session already holds for that side.
func (s *Server) loadSide(key string, isLeft bool, r *http.Request, field string, p *pipelines) error {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return common.WrapError(common.ErrInvalidInput, fmt.Sprintf("%s upload: %v", field, err))
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	wb, err := p.loader.Open(header.Filename, file)
	if err != nil {
		s.logger.Warn().Err(err).Str("side", field).Str("file", header.Filename).Msg("Upload rejected, keeping the previous file")
		return err
	}
	s.sessions.setSide(key, isLeft, wb)
	return nil
}

// sidesFromUploads updates the session from the request and returns both sides it holds.
func (s *Server) sidesFromUploads(w http.ResponseWriter, r *http.Request) (string, tableForm, *ingest.Workbook, *ingest.Workbook, error) {
	p := s.current()

	if err := s.parseTableForm(w, r, p); err != nil {
		return "", tableForm{}, nil, nil, err
	}
	key := s.sessionKey(w, r)

	if err := s.loadSide(key, true, r, "left", p); err != nil {
		return key, tableForm{}, nil, nil, err
	}
	if err := s.loadSide(key, false, r, "right", p); err != nil {
		return key, tableForm{}, nil, nil, err
	}

	form, err := readTableForm(r, p)
	if err != nil {
		return key, form, nil, nil, err
	}

	left, right := s.sessions.sides(key)
	if left == nil {
		return key, form, nil, nil, common.NewValidationError("left", nil, "no left file has been uploaded")
	}
	if right == nil {
		return key, form, nil, nil, common.NewValidationError("right", nil, "no right file has been uploaded")
	}
	return key, form, left, right, nil
}

// tableFromUploads is sidesFromUploads followed by splitting the selected sheets into tables.
func (s *Server) tableFromUploads(w http.ResponseWriter, r *http.Request) (string, tableForm, *ingest.Workbook, *ingest.Workbook, compare.TableRequest, error) {
	var req compare.TableRequest

	key, form, left, right, err := s.sidesFromUploads(w, r)
	if err != nil {
		return key, form, left, right, req, err
	}

	leftTable, err := left.Table(form.leftSheet, form.leftHeader)
	if err != nil {
		return key, form, left, right, req, common.NewValidationError("left_sheet", form.leftSheet, err.Error())
	}
	rightTable, err := right.Table(form.rightSheet, form.rightHeader)
	if err != nil {
		return key, form, left, right, req, common.NewValidationError("right_sheet", form.rightSheet, err.Error())
	}

	req = compare.TableRequest{
		Left:        leftTable,
		Right:       rightTable,
		Strategy:    form.strategy,
		Granularity: form.granularity,
	}
	return key, form, left, right, req, nil
}

func (s *Server) runTable(ctx context.Context, key string, req compare.TableRequest) (*compare.TableResult, error) {
	table := s.current().table
	return compare.Submit(ctx, s.runner, key+":table", func(ctx context.Context) (*compare.TableResult, error) {
		return table.Compare(ctx, req)
	})
}

func (s *Server) handleTableCompare(w http.ResponseWriter, r *http.Request) {
	key, form, left, right, req, err := s.tableFromUploads(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runTable(r.Context(), key, req)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := tableCompareResponse{Result: res, Left: infoOf(left), Right: infoOf(right)}
	if form.save != "" {
		rec, err := compare.NewTableComparison(form.save, left.Name, right.Name, req, res.Stats)
		if err != nil {
			resp.SaveError = err.Error()
		} else {
			resp.Saved, resp.SaveError = s.saveComparison(r.Context(), rec)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTableReport serves the index page's upload form as an HTML report.
func (s *Server) handleTableReport(w http.ResponseWriter, r *http.Request) {
	key, form, left, right, req, err := s.tableFromUploads(w, r)
	if err != nil {
		writePageError(w, err)
		return
	}

	res, err := s.runTable(r.Context(), key, req)
	if err != nil {
		writePageError(w, err)
		return
	}

	if form.save != "" {
		if rec, err := compare.NewTableComparison(form.save, left.Name, right.Name, req, res.Stats); err == nil {
			s.saveComparison(r.Context(), rec)
		}
	}

	meta := reporter.ReportMeta{LeftLabel: left.Name, RightLabel: right.Name, GeneratedAt: time.Now()}
	s.writeHTML(w, func(w http.ResponseWriter) error {
		return s.html.RenderTable(w, res, meta)
	})
}

// handleTableText compares the selected sheets as CSV text, ignoring header rows.
func (s *Server) handleTableText(w http.ResponseWriter, r *http.Request) {
	key, form, left, right, err := s.sidesFromUploads(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	leftRows, err := left.Rows(form.leftSheet)
	if err != nil {
		writeError(w, common.NewValidationError("left_sheet", form.leftSheet, err.Error()))
		return
	}
	rightRows, err := right.Rows(form.rightSheet)
	if err != nil {
		writeError(w, common.NewValidationError("right_sheet", form.rightSheet, err.Error()))
		return
	}

	req := compare.SheetText(leftRows, rightRows)
	req.Strategy = form.strategy
	req.Granularity = form.granularity

	res, err := s.runText(r.Context(), key, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tableTextResponse{Result: res, Left: infoOf(left), Right: infoOf(right)})
}
