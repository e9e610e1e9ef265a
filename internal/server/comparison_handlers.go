package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/compare"
	"github.com/MeiTetsuH/diffchecker/internal/models"
)

const maxArchiveBytes = 256 << 20

type listComparisonsResponse struct {
	Comparisons []models.SavedComparison `json:"comparisons"`
	Available   bool                     `json:"available"`
	MaxEntries  int                      `json:"max_entries"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

// handleListComparisons lists saved comparisons newest first. ?q= filters by name and
// ?limit= caps the result.
func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	resp := listComparisonsResponse{Comparisons: []models.SavedComparison{}, Available: s.store.Available()}
	if !resp.Available {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.MaxEntries = s.store.MaxEntries()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, common.NewValidationError("limit", raw, "must be a non-negative integer"))
			return
		}
		limit = n
	}

	var (
		list []models.SavedComparison
		err  error
	)
	switch q := strings.TrimSpace(r.URL.Query().Get("q")); {
	case q != "":
		list, err = s.store.SearchByName(r.Context(), q)
		if err == nil && limit > 0 && len(list) > limit {
			list = list[:limit]
		}
	case limit > 0:
		list, err = s.store.Recent(r.Context(), limit)
	default:
		list, err = s.store.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if list != nil {
		resp.Comparisons = list
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateComparison stores a comparison posted as JSON. An unnamed comparison is
// named after its labels or the current time.
func (s *Server) handleCreateComparison(w http.ResponseWriter, r *http.Request) {
	var rec models.SavedComparison
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(rec.Name) == "" {
		rec.Name = compare.DefaultName(rec.LeftLabel, rec.RightLabel, time.Now())
	}
	if rec.Kind != "" && rec.Kind != models.ComparisonText && rec.Kind != models.ComparisonTable {
		writeError(w, common.NewValidationError("kind", rec.Kind, "must be text or table"))
		return
	}

	saved, err := s.store.Save(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.LoadByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateComparison(w http.ResponseWriter, r *http.Request) {
	var upd models.ComparisonUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.store.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteComparison(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteByID(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportComparisons downloads every saved comparison as a parquet archive.
func (s *Server) handleExportComparisons(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil || !s.store.Available() {
		writeError(w, common.ErrStorageUnavailable)
		return
	}
	records, err := s.store.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	buf := common.DefaultBufferPool.Get()
	defer common.DefaultBufferPool.Put(buf)
	if err := s.archive.WriteTo(buf, records); err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("comparisons-%s.parquet", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	s.logger.Info().Int("records", len(records)).Msg("Exported comparisons")
}

// handleImportComparisons reads a parquet archive either as the raw body or as the "file"
// field of a multipart form.
func (s *Server) handleImportComparisons(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil || !s.store.Available() {
		writeError(w, common.ErrStorageUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxArchiveBytes)

	data, err := readArchiveBody(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			err = common.WrapErrorf(common.ErrInputTooLarge, "archive exceeds %d bytes", maxBytesErr.Limit)
		}
		writeError(w, err)
		return
	}
	if len(data) == 0 {
		writeError(w, common.NewValidationError("file", nil, "archive is empty"))
		return
	}

	records, err := s.archive.ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := s.store.Import(r.Context(), records)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}

func readArchiveBody(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return io.ReadAll(r.Body)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, common.NewValidationError("file", nil, "multipart import needs a file field: "+err.Error())
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}
