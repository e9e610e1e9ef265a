package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/compare"
	"github.com/MeiTetsuH/diffchecker/internal/differ"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/MeiTetsuH/diffchecker/internal/reporter"
)

// textCompareRequest is the JSON body of POST /api/text/compare.
type textCompareRequest struct {
	compare.TextRequest
	Save       string `json:"save,omitempty"`
	LeftLabel  string `json:"left_label,omitempty"`
	RightLabel string `json:"right_label,omitempty"`
}

type textCompareResponse struct {
	Result     *compare.TextResult     `json:"result"`
	ShareToken string                  `json:"share_token,omitempty"`
	Saved      *models.SavedComparison `json:"saved,omitempty"`
	SaveError  string                  `json:"save_error,omitempty"`
}

type textToolRequest struct {
	Text string `json:"text"`
}

func (s *Server) runText(ctx context.Context, key string, req compare.TextRequest) (*compare.TextResult, error) {
	text := s.current().text
	return compare.Submit(ctx, s.runner, key+":text", func(ctx context.Context) (*compare.TextResult, error) {
		return text.Compare(ctx, req)
	})
}

// saveComparison stores rec when a name was given. Storage failures are reported to the
// caller but never fail the comparison itself.
func (s *Server) saveComparison(ctx context.Context, rec models.SavedComparison) (*models.SavedComparison, string) {
	saved, err := s.store.Save(ctx, rec)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", rec.Name).Msg("Comparison computed but not saved")
		return nil, err.Error()
	}
	return saved, ""
}

func (s *Server) handleTextCompare(w http.ResponseWriter, r *http.Request) {
	var req textCompareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	key := s.sessionKey(w, r)
	res, err := s.runText(r.Context(), key, req.TextRequest)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := textCompareResponse{Result: res}
	if token, err := compare.EncodeShareToken(compare.SharePayload{
		Original:     req.Left,
		Changed:      req.Right,
		Presentation: res.Presentation,
		Granularity:  res.Granularity,
	}); err == nil {
		resp.ShareToken = token
	}

	if req.Save != "" {
		rec, err := compare.NewTextComparison(req.Save, req.LeftLabel, req.RightLabel, req.TextRequest, res.Stats)
		if err != nil {
			resp.SaveError = err.Error()
		} else {
			resp.Saved, resp.SaveError = s.saveComparison(r.Context(), rec)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleTextExport runs a text comparison and returns it as a download, unified lines or
// a two-column CSV depending on ?format=.
func (s *Server) handleTextExport(w http.ResponseWriter, r *http.Request) {
	format, err := compare.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req compare.TextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runText(r.Context(), s.sessionKey(w, r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := compare.Export(format, req, res)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "diff"+format.Extension()))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleTextTool(w http.ResponseWriter, r *http.Request) {
	var req textToolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := compare.ApplyTool(compare.TextTool(r.PathValue("tool")), req.Text)
	if err != nil {
		writeError(w, common.NewValidationError("tool", r.PathValue("tool"), err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, textToolRequest{Text: out})
}

// handleTextReport serves the index page's text form as an HTML report.
func (s *Server) handleTextReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := r.ParseForm(); err != nil {
		writePageError(w, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}

	req := compare.TextRequest{
		Left:         r.PostForm.Get("left"),
		Right:        r.PostForm.Get("right"),
		Granularity:  differ.Granularity(r.PostForm.Get("granularity")),
		Strategy:     differ.Strategy(r.PostForm.Get("strategy")),
		Presentation: compare.Presentation(r.PostForm.Get("presentation")),
	}
	res, err := s.runText(r.Context(), s.sessionKey(w, r), req)
	if err != nil {
		writePageError(w, err)
		return
	}

	if name := r.PostForm.Get("save"); name != "" {
		if rec, err := compare.NewTextComparison(name, "", "", req, res.Stats); err == nil {
			s.saveComparison(r.Context(), rec)
		}
	}

	token, _ := compare.EncodeShareToken(compare.SharePayload{
		Original:     req.Left,
		Changed:      req.Right,
		Presentation: res.Presentation,
		Granularity:  res.Granularity,
	})
	s.writeHTML(w, func(w http.ResponseWriter) error {
		return s.html.RenderText(w, res, reporter.ReportMeta{GeneratedAt: time.Now(), ShareToken: token})
	})
}

func (s *Server) writeHTML(w http.ResponseWriter, render func(http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render(w); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render HTML page")
		writePageError(w, err)
	}
}
