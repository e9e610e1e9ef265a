package server

import (
	"net/http"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/compare"
	"github.com/MeiTetsuH/diffchecker/internal/ingest"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/MeiTetsuH/diffchecker/internal/reporter"
)

const recentOnIndex = 10

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := reporter.IndexPage{
		Accepted:    ingest.AcceptedExtensions(),
		MaxUploadMB: int(s.current().maxUpload >> 20),
		StorageDown: !s.store.Available(),
	}
	if !page.StorageDown {
		recent, err := s.store.Recent(r.Context(), recentOnIndex)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to list recent comparisons")
			page.StorageDown = true
		}
		page.Recent = recent
	}
	s.writeHTML(w, func(w http.ResponseWriter) error {
		return s.html.RenderIndex(w, page)
	})
}

// handleComparisonReport recomputes a saved comparison from its stored inputs and renders it.
func (s *Server) handleComparisonReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.LoadByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writePageError(w, err)
		return
	}

	meta := reporter.ReportMeta{
		Title:       rec.Name,
		LeftLabel:   rec.LeftLabel,
		RightLabel:  rec.RightLabel,
		GeneratedAt: rec.CreatedAt,
	}
	key := s.sessionKey(w, r)

	switch rec.Kind {
	case models.ComparisonText:
		p, err := compare.DecodeTextPayload(*rec)
		if err != nil {
			writePageError(w, err)
			return
		}
		res, err := s.runText(r.Context(), key, p.Request)
		if err != nil {
			writePageError(w, err)
			return
		}
		meta.ShareToken, _ = compare.EncodeShareToken(compare.SharePayload{
			Original:     p.Request.Left,
			Changed:      p.Request.Right,
			Presentation: res.Presentation,
			Granularity:  res.Granularity,
		})
		s.writeHTML(w, func(w http.ResponseWriter) error {
			return s.html.RenderText(w, res, meta)
		})
	case models.ComparisonTable:
		p, err := compare.DecodeTablePayload(*rec)
		if err != nil {
			writePageError(w, err)
			return
		}
		res, err := s.runTable(r.Context(), key, p.Request)
		if err != nil {
			writePageError(w, err)
			return
		}
		s.writeHTML(w, func(w http.ResponseWriter) error {
			return s.html.RenderTable(w, res, meta)
		})
	default:
		writePageError(w, common.NewValidationError("kind", rec.Kind, "unknown comparison kind"))
	}
}
