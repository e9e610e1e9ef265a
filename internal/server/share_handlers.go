package server

import (
	"net/http"

	"github.com/MeiTetsuH/diffchecker/internal/compare"
)

type shareResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type openShareResponse struct {
	compare.SharePayload
	Result *compare.TextResult `json:"result"`
}

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var p compare.SharePayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	token, err := compare.EncodeShareToken(p)
	if err != nil {
		writeError(w, err)
		return
	}
	// Validates mode and highlight the same way opening the link will.
	if _, err := compare.DecodeShareToken(token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Token: token, URL: "/api/share/" + token})
}

// handleOpenShare decodes a share token and recomputes its comparison.
func (s *Server) handleOpenShare(w http.ResponseWriter, r *http.Request) {
	p, err := compare.DecodeShareToken(r.PathValue("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runText(r.Context(), s.sessionKey(w, r), compare.TextRequest{
		Left:         p.Original,
		Right:        p.Changed,
		Granularity:  p.Granularity,
		Presentation: p.Presentation,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, openShareResponse{SharePayload: p, Result: res})
}
