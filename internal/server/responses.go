package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/compare"
)

const maxJSONBodyBytes = 64 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var vErr *common.ValidationError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &vErr), errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, common.ErrUnparseableInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrInputTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, compare.ErrSuperseded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// writePageError reports a failure to a browser form submission.
func writePageError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return common.WrapError(common.ErrInputTooLarge, "request body")
		}
		return common.WrapError(common.ErrInvalidInput, "malformed JSON body: "+err.Error())
	}
	return nil
}
