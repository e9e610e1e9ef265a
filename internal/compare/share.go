package compare

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/differ"
)

// SharePayload is everything needed to reopen a text comparison elsewhere.
type SharePayload struct {
	Original     string             `json:"original"`
	Changed      string             `json:"changed"`
	Presentation Presentation       `json:"mode,omitempty"`
	Granularity  differ.Granularity `json:"highlight,omitempty"`
}

// EncodeShareToken serialises a payload into a URL-safe token.
func EncodeShareToken(p SharePayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", common.WrapError(err, "failed to encode share payload")
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeShareToken parses a token produced by EncodeShareToken. Padded and standard
// base64 alphabets are accepted too.
func DecodeShareToken(token string) (SharePayload, error) {
	var p SharePayload

	token = strings.TrimSpace(token)
	if token == "" {
		return p, common.NewValidationError("token", token, "share token cannot be empty")
	}

	data, err := decodeBase64(token)
	if err != nil {
		return p, common.WrapError(common.ErrInvalidInput, "share token is not valid base64")
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, common.WrapError(common.ErrInvalidInput, "share token does not hold a comparison")
	}
	if p.Presentation != "" {
		if _, err := ParsePresentation(string(p.Presentation)); err != nil {
			return p, common.NewValidationError("mode", p.Presentation, err.Error())
		}
	}
	if p.Granularity != "" {
		if _, err := differ.ParseGranularity(string(p.Granularity)); err != nil {
			return p, common.NewValidationError("highlight", p.Granularity, err.Error())
		}
	}
	return p, nil
}

func decodeBase64(token string) ([]byte, error) {
	trimmed := strings.TrimRight(token, "=")
	if data, err := base64.RawURLEncoding.DecodeString(trimmed); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(trimmed)
}
