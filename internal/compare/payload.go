package compare

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// TextPayload is the saved form of a text comparison: its inputs and options, not its result.
type TextPayload struct {
	Request TextRequest  `json:"request"`
	Stats   models.Stats `json:"stats"`
}

// TablePayload is the saved form of a table comparison.
type TablePayload struct {
	Request TableRequest `json:"request"`
	Stats   models.Stats `json:"stats"`
}

// NewTextComparison packs a text comparison for the store.
func NewTextComparison(name, leftLabel, rightLabel string, req TextRequest, stats models.Stats) (models.SavedComparison, error) {
	payload, err := json.Marshal(TextPayload{Request: req, Stats: stats})
	if err != nil {
		return models.SavedComparison{}, common.WrapError(err, "failed to encode text payload")
	}
	return models.SavedComparison{
		Name:       name,
		Kind:       models.ComparisonText,
		LeftLabel:  leftLabel,
		RightLabel: rightLabel,
		Payload:    payload,
	}, nil
}

// NewTableComparison packs a table comparison for the store.
func NewTableComparison(name, leftLabel, rightLabel string, req TableRequest, stats models.Stats) (models.SavedComparison, error) {
	payload, err := json.Marshal(TablePayload{Request: req, Stats: stats})
	if err != nil {
		return models.SavedComparison{}, common.WrapError(err, "failed to encode table payload")
	}
	return models.SavedComparison{
		Name:       name,
		Kind:       models.ComparisonTable,
		LeftLabel:  leftLabel,
		RightLabel: rightLabel,
		Payload:    payload,
	}, nil
}

// DecodeTextPayload unpacks a saved text comparison.
func DecodeTextPayload(rec models.SavedComparison) (TextPayload, error) {
	var p TextPayload
	if rec.Kind != models.ComparisonText {
		return p, common.NewValidationError("kind", rec.Kind, "not a text comparison")
	}
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return p, common.WrapError(common.ErrInvalidInput, fmt.Sprintf("saved comparison %s has a malformed payload", rec.ID))
	}
	return p, nil
}

// DecodeTablePayload unpacks a saved table comparison.
func DecodeTablePayload(rec models.SavedComparison) (TablePayload, error) {
	var p TablePayload
	if rec.Kind != models.ComparisonTable {
		return p, common.NewValidationError("kind", rec.Kind, "not a table comparison")
	}
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return p, common.WrapError(common.ErrInvalidInput, fmt.Sprintf("saved comparison %s has a malformed payload", rec.ID))
	}
	return p, nil
}

// DefaultName names an unnamed comparison after its inputs, or after the moment it was
// made when the inputs are unlabelled, e.g. "Diff 2024-01-02 15:04".
func DefaultName(leftLabel, rightLabel string, at time.Time) string {
	leftLabel, rightLabel = strings.TrimSpace(leftLabel), strings.TrimSpace(rightLabel)
	if leftLabel != "" && rightLabel != "" {
		return leftLabel + " vs " + rightLabel
	}
	return "Diff " + at.Format("2006-01-02 15:04")
}
