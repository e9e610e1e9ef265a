package differ

import (
	"fmt"

	"github.com/MeiTetsuH/diffchecker/internal/common"
)

// ContentSizeValidator validates content size against limits
type ContentSizeValidator struct {
	maxSizeBytes int64
}

// NewContentSizeValidator creates a new content size validator. A limit of 0 disables the check.
func NewContentSizeValidator(maxSizeMB int) *ContentSizeValidator {
	return &ContentSizeValidator{
		maxSizeBytes: int64(maxSizeMB) * 1024 * 1024,
	}
}

// ValidateSize checks if both sides are within limits
func (csv *ContentSizeValidator) ValidateSize(left, right string) error {
	if err := csv.validateSingleContent(left, "left"); err != nil {
		return err
	}

	return csv.validateSingleContent(right, "right")
}

func (csv *ContentSizeValidator) validateSingleContent(content string, side string) error {
	if csv.maxSizeBytes <= 0 || int64(len(content)) <= csv.maxSizeBytes {
		return nil
	}
	return common.WrapError(common.ErrInputTooLarge,
		fmt.Sprintf("%s side too large (%d bytes > %d bytes limit)", side, len(content), csv.maxSizeBytes))
}
