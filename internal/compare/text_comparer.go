package compare

import (
	"context"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/differ"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/rs/zerolog"
)

// TextRequest is one text comparison. Zero-valued options fall back to the configured defaults.
type TextRequest struct {
	Left         string             `json:"left"`
	Right        string             `json:"right"`
	Granularity  differ.Granularity `json:"granularity,omitempty"`
	Strategy     differ.Strategy    `json:"strategy,omitempty"`
	Presentation Presentation       `json:"presentation,omitempty"`
}

// TextResult holds the line alignment of two texts. Highlights is parallel to Units and
// only set for modified lines.
type TextResult struct {
	Units        []models.AlignedUnit[string] `json:"units"`
	Highlights   []*models.Highlight          `json:"highlights"`
	Stats        models.Stats                 `json:"stats"`
	Granularity  differ.Granularity           `json:"granularity"`
	Strategy     differ.Strategy              `json:"strategy"`
	Presentation Presentation                 `json:"presentation"`
}

// TextComparer runs the text pipeline: line alignment, pairing and intra-line highlights.
type TextComparer struct {
	processor     *differ.DiffProcessor
	sizeValidator *differ.ContentSizeValidator
	diffConfig    config.DiffConfig
	presentation  string
	logger        zerolog.Logger
}

// TextComparerBuilder provides a fluent interface for creating TextComparer
type TextComparerBuilder struct {
	diffConfig     config.DiffConfig
	reporterConfig config.ReporterConfig
	logger         zerolog.Logger
}

// NewTextComparerBuilder creates a new builder with default configuration
func NewTextComparerBuilder(logger zerolog.Logger) *TextComparerBuilder {
	return &TextComparerBuilder{
		diffConfig:     config.NewDefaultDiffConfig(),
		reporterConfig: config.NewDefaultReporterConfig(),
		logger:         logger,
	}
}

// WithDiffConfig sets the diff configuration
func (b *TextComparerBuilder) WithDiffConfig(cfg config.DiffConfig) *TextComparerBuilder {
	b.diffConfig = cfg
	return b
}

// WithReporterConfig sets the reporter configuration used for the default presentation
func (b *TextComparerBuilder) WithReporterConfig(cfg config.ReporterConfig) *TextComparerBuilder {
	b.reporterConfig = cfg
	return b
}

// Build creates a new TextComparer instance
func (b *TextComparerBuilder) Build() (*TextComparer, error) {
	processor, err := NewDiffProcessor(b.diffConfig)
	if err != nil {
		return nil, common.WrapError(err, "failed to create diff processor")
	}

	return &TextComparer{
		processor:     processor,
		sizeValidator: differ.NewContentSizeValidator(b.diffConfig.MaxInputSizeMB),
		diffConfig:    b.diffConfig,
		presentation:  b.reporterConfig.Presentation,
		logger:        b.logger.With().Str("component", "TextComparer").Logger(),
	}, nil
}

// Processor exposes the underlying primitive.
func (tc *TextComparer) Processor() *differ.DiffProcessor {
	return tc.processor
}

// Compare aligns two texts line by line and highlights every modified pair.
func (tc *TextComparer) Compare(ctx context.Context, req TextRequest) (*TextResult, error) {
	startTime := time.Now()

	if err := tc.sizeValidator.ValidateSize(req.Left, req.Right); err != nil {
		return nil, err
	}

	granularity, err := resolveGranularity(req.Granularity, tc.diffConfig.Granularity)
	if err != nil {
		return nil, common.NewValidationError("granularity", req.Granularity, err.Error())
	}
	strategy, err := resolveStrategy(req.Strategy, tc.diffConfig.Strategy, differ.StrategyEditScript)
	if err != nil {
		return nil, common.NewValidationError("strategy", req.Strategy, err.Error())
	}
	presentation := req.Presentation
	if presentation == "" {
		presentation = Presentation(tc.presentation)
	}
	if presentation, err = ParsePresentation(string(presentation)); err != nil {
		return nil, common.NewValidationError("presentation", req.Presentation, err.Error())
	}

	units, err := differ.AlignLines(tc.processor, req.Left, req.Right, strategy)
	if err != nil {
		return nil, common.WrapError(err, "failed to align lines")
	}

	highlights := make([]*models.Highlight, len(units))
	for i, u := range units {
		if u.Kind != models.UnitModified {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := tc.processor.Highlight(u.Left, u.Right, granularity)
		highlights[i] = &h
	}

	result := &TextResult{
		Units:        units,
		Highlights:   highlights,
		Stats:        differ.CountUnits(units),
		Granularity:  granularity,
		Strategy:     strategy,
		Presentation: presentation,
	}

	tc.logger.Debug().
		Int("units", len(units)).
		Int("added", result.Stats.Added).
		Int("removed", result.Stats.Removed).
		Int("modified", result.Stats.Modified).
		Dur("took", time.Since(startTime)).
		Msg("Text comparison finished")
	return result, nil
}
