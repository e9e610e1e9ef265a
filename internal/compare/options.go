package compare

import (
	"fmt"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/differ"
)

// Presentation selects how a text comparison is laid out.
type Presentation string

const (
	PresentationUnified Presentation = "unified"
	PresentationSplit   Presentation = "split"
)

// ParsePresentation accepts unified or split (case-insensitive).
func ParsePresentation(s string) (Presentation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unified", "inline":
		return PresentationUnified, nil
	case "split", "side-by-side", "side_by_side":
		return PresentationSplit, nil
	}
	return "", fmt.Errorf("unknown presentation %q", s)
}

// NewDiffProcessor builds the edit-script primitive from the diff section of the config.
func NewDiffProcessor(cfg config.DiffConfig) (*differ.DiffProcessor, error) {
	return differ.NewDiffProcessor(differ.DiffConfig{
		Engine:                cfg.Engine,
		EnableSemanticCleanup: cfg.SemanticCleanup,
		NormalizeLineEndings:  cfg.NormalizeLineEndings,
	})
}

func resolveGranularity(requested differ.Granularity, fallback string) (differ.Granularity, error) {
	if requested != "" {
		return differ.ParseGranularity(string(requested))
	}
	if fallback != "" {
		return differ.ParseGranularity(fallback)
	}
	return differ.GranularityWord, nil
}

func resolveStrategy(requested differ.Strategy, fallback string, def differ.Strategy) (differ.Strategy, error) {
	if requested != "" {
		return differ.ParseStrategy(string(requested))
	}
	if fallback != "" {
		return differ.ParseStrategy(fallback)
	}
	return def, nil
}
