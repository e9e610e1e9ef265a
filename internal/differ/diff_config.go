package differ

import (
	"fmt"
	"strings"
)

// Granularity selects the token unit of an edit script.
type Granularity string

const (
	GranularityLine      Granularity = "line"
	GranularityWord      Granularity = "word"
	GranularityCharacter Granularity = "character"
)

// ParseGranularity accepts line, word or character (case-insensitive). "char" is accepted as an alias.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "lines":
		return GranularityLine, nil
	case "word", "words":
		return GranularityWord, nil
	case "character", "char", "chars", "characters":
		return GranularityCharacter, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// Strategy selects how two unit sequences are aligned.
type Strategy string

const (
	StrategyPositional Strategy = "positional"
	StrategyEditScript Strategy = "edit_script"
)

// ParseStrategy accepts positional or edit_script.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positional":
		return StrategyPositional, nil
	case "edit_script", "edit-script", "editscript":
		return StrategyEditScript, nil
	}
	return "", fmt.Errorf("unknown alignment strategy %q", s)
}

// Engine names accepted by NewDiffProcessor.
const (
	EngineDMP   = "dmp"
	EngineMyers = "myers"
)

// DiffConfig holds configuration for the edit-script primitive
type DiffConfig struct {
	Engine                string
	EnableSemanticCleanup bool // character granularity only
	NormalizeLineEndings  bool
}

// DefaultDiffConfig returns default configuration
func DefaultDiffConfig() DiffConfig {
	return DiffConfig{
		Engine:                EngineDMP,
		EnableSemanticCleanup: false,
		NormalizeLineEndings:  true,
	}
}
