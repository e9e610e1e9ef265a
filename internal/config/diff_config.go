package config

// DiffConfig controls the edit-script primitive and the text pipeline
type DiffConfig struct {
	Engine               string `json:"engine,omitempty" yaml:"engine,omitempty" validate:"omitempty,engine"`
	Granularity          string `json:"granularity,omitempty" yaml:"granularity,omitempty" validate:"omitempty,granularity"`
	Strategy             string `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,strategy"`
	SemanticCleanup      bool   `json:"semantic_cleanup" yaml:"semantic_cleanup"`
	MaxInputSizeMB       int    `json:"max_input_size_mb,omitempty" yaml:"max_input_size_mb,omitempty" validate:"min=0"`
	NormalizeLineEndings bool   `json:"normalize_line_endings" yaml:"normalize_line_endings"`
}

// NewDefaultDiffConfig creates default diff configuration
func NewDefaultDiffConfig() DiffConfig {
	return DiffConfig{
		Engine:               DefaultDiffEngine,
		Granularity:          DefaultDiffGranularity,
		Strategy:             DefaultDiffStrategy,
		SemanticCleanup:      false,
		MaxInputSizeMB:       DefaultDiffMaxInputSizeMB,
		NormalizeLineEndings: DefaultDiffNormalizeLineEndings,
	}
}

// TableConfig selects sheets and header rows for tabular comparisons.
// A header row of -1 means the sheet has no header row.
type TableConfig struct {
	LeftHeaderRow  int    `json:"left_header_row" yaml:"left_header_row" validate:"min=-1"`
	RightHeaderRow int    `json:"right_header_row" yaml:"right_header_row" validate:"min=-1"`
	LeftSheet      string `json:"left_sheet,omitempty" yaml:"left_sheet,omitempty"`
	RightSheet     string `json:"right_sheet,omitempty" yaml:"right_sheet,omitempty"`
	Strategy       string `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,strategy"`
}

// NewDefaultTableConfig creates default table configuration
func NewDefaultTableConfig() TableConfig {
	return TableConfig{
		LeftHeaderRow:  DefaultTableHeaderRow,
		RightHeaderRow: DefaultTableHeaderRow,
		Strategy:       "positional",
	}
}
