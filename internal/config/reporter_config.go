package config

// ReporterConfig defines configuration for rendering comparisons
type ReporterConfig struct {
	Presentation string `json:"presentation,omitempty" yaml:"presentation,omitempty" validate:"omitempty,presentation"`
	Color        bool   `json:"color" yaml:"color"`
	ReportTitle  string `json:"report_title,omitempty" yaml:"report_title,omitempty"`
	OutputDir    string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
}

// NewDefaultReporterConfig creates default reporter configuration
func NewDefaultReporterConfig() ReporterConfig {
	return ReporterConfig{
		Presentation: DefaultReporterPresentation,
		Color:        DefaultReporterColor,
		ReportTitle:  DefaultReporterTitle,
	}
}
