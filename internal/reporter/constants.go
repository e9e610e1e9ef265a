package reporter

const (
	// Embedded template and asset paths
	BaseTemplatePath   = "templates/base.html.tmpl"
	TextTemplatePath   = "templates/text_report.html.tmpl"
	TableTemplatePath  = "templates/table_report.html.tmpl"
	IndexTemplatePath  = "templates/index.html.tmpl"
	EmbeddedCSSPath    = "assets/css/report.css"
	DefaultReportTitle = "Diffchecker"

	// Page names
	PageText  = "text"
	PageTable = "table"
	PageIndex = "index"

	// Console layout
	DefaultConsoleWidth = 120
	MinConsoleWidth     = 40
	MaxTableCellWidth   = 30

	// RawOnlyNote explains a modified row with no changed cell under the combined columns.
	RawOnlyNote = "differs outside the labelled columns"
)
