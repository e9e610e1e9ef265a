package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/MeiTetsuH/diffchecker/internal/compare"
)

const (
	modeText    = "text"
	modeTable   = "table"
	modeServe   = "serve"
	modeHistory = "history"
)

type AppFlags struct {
	GlobalConfigFile string
	WriteConfig      string
	Mode             string

	Left         string
	Right        string
	Granularity  string
	Strategy     string
	Presentation string
	LeftSheet    string
	RightSheet   string
	LeftHeader   *int
	RightHeader  *int
	AsText       bool
	Format       string

	Save      string
	HTMLOut   string
	Width     int
	NoColor   bool
	Listen    string
	HotReload bool
	Search    string
	Delete    string
	Export    string
	Import    string
}

// headerFlag is an optional integer flag: nil until set on the command line.
type headerFlag struct {
	value **int
}

func (h headerFlag) String() string {
	if h.value == nil || *h.value == nil {
		return ""
	}
	return strconv.Itoa(**h.value)
}

func (h headerFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("header row must be an integer: %w", err)
	}
	if n < -1 {
		return fmt.Errorf("header row must be -1 or greater, got %d", n)
	}
	*h.value = &n
	return nil
}

// ParseFlags parses args (without the program name). Short aliases are accepted for
// the common flags; the long form wins when both are given.
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("diffchecker", flag.ContinueOnError)
	fs.SetOutput(output)

	flags := AppFlags{}

	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	fs.StringVar(&flags.WriteConfig, "write-config", "", "Write the effective configuration to this YAML/JSON file; -mode becomes optional")

	modeFlag := fs.String("mode", "", "Mode to run the tool: text, table, serve or history")
	modeFlagAlias := fs.String("m", "", "Alias for -mode")

	left := fs.String("left", "", "Original input file")
	leftAlias := fs.String("l", "", "Alias for -left")
	right := fs.String("right", "", "Changed input file")
	rightAlias := fs.String("r", "", "Alias for -right")

	fs.StringVar(&flags.Granularity, "granularity", "", "Highlight granularity: word, character or line (overrides config)")
	fs.StringVar(&flags.Strategy, "strategy", "", "Alignment strategy: positional or edit_script (overrides config)")
	fs.StringVar(&flags.Presentation, "presentation", "", "Text presentation: split or unified (overrides config)")
	fs.StringVar(&flags.LeftSheet, "left-sheet", "", "Sheet of the left workbook (default: first sheet)")
	fs.StringVar(&flags.RightSheet, "right-sheet", "", "Sheet of the right workbook (default: first sheet)")
	fs.Var(headerFlag{&flags.LeftHeader}, "left-header", "0-based header row of the left table, -1 for none")
	fs.Var(headerFlag{&flags.RightHeader}, "right-header", "0-based header row of the right table, -1 for none")
	fs.BoolVar(&flags.AsText, "as-text", false, "Table mode: compare the sheets line by line as CSV text")
	fs.StringVar(&flags.Format, "format", "", "Print the text comparison as unified or csv instead of the styled view")

	fs.StringVar(&flags.Save, "save", "", "Save the comparison under this name")
	fs.StringVar(&flags.HTMLOut, "html", "", "Also write an HTML report to this path")
	fs.IntVar(&flags.Width, "width", 0, "Terminal width for console output")
	fs.BoolVar(&flags.NoColor, "no-color", false, "Disable colored console output")
	fs.StringVar(&flags.Listen, "listen", "", "Listen address in serve mode (overrides config)")
	fs.BoolVar(&flags.HotReload, "hot-reload", false, "Reload the configuration file when it changes (serve mode)")

	fs.StringVar(&flags.Search, "q", "", "Filter history by name")
	fs.StringVar(&flags.Delete, "history-delete", "", "Delete the saved comparison with this ID")
	fs.StringVar(&flags.Export, "export", "", "Export saved comparisons to a parquet file, or - for a timestamped file in the export directory")
	fs.StringVar(&flags.Import, "import", "", "Import saved comparisons from a parquet file")

	if err := fs.Parse(args); err != nil {
		return flags, err
	}

	flags.GlobalConfigFile = firstSet(*globalConfigFile, *globalConfigFileAlias)
	flags.Mode = firstSet(*modeFlag, *modeFlagAlias)
	flags.Left = firstSet(*left, *leftAlias)
	flags.Right = firstSet(*right, *rightAlias)

	// Positional arguments stand in for -left and -right.
	rest := fs.Args()
	if flags.Left == "" && len(rest) > 0 {
		flags.Left, rest = rest[0], rest[1:]
	}
	if flags.Right == "" && len(rest) > 0 {
		flags.Right = rest[0]
	}

	switch flags.Mode {
	case "":
		if flags.WriteConfig != "" {
			return flags, nil
		}
		return flags, fmt.Errorf("-mode is required (%s, %s, %s or %s)", modeText, modeTable, modeServe, modeHistory)
	case modeText, modeTable:
		if flags.Left == "" || flags.Right == "" {
			return flags, fmt.Errorf("%s mode needs both -left and -right", flags.Mode)
		}
		if flags.Format != "" {
			if _, err := compare.ParseExportFormat(flags.Format); err != nil {
				return flags, err
			}
		}
	case modeServe, modeHistory:
		if flags.Format != "" || flags.AsText {
			return flags, fmt.Errorf("-format and -as-text apply to %s and %s modes only", modeText, modeTable)
		}
	default:
		return flags, fmt.Errorf("unknown mode %q", flags.Mode)
	}

	return flags, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
