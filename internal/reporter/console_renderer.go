package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/compare"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
)

const (
	gutterWidth  = 5 // "%4d "
	markerWidth  = 2 // "- "
	splitDivider = " | "
	ellipsis     = "…"
)

type consoleStyles struct {
	added       lipgloss.Style
	removed     lipgloss.Style
	modified    lipgloss.Style
	addedFrag   lipgloss.Style
	removedFrag lipgloss.Style
	lineNumber  lipgloss.Style
	header      lipgloss.Style
	columnLeft  lipgloss.Style
	columnRight lipgloss.Style
}

func newConsoleStyles() consoleStyles {
	return consoleStyles{
		added:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		removed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		modified:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		addedFrag:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")),
		removedFrag: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("1")),
		lineNumber:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		header:      lipgloss.NewStyle().Bold(true),
		columnLeft:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		columnRight: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	}
}

// ConsoleRenderer writes comparisons to a terminal. Widths are measured with runewidth so
// wide and combining characters keep the columns aligned.
type ConsoleRenderer struct {
	styles consoleStyles
	color  bool
	width  int
	logger zerolog.Logger
}

// NewConsoleRenderer creates a renderer for a terminal width columns wide.
func NewConsoleRenderer(cfg config.ReporterConfig, width int, logger zerolog.Logger) *ConsoleRenderer {
	if width <= 0 {
		width = DefaultConsoleWidth
	}
	if width < MinConsoleWidth {
		width = MinConsoleWidth
	}
	return &ConsoleRenderer{
		styles: newConsoleStyles(),
		color:  cfg.Color,
		width:  width,
		logger: logger.With().Str("component", "ConsoleRenderer").Logger(),
	}
}

func (cr *ConsoleRenderer) paint(style lipgloss.Style, s string) string {
	if !cr.color || s == "" {
		return s
	}
	return style.Render(s)
}

// RenderText writes a text comparison in its requested presentation.
func (cr *ConsoleRenderer) RenderText(w io.Writer, res *compare.TextResult) error {
	var b strings.Builder
	b.WriteString(cr.paint(cr.styles.header, CreateDiffSummary(res.Stats)))
	b.WriteByte('\n')

	if res.Presentation == compare.PresentationUnified {
		cr.unified(&b, res)
	} else {
		cr.split(&b, res)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (cr *ConsoleRenderer) gutter(n int) string {
	if n <= 0 {
		return strings.Repeat(" ", gutterWidth)
	}
	return cr.paint(cr.styles.lineNumber, fmt.Sprintf("%4d ", n))
}

func (cr *ConsoleRenderer) unified(b *strings.Builder, res *compare.TextResult) {
	for i, u := range res.Units {
		switch u.Kind {
		case models.UnitSame:
			b.WriteString(cr.gutter(u.LeftIndex) + cr.gutter(u.RightIndex) + compare.PrefixSame + u.Content + "\n")
		case models.UnitRemoved:
			b.WriteString(cr.gutter(u.LeftIndex) + cr.gutter(0) + cr.paint(cr.styles.removed, compare.PrefixRemoved+u.Content) + "\n")
		case models.UnitAdded:
			b.WriteString(cr.gutter(0) + cr.gutter(u.RightIndex) + cr.paint(cr.styles.added, compare.PrefixAdded+u.Content) + "\n")
		case models.UnitModified:
			left, right := cr.modifiedSides(u, res.Highlights[i], -1)
			b.WriteString(cr.gutter(u.LeftIndex) + cr.gutter(0) + cr.paint(cr.styles.removed, compare.PrefixRemoved) + left + "\n")
			b.WriteString(cr.gutter(0) + cr.gutter(u.RightIndex) + cr.paint(cr.styles.added, compare.PrefixAdded) + right + "\n")
		}
	}
}

func (cr *ConsoleRenderer) split(b *strings.Builder, res *compare.TextResult) {
	colWidth := (cr.width - runewidth.StringWidth(splitDivider)) / 2
	textWidth := colWidth - gutterWidth - markerWidth

	for i, u := range res.Units {
		var left, right string
		switch u.Kind {
		case models.UnitSame:
			left = cr.gutter(u.LeftIndex) + compare.PrefixSame + fit(u.Content, textWidth)
			right = cr.gutter(u.RightIndex) + compare.PrefixSame + fit(u.Content, textWidth)
		case models.UnitRemoved:
			left = cr.gutter(u.LeftIndex) + cr.paint(cr.styles.removed, compare.PrefixRemoved+fit(u.Content, textWidth))
			right = strings.Repeat(" ", colWidth)
		case models.UnitAdded:
			left = strings.Repeat(" ", colWidth)
			right = cr.gutter(u.RightIndex) + cr.paint(cr.styles.added, compare.PrefixAdded+fit(u.Content, textWidth))
		case models.UnitModified:
			l, r := cr.modifiedSides(u, res.Highlights[i], textWidth)
			left = cr.gutter(u.LeftIndex) + cr.paint(cr.styles.modified, compare.PrefixRemoved) + l
			right = cr.gutter(u.RightIndex) + cr.paint(cr.styles.modified, compare.PrefixAdded) + r
		}
		b.WriteString(left + splitDivider + strings.TrimRight(right, " ") + "\n")
	}
}

// modifiedSides renders both sides of a modified line. A width below zero disables fitting.
func (cr *ConsoleRenderer) modifiedSides(u models.AlignedUnit[string], h *models.Highlight, width int) (string, string) {
	if h == nil {
		return fitOrKeep(u.Left, width), fitOrKeep(u.Right, width)
	}
	return cr.fragments(h.Left, width), cr.fragments(h.Right, width)
}

// fragments styles fragments, truncating and padding the visible text to width.
func (cr *ConsoleRenderer) fragments(frags []models.Fragment, width int) string {
	var b strings.Builder
	used := 0
	for _, f := range frags {
		text := f.Text
		if width >= 0 {
			remaining := width - used
			if remaining <= 0 {
				break
			}
			if runewidth.StringWidth(text) > remaining {
				text = runewidth.Truncate(text, remaining, ellipsis)
			}
		}
		used += runewidth.StringWidth(text)

		switch f.Style {
		case models.FragmentAdded:
			b.WriteString(cr.paint(cr.styles.addedFrag, text))
		case models.FragmentRemoved:
			b.WriteString(cr.paint(cr.styles.removedFrag, text))
		default:
			b.WriteString(text)
		}
	}
	if width >= 0 && used < width {
		b.WriteString(strings.Repeat(" ", width-used))
	}
	return b.String()
}

// fit truncates or pads s to exactly width terminal cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, ellipsis)
	}
	return runewidth.FillRight(s, width)
}

func fitOrKeep(s string, width int) string {
	if width < 0 {
		return s
	}
	return fit(s, width)
}

// RenderTable writes a table comparison as aligned columns. Modified rows take two lines.
func (cr *ConsoleRenderer) RenderTable(w io.Writer, res *compare.TableResult) error {
	widths := make([]int, len(res.CombinedHeaders))
	for i, name := range res.CombinedHeaders {
		widths[i] = runewidth.StringWidth(name)
	}
	measure := func(row models.Row) {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i].String()))
			}
		}
	}
	for _, row := range res.Rows {
		measure(row.Content)
		measure(row.Left)
		measure(row.Right)
	}
	for i := range widths {
		widths[i] = min(max(widths[i], 1), MaxTableCellWidth)
	}

	var b strings.Builder
	b.WriteString(cr.paint(cr.styles.header, CreateDiffSummary(res.Stats)))
	b.WriteByte('\n')

	header := make([]string, len(res.CombinedHeaders))
	for i, col := range res.Columns {
		cell := fit(col.Name, widths[i])
		switch col.Status {
		case models.ColumnLeftOnly:
			cell = cr.paint(cr.styles.columnLeft, cell)
		case models.ColumnRightOnly:
			cell = cr.paint(cr.styles.columnRight, cell)
		default:
			cell = cr.paint(cr.styles.header, cell)
		}
		header[i] = cell
	}
	b.WriteString(strings.Repeat(" ", markerWidth) + strings.Join(header, splitDivider) + "\n")

	for _, row := range res.Rows {
		switch row.Kind {
		case models.UnitSame:
			b.WriteString(compare.PrefixSame + cr.cells(row.Content, widths) + "\n")
		case models.UnitRemoved:
			b.WriteString(cr.paint(cr.styles.removed, compare.PrefixRemoved+cr.cells(row.Content, widths)) + "\n")
		case models.UnitAdded:
			b.WriteString(cr.paint(cr.styles.added, compare.PrefixAdded+cr.cells(row.Content, widths)) + "\n")
		case models.UnitModified:
			b.WriteString(cr.paint(cr.styles.modified, compare.PrefixRemoved) + cr.cellsSide(row, widths, true) + "\n")
			b.WriteString(cr.paint(cr.styles.modified, compare.PrefixAdded) + cr.cellsSide(row, widths, false) + "\n")
			if row.RawOnly {
				b.WriteString(strings.Repeat(" ", markerWidth) + cr.paint(cr.styles.header, "("+RawOnlyNote+")") + "\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (cr *ConsoleRenderer) cells(row models.Row, widths []int) string {
	out := make([]string, len(widths))
	for i, width := range widths {
		var s string
		if i < len(row) {
			s = row[i].String()
		}
		out[i] = fit(s, width)
	}
	return strings.TrimRight(strings.Join(out, splitDivider), " ")
}

func (cr *ConsoleRenderer) cellsSide(row compare.TableRow, widths []int, left bool) string {
	out := make([]string, len(widths))
	for i, width := range widths {
		if i < len(row.Cells) && row.Cells[i].Changed && row.Cells[i].Highlight != nil {
			frags := row.Cells[i].Highlight.Right
			if left {
				frags = row.Cells[i].Highlight.Left
			}
			out[i] = cr.fragments(frags, width)
			continue
		}
		src := row.Right
		if left {
			src = row.Left
		}
		var s string
		if i < len(src) {
			s = src[i].String()
		}
		out[i] = fit(s, width)
	}
	return strings.TrimRight(strings.Join(out, splitDivider), " ")
}

// RenderHistory lists saved comparisons, newest first.
func (cr *ConsoleRenderer) RenderHistory(w io.Writer, recs []models.SavedComparison) error {
	if len(recs) == 0 {
		_, err := io.WriteString(w, "No saved comparisons\n")
		return err
	}
	var b strings.Builder
	for _, rec := range recs {
		fmt.Fprintf(&b, "%s  %-5s  %s  %s\n",
			rec.ID, rec.Kind, rec.CreatedAt.Local().Format("2006-01-02 15:04"), cr.paint(cr.styles.header, rec.Name))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
