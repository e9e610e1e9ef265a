package reporter

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// FragmentsHTML renders highlight fragments, wrapping added text in <ins> and removed text in <del>.
func FragmentsHTML(frags []models.Fragment) template.HTML {
	var b strings.Builder
	for _, f := range frags {
		escaped := template.HTMLEscapeString(f.Text)
		switch f.Style {
		case models.FragmentAdded:
			b.WriteString("<ins>")
			b.WriteString(escaped)
			b.WriteString("</ins>")
		case models.FragmentRemoved:
			b.WriteString("<del>")
			b.WriteString(escaped)
			b.WriteString("</del>")
		default:
			b.WriteString(escaped)
		}
	}
	return template.HTML(b.String())
}

// PlainHTML escapes a whole line without highlighting.
func PlainHTML(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

// CreateDiffSummary describes stats in one line, e.g. "2 added, 1 removed, 3 modified".
func CreateDiffSummary(stats models.Stats) string {
	if stats.IsIdentical() {
		return "No changes"
	}
	var parts []string
	if stats.Added > 0 {
		parts = append(parts, pluralize(stats.Added, "added"))
	}
	if stats.Removed > 0 {
		parts = append(parts, pluralize(stats.Removed, "removed"))
	}
	if stats.Modified > 0 {
		parts = append(parts, pluralize(stats.Modified, "modified"))
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, what string) string {
	return fmt.Sprintf("%d %s", n, what)
}
