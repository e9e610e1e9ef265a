package reporter

import (
	"html/template"
	"strconv"
	"strings"
	"time"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"joinStrings": func(s []string, sep string) string {
			return strings.Join(s, sep)
		},
		"formatTime": func(t time.Time, layout string) string {
			if t.IsZero() {
				return "N/A"
			}
			return t.Format(layout)
		},
		"lineNo": lineNumber,
	}
}

// lineNumber renders a 1-based position; absent positions stay blank.
func lineNumber(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
