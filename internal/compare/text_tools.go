package compare

import (
	"fmt"
	"slices"
	"strings"
)

// TextTool is an in-place transformation offered next to the editors.
type TextTool string

const (
	ToolLowercase         TextTool = "lowercase"
	ToolSortLines         TextTool = "sort_lines"
	ToolReplaceLineBreaks TextTool = "replace_line_breaks"
	ToolTrimWhitespace    TextTool = "trim"
)

// Lowercase maps text to lower case.
func Lowercase(text string) string {
	return strings.ToLower(text)
}

// SortLines sorts the "\n"-separated lines of text by byte order.
func SortLines(text string) string {
	lines := strings.Split(text, "\n")
	slices.Sort(lines)
	return strings.Join(lines, "\n")
}

// ReplaceLineBreaks turns every "\n" into a single space.
func ReplaceLineBreaks(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

// TrimWhitespace strips leading and trailing whitespace.
func TrimWhitespace(text string) string {
	return strings.TrimSpace(text)
}

// ApplyTool runs the named tool over text.
func ApplyTool(tool TextTool, text string) (string, error) {
	switch tool {
	case ToolLowercase:
		return Lowercase(text), nil
	case ToolSortLines:
		return SortLines(text), nil
	case ToolReplaceLineBreaks:
		return ReplaceLineBreaks(text), nil
	case ToolTrimWhitespace:
		return TrimWhitespace(text), nil
	}
	return "", fmt.Errorf("unknown text tool %q", tool)
}
