package models

import "strings"

// DiffSegment is one run of an edit script. At most one of Added and Removed is set.
type DiffSegment struct {
	Value   string `json:"value"`
	Added   bool   `json:"added,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

// IsCommon reports whether the segment is present on both sides.
func (s DiffSegment) IsCommon() bool {
	return !s.Added && !s.Removed
}

// Original concatenates every segment that is not an insertion.
func Original(segments []DiffSegment) string {
	var sb strings.Builder
	for _, s := range segments {
		if !s.Added {
			sb.WriteString(s.Value)
		}
	}
	return sb.String()
}

// Changed concatenates every segment that is not a deletion.
func Changed(segments []DiffSegment) string {
	var sb strings.Builder
	for _, s := range segments {
		if !s.Removed {
			sb.WriteString(s.Value)
		}
	}
	return sb.String()
}
