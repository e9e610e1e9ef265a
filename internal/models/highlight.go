package models

// FragmentStyle says how a highlight fragment is drawn.
type FragmentStyle string

const (
	FragmentPlain   FragmentStyle = "plain"
	FragmentAdded   FragmentStyle = "added"
	FragmentRemoved FragmentStyle = "removed"
)

// Fragment is a styled piece of one side of a highlighted pair.
type Fragment struct {
	Text  string        `json:"text"`
	Style FragmentStyle `json:"style"`
}

// Highlight is the intra-unit rendering of a modified pair.
type Highlight struct {
	Left     []Fragment    `json:"left"`
	Right    []Fragment    `json:"right"`
	Segments []DiffSegment `json:"segments,omitempty"`
}

// Stats counts aligned units by kind.
type Stats struct {
	Same     int `json:"same"`
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
}

// LeftChanged counts units that differ on the left side.
func (s Stats) LeftChanged() int { return s.Removed + s.Modified }

// RightChanged counts units that differ on the right side.
func (s Stats) RightChanged() int { return s.Added + s.Modified }

// IsIdentical reports whether nothing changed.
func (s Stats) IsIdentical() bool {
	return s.Added == 0 && s.Removed == 0 && s.Modified == 0
}
