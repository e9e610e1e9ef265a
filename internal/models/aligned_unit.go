package models

// UnitKind classifies an aligned unit.
type UnitKind string

const (
	UnitSame     UnitKind = "same"
	UnitAdded    UnitKind = "added"
	UnitRemoved  UnitKind = "removed"
	UnitModified UnitKind = "modified"
)

// AlignedUnit is one entry of an alignment between a left and a right sequence.
// Same, Added and Removed units carry Content; Modified units carry Left and Right.
// LeftIndex and RightIndex are 1-based positions in the inputs, 0 when the unit is
// absent on that side.
type AlignedUnit[T any] struct {
	Kind       UnitKind `json:"kind"`
	Content    T        `json:"content,omitempty"`
	Left       T        `json:"left,omitempty"`
	Right      T        `json:"right,omitempty"`
	LeftIndex  int      `json:"left_index,omitempty"`
	RightIndex int      `json:"right_index,omitempty"`
}

// HasLeft reports whether the unit contributes to the left projection.
func (u AlignedUnit[T]) HasLeft() bool {
	return u.Kind != UnitAdded
}

// HasRight reports whether the unit contributes to the right projection.
func (u AlignedUnit[T]) HasRight() bool {
	return u.Kind != UnitRemoved
}

// LeftValue returns the left-side value of the unit. ok is false for Added units.
func (u AlignedUnit[T]) LeftValue() (v T, ok bool) {
	switch u.Kind {
	case UnitSame, UnitRemoved:
		return u.Content, true
	case UnitModified:
		return u.Left, true
	}
	return v, false
}

// RightValue returns the right-side value of the unit. ok is false for Removed units.
func (u AlignedUnit[T]) RightValue() (v T, ok bool) {
	switch u.Kind {
	case UnitSame, UnitAdded:
		return u.Content, true
	case UnitModified:
		return u.Right, true
	}
	return v, false
}

// ProjectLeft rebuilds the left input from an alignment.
func ProjectLeft[T any](units []AlignedUnit[T]) []T {
	out := make([]T, 0, len(units))
	for _, u := range units {
		if v, ok := u.LeftValue(); ok {
			out = append(out, v)
		}
	}
	return out
}

// ProjectRight rebuilds the right input from an alignment.
func ProjectRight[T any](units []AlignedUnit[T]) []T {
	out := make([]T, 0, len(units))
	for _, u := range units {
		if v, ok := u.RightValue(); ok {
			out = append(out, v)
		}
	}
	return out
}
