package differ

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// UnitCodec tells the aligner how to compare units. Key is used by the edit-script
// strategy, Equal by the positional one. Units with equal keys must be Equal.
type UnitCodec[T any] struct {
	Key   func(T) string
	Equal func(a, b T) bool
}

// LineCodec compares text lines by value.
func LineCodec() UnitCodec[string] {
	return UnitCodec[string]{
		Key:   func(s string) string { return s },
		Equal: func(a, b string) bool { return a == b },
	}
}

// RowCodec compares table rows structurally.
func RowCodec() UnitCodec[models.Row] {
	return UnitCodec[models.Row]{
		Key:   models.Row.Key,
		Equal: models.Row.Equal,
	}
}

// Align classifies every unit of left and right as same, added, removed or modified.
// Units are emitted in increasing original-index order on both sides.
func Align[T any](dp *DiffProcessor, left, right []T, strategy Strategy, codec UnitCodec[T]) ([]models.AlignedUnit[T], error) {
	switch strategy {
	case StrategyPositional:
		if codec.Equal == nil {
			return nil, common.NewValidationError("codec.equal", nil, "positional alignment needs an equality function")
		}
		return alignPositional(left, right, codec.Equal), nil
	case StrategyEditScript, "":
		if codec.Key == nil {
			return nil, common.NewValidationError("codec.key", nil, "edit-script alignment needs a key function")
		}
		if dp == nil {
			return nil, common.NewValidationError("processor", nil, "edit-script alignment needs a diff processor")
		}
		return pairRuns(alignEditScript(dp, left, right, codec.Key)), nil
	}
	return nil, common.NewValidationError("strategy", string(strategy), fmt.Sprintf("must be %s or %s", StrategyPositional, StrategyEditScript))
}

// AlignLines aligns two texts line by line.
func AlignLines(dp *DiffProcessor, left, right string, strategy Strategy) ([]models.AlignedUnit[string], error) {
	normalize := dp != nil && dp.config.NormalizeLineEndings
	return Align(dp, SplitLines(left, normalize), SplitLines(right, normalize), strategy, LineCodec())
}

// alignPositional walks both sides by index. There is no re-synchronization, so one
// inserted unit turns every following pair into Modified.
func alignPositional[T any](left, right []T, eq func(a, b T) bool) []models.AlignedUnit[T] {
	n := max(len(left), len(right))
	units := make([]models.AlignedUnit[T], 0, n)

	for i := 0; i < n; i++ {
		switch {
		case i >= len(left):
			units = append(units, models.AlignedUnit[T]{Kind: models.UnitAdded, Content: right[i], RightIndex: i + 1})
		case i >= len(right):
			units = append(units, models.AlignedUnit[T]{Kind: models.UnitRemoved, Content: left[i], LeftIndex: i + 1})
		case eq(left[i], right[i]):
			units = append(units, models.AlignedUnit[T]{Kind: models.UnitSame, Content: left[i], LeftIndex: i + 1, RightIndex: i + 1})
		default:
			units = append(units, models.AlignedUnit[T]{Kind: models.UnitModified, Left: left[i], Right: right[i], LeftIndex: i + 1, RightIndex: i + 1})
		}
	}
	return units
}

// alignEditScript runs the line primitive over interned unit keys and expands each
// segment back into the original units.
func alignEditScript[T any](dp *DiffProcessor, left, right []T, key func(T) string) []models.AlignedUnit[T] {
	intern := make(map[string]string)
	keys := func(items []T) []string {
		out := make([]string, len(items))
		for i, item := range items {
			k := key(item)
			id, ok := intern[k]
			if !ok {
				id = strconv.Itoa(len(intern))
				intern[k] = id
			}
			out[i] = id
		}
		return out
	}

	segments := dp.UnitScript(keys(left), keys(right))

	units := make([]models.AlignedUnit[T], 0, max(len(left), len(right)))
	li, ri := 0, 0
	for _, seg := range segments {
		for range expandLines(seg.Value) {
			switch {
			case seg.Removed:
				units = append(units, models.AlignedUnit[T]{Kind: models.UnitRemoved, Content: left[li], LeftIndex: li + 1})
				li++
			case seg.Added:
				units = append(units, models.AlignedUnit[T]{Kind: models.UnitAdded, Content: right[ri], RightIndex: ri + 1})
				ri++
			default:
				units = append(units, models.AlignedUnit[T]{Kind: models.UnitSame, Content: left[li], LeftIndex: li + 1, RightIndex: ri + 1})
				li++
				ri++
			}
		}
	}
	return units
}

// expandLines splits a segment value into its lines, dropping the empty artifact after
// the final terminator.
func expandLines(value string) []string {
	if value == "" {
		return nil
	}
	lines := strings.Split(value, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// pairRuns merges each run of Removed units immediately followed by a run of Added
// units into Modified units, front to back, up to the shorter run's length. Leftover
// removals come before leftover additions.
func pairRuns[T any](units []models.AlignedUnit[T]) []models.AlignedUnit[T] {
	out := make([]models.AlignedUnit[T], 0, len(units))

	for i := 0; i < len(units); {
		if units[i].Kind != models.UnitRemoved {
			out = append(out, units[i])
			i++
			continue
		}

		delStart := i
		for i < len(units) && units[i].Kind == models.UnitRemoved {
			i++
		}
		removed := units[delStart:i]

		insStart := i
		for i < len(units) && units[i].Kind == models.UnitAdded {
			i++
		}
		added := units[insStart:i]

		paired := min(len(removed), len(added))
		for k := 0; k < paired; k++ {
			out = append(out, models.AlignedUnit[T]{
				Kind:       models.UnitModified,
				Left:       removed[k].Content,
				Right:      added[k].Content,
				LeftIndex:  removed[k].LeftIndex,
				RightIndex: added[k].RightIndex,
			})
		}
		out = append(out, removed[paired:]...)
		out = append(out, added[paired:]...)
	}
	return out
}
