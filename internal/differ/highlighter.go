package differ

import (
	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// Highlight renders the intra-unit differences of a modified pair. Both sides come from
// one segment list: the left keeps every non-added segment, the right every non-removed one.
func (dp *DiffProcessor) Highlight(left, right string, g Granularity) models.Highlight {
	switch {
	case left == "" && right == "":
		return models.Highlight{}
	case left == "":
		return models.Highlight{
			Right:    []models.Fragment{{Text: right, Style: models.FragmentAdded}},
			Segments: []models.DiffSegment{{Value: right, Added: true}},
		}
	case right == "":
		return models.Highlight{
			Left:     []models.Fragment{{Text: left, Style: models.FragmentRemoved}},
			Segments: []models.DiffSegment{{Value: left, Removed: true}},
		}
	}

	segments := dp.EditScript(left, right, g)
	return HighlightSegments(segments)
}

// HighlightSegments splits a segment list into left and right fragments.
func HighlightSegments(segments []models.DiffSegment) models.Highlight {
	h := models.Highlight{Segments: segments}
	for _, seg := range segments {
		if !seg.Added {
			style := models.FragmentPlain
			if seg.Removed {
				style = models.FragmentRemoved
			}
			h.Left = appendFragment(h.Left, seg.Value, style)
		}
		if !seg.Removed {
			style := models.FragmentPlain
			if seg.Added {
				style = models.FragmentAdded
			}
			h.Right = appendFragment(h.Right, seg.Value, style)
		}
	}
	return h
}

func appendFragment(frags []models.Fragment, text string, style models.FragmentStyle) []models.Fragment {
	if text == "" {
		return frags
	}
	if n := len(frags); n > 0 && frags[n-1].Style == style {
		frags[n-1].Text += text
		return frags
	}
	return append(frags, models.Fragment{Text: text, Style: style})
}

// FragmentsText concatenates fragment texts.
func FragmentsText(frags []models.Fragment) string {
	var n int
	for _, f := range frags {
		n += len(f.Text)
	}
	buf := make([]byte, 0, n)
	for _, f := range frags {
		buf = append(buf, f.Text...)
	}
	return string(buf)
}
