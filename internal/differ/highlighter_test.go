package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MeiTetsuH/diffchecker/internal/models"
)

func TestHighlight_WordGranularity(t *testing.T) {
	for _, engine := range engines() {
		t.Run(engine, func(t *testing.T) {
			dp := newTestProcessor(t, engine)
			h := dp.Highlight("the cat sat", "the dog sat", GranularityWord)

			assert.Equal(t, "the cat sat", FragmentsText(h.Left))
			assert.Equal(t, "the dog sat", FragmentsText(h.Right))
			assert.Equal(t, []models.Fragment{
				{Text: "the ", Style: models.FragmentPlain},
				{Text: "cat", Style: models.FragmentRemoved},
				{Text: " sat", Style: models.FragmentPlain},
			}, h.Left)
			assert.Equal(t, []models.Fragment{
				{Text: "the ", Style: models.FragmentPlain},
				{Text: "dog", Style: models.FragmentAdded},
				{Text: " sat", Style: models.FragmentPlain},
			}, h.Right)
		})
	}
}

func TestHighlight_EmptySide(t *testing.T) {
	dp := newTestProcessor(t, EngineDMP)

	h := dp.Highlight("", "hello", GranularityCharacter)
	assert.Empty(t, h.Left)
	assert.Equal(t, []models.Fragment{{Text: "hello", Style: models.FragmentAdded}}, h.Right)

	h = dp.Highlight("bye", "", GranularityWord)
	assert.Equal(t, []models.Fragment{{Text: "bye", Style: models.FragmentRemoved}}, h.Left)
	assert.Empty(t, h.Right)

	assert.Equal(t, models.Highlight{}, dp.Highlight("", "", GranularityWord))
}

func TestHighlight_Consistency(t *testing.T) {
	pairs := [][2]string{
		{"Alice,30", "Alice,31"},
		{"naïve café", "naive cafe"},
		{"x", "completely different"},
		{"👍🏽 ok", "👍🏿 ok"},
	}
	for _, engine := range engines() {
		dp := newTestProcessor(t, engine)
		for _, g := range []Granularity{GranularityWord, GranularityCharacter} {
			for _, p := range pairs {
				h := dp.Highlight(p[0], p[1], g)
				assert.Equal(t, p[0], FragmentsText(h.Left), "%s/%s", engine, g)
				assert.Equal(t, p[1], FragmentsText(h.Right), "%s/%s", engine, g)
				for _, f := range h.Left {
					assert.NotEqual(t, models.FragmentAdded, f.Style)
				}
				for _, f := range h.Right {
					assert.NotEqual(t, models.FragmentRemoved, f.Style)
				}
			}
		}
	}
}
