package differ

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeiTetsuH/diffchecker/internal/models"
)

func newTestProcessor(t *testing.T, engine string) *DiffProcessor {
	t.Helper()
	cfg := DefaultDiffConfig()
	cfg.Engine = engine
	dp, err := NewDiffProcessor(cfg)
	require.NoError(t, err)
	return dp
}

func engines() []string {
	return []string{EngineDMP, EngineMyers}
}

func same(s string, l, r int) models.AlignedUnit[string] {
	return models.AlignedUnit[string]{Kind: models.UnitSame, Content: s, LeftIndex: l, RightIndex: r}
}

func added(s string, r int) models.AlignedUnit[string] {
	return models.AlignedUnit[string]{Kind: models.UnitAdded, Content: s, RightIndex: r}
}

func removed(s string, l int) models.AlignedUnit[string] {
	return models.AlignedUnit[string]{Kind: models.UnitRemoved, Content: s, LeftIndex: l}
}

func modified(left, right string, l, r int) models.AlignedUnit[string] {
	return models.AlignedUnit[string]{Kind: models.UnitModified, Left: left, Right: right, LeftIndex: l, RightIndex: r}
}

func TestAlignLines_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		left, right string
		want        []models.AlignedUnit[string]
	}{
		{
			name:  "single changed line becomes modified",
			left:  "a\nb\nc",
			right: "a\nx\nc",
			want:  []models.AlignedUnit[string]{same("a", 1, 1), modified("b", "x", 2, 2), same("c", 3, 3)},
		},
		{
			name:  "appended line",
			left:  "a\nb",
			right: "a\nb\nc",
			want:  []models.AlignedUnit[string]{same("a", 1, 1), same("b", 2, 2), added("c", 3)},
		},
		{
			name:  "empty left",
			left:  "",
			right: "hello",
			want:  []models.AlignedUnit[string]{added("hello", 1)},
		},
		{
			name:  "empty right",
			left:  "bye\nnow",
			right: "",
			want:  []models.AlignedUnit[string]{removed("bye", 1), removed("now", 2)},
		},
		{
			name:  "both empty",
			left:  "",
			right: "",
			want:  []models.AlignedUnit[string]{},
		},
		{
			name:  "trailing newline does not add a line",
			left:  "a\nb\n",
			right: "a\nb",
			want:  []models.AlignedUnit[string]{same("a", 1, 1), same("b", 2, 2)},
		},
		{
			name:  "crlf normalized",
			left:  "a\r\nb\r\n",
			right: "a\nb\n",
			want:  []models.AlignedUnit[string]{same("a", 1, 1), same("b", 2, 2)},
		},
	}

	for _, engine := range engines() {
		dp := newTestProcessor(t, engine)
		for _, tt := range tests {
			t.Run(engine+"/"+tt.name, func(t *testing.T) {
				got, err := AlignLines(dp, tt.left, tt.right, StrategyEditScript)
				require.NoError(t, err)
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("AlignLines mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestAlign_PairingUnequalRuns(t *testing.T) {
	for _, engine := range engines() {
		t.Run(engine, func(t *testing.T) {
			dp := newTestProcessor(t, engine)
			got, err := AlignLines(dp, "a\nb1\nb2\nz", "a\nc1\nc2\nc3\nz", StrategyEditScript)
			require.NoError(t, err)

			want := []models.AlignedUnit[string]{
				same("a", 1, 1),
				modified("b1", "c1", 2, 2),
				modified("b2", "c2", 3, 3),
				added("c3", 4),
				same("z", 4, 5),
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPairRuns(t *testing.T) {
	t.Run("more removals than additions", func(t *testing.T) {
		in := []models.AlignedUnit[string]{removed("a", 1), removed("b", 2), removed("c", 3), added("x", 1), same("s", 4, 2)}
		want := []models.AlignedUnit[string]{modified("a", "x", 1, 1), removed("b", 2), removed("c", 3), same("s", 4, 2)}
		assert.Empty(t, cmp.Diff(want, pairRuns(in)))
	})

	t.Run("additions without preceding removals stay added", func(t *testing.T) {
		in := []models.AlignedUnit[string]{same("s", 1, 1), added("x", 2), removed("a", 2)}
		assert.Empty(t, cmp.Diff(in, pairRuns(in)))
	})

	t.Run("separate blocks pair independently", func(t *testing.T) {
		in := []models.AlignedUnit[string]{removed("a", 1), added("x", 1), same("s", 2, 2), removed("b", 3), added("y", 3), added("z", 4)}
		want := []models.AlignedUnit[string]{modified("a", "x", 1, 1), same("s", 2, 2), modified("b", "y", 3, 3), added("z", 4)}
		assert.Empty(t, cmp.Diff(want, pairRuns(in)))
	})
}

func TestAlign_PositionalRows(t *testing.T) {
	row := func(cells ...string) models.Row {
		r := make(models.Row, len(cells))
		for i, c := range cells {
			r[i] = models.TextCell(c)
		}
		return r
	}

	left := []models.Row{row("1", "x"), row("2", "y")}
	right := []models.Row{row("1", "x"), row("2", "z"), row("3", "w")}

	got, err := Align(nil, left, right, StrategyPositional, RowCodec())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, models.UnitSame, got[0].Kind)
	assert.Equal(t, models.UnitModified, got[1].Kind)
	assert.True(t, got[1].Left.Equal(row("2", "y")))
	assert.True(t, got[1].Right.Equal(row("2", "z")))
	assert.Equal(t, models.UnitAdded, got[2].Kind)
	assert.True(t, got[2].Content.Equal(row("3", "w")))
	assert.Equal(t, 3, got[2].RightIndex)
	assert.Zero(t, got[2].LeftIndex)

	again, err := Align(nil, left, right, StrategyPositional, RowCodec())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(got, again), "positional alignment must be deterministic")
}

func TestAlign_PositionalDoesNotResynchronize(t *testing.T) {
	got, err := Align(nil, []string{"a", "b", "c"}, []string{"new", "a", "b", "c"}, StrategyPositional, LineCodec())
	require.NoError(t, err)
	stats := CountUnits(got)
	assert.Equal(t, models.Stats{Modified: 3, Added: 1}, stats)
}

func TestAlign_EditScriptRows(t *testing.T) {
	dp := newTestProcessor(t, EngineDMP)
	left := []models.Row{{models.TextCell("a"), models.NumberCell(1)}, {models.TextCell("b"), models.NumberCell(2)}}
	right := []models.Row{{models.TextCell("new")}, {models.TextCell("a"), models.NumberCell(1.0)}, {models.TextCell("b"), models.NumberCell(2)}}

	got, err := Align(dp, left, right, StrategyEditScript, RowCodec())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Same: 2, Added: 1}, CountUnits(got))
	assert.Equal(t, models.UnitAdded, got[0].Kind)
}

func TestAlign_UnknownStrategy(t *testing.T) {
	_, err := Align(nil, []string{"a"}, []string{"b"}, Strategy("fuzzy"), LineCodec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy")
}

func TestAlign_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	vocab := []string{"alpha", "beta", "gamma", "delta", "", "beta", "omega"}

	randomLines := func() []string {
		n := rng.IntN(9)
		lines := make([]string, n)
		for i := range lines {
			lines[i] = vocab[rng.IntN(len(vocab))]
		}
		return lines
	}

	for _, engine := range engines() {
		dp := newTestProcessor(t, engine)
		for _, strategy := range []Strategy{StrategyEditScript, StrategyPositional} {
			for i := 0; i < 200; i++ {
				left, right := randomLines(), randomLines()
				name := fmt.Sprintf("%s/%s/%d", engine, strategy, i)

				units, err := Align(dp, left, right, strategy, LineCodec())
				require.NoError(t, err, name)

				assert.Equal(t, nonNil(left), models.ProjectLeft(units), "%s: left reconstruction", name)
				assert.Equal(t, nonNil(right), models.ProjectRight(units), "%s: right reconstruction", name)

				stats := CountUnits(units)
				assert.Equal(t, len(left)-stats.Same, stats.LeftChanged(), "%s: left count symmetry", name)
				assert.Equal(t, len(right)-stats.Same, stats.RightChanged(), "%s: right count symmetry", name)

				assertIndexesIncrease(t, name, units)

				self, err := Align(dp, left, left, strategy, LineCodec())
				require.NoError(t, err, name)
				for _, u := range self {
					assert.Equal(t, models.UnitSame, u.Kind, "%s: idempotence", name)
				}
			}
		}
	}
}

func TestAlignLines_Reconstruction(t *testing.T) {
	dp := newTestProcessor(t, EngineDMP)
	left := "one\ntwo\nthree\nfour"
	right := "zero\none\n2\nthree\nfive\nsix"

	units, err := AlignLines(dp, left, right, StrategyEditScript)
	require.NoError(t, err)
	assert.Equal(t, left, strings.Join(models.ProjectLeft(units), "\n"))
	assert.Equal(t, right, strings.Join(models.ProjectRight(units), "\n"))
}

func assertIndexesIncrease(t *testing.T, name string, units []models.AlignedUnit[string]) {
	t.Helper()
	lastL, lastR := 0, 0
	for _, u := range units {
		if u.HasLeft() {
			assert.Equal(t, lastL+1, u.LeftIndex, "%s: left index order", name)
			lastL = u.LeftIndex
		}
		if u.HasRight() {
			assert.Equal(t, lastR+1, u.RightIndex, "%s: right index order", name)
			lastR = u.RightIndex
		}
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
