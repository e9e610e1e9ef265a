package differ

import (
	"github.com/sergi/go-diff/diffmatchpatch"
	"znkr.io/diff"
)

type tokenOp int

const (
	opEqual tokenOp = iota
	opDelete
	opInsert
)

// tokenRun is a maximal run of tokens sharing one operation.
type tokenRun struct {
	op     tokenOp
	tokens []string
}

// tokenEngine computes a minimal edit script over two token sequences.
type tokenEngine interface {
	diffTokens(left, right []string) []tokenRun
}

// dmpEngine encodes every distinct token as one rune and runs diff-match-patch over the
// rune strings, the same trick DiffLinesToRunes uses for lines.
type dmpEngine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

func newDMPEngine() *dmpEngine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &dmpEngine{dmp: dmp}
}

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	maxRune      = 0x10FFFF
)

// tokenEncoder interns tokens into runes. Index 0 is reserved.
type tokenEncoder struct {
	index  map[string]rune
	tokens []string
}

func newTokenEncoder() *tokenEncoder {
	return &tokenEncoder{
		index:  make(map[string]rune),
		tokens: []string{""},
	}
}

func (e *tokenEncoder) runeFor(i int) rune {
	r := rune(i)
	if r >= surrogateMin {
		r += surrogateMax - surrogateMin + 1
	}
	return r
}

func (e *tokenEncoder) indexFor(r rune) int {
	if r > surrogateMax {
		r -= surrogateMax - surrogateMin + 1
	}
	return int(r)
}

// encode returns false when the alphabet runs out of runes.
func (e *tokenEncoder) encode(tokens []string) ([]rune, bool) {
	out := make([]rune, 0, len(tokens))
	for _, t := range tokens {
		r, ok := e.index[t]
		if !ok {
			r = e.runeFor(len(e.tokens))
			if r > maxRune {
				return nil, false
			}
			e.index[t] = r
			e.tokens = append(e.tokens, t)
		}
		out = append(out, r)
	}
	return out, true
}

func (e *tokenEncoder) decode(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		idx := e.indexFor(r)
		if idx > 0 && idx < len(e.tokens) {
			out = append(out, e.tokens[idx])
		}
	}
	return out
}

func (de *dmpEngine) diffTokens(left, right []string) []tokenRun {
	enc := newTokenEncoder()
	r1, ok1 := enc.encode(left)
	r2, ok2 := enc.encode(right)
	if !ok1 || !ok2 {
		return replaceAll(left, right)
	}

	diffs := de.dmp.DiffMainRunes(r1, r2, false)
	diffs = de.dmp.DiffCleanupMerge(diffs)
	return runsFromDMP(diffs, enc.decode)
}

// diffRaw runs diff-match-patch directly over the text, optionally with semantic cleanup.
func (de *dmpEngine) diffRaw(left, right string, semantic bool) []tokenRun {
	diffs := de.dmp.DiffMain(left, right, false)
	if semantic {
		diffs = de.dmp.DiffCleanupSemantic(diffs)
	}
	return runsFromDMP(diffs, func(s string) []string {
		if s == "" {
			return nil
		}
		return []string{s}
	})
}

func runsFromDMP(diffs []diffmatchpatch.Diff, decode func(string) []string) []tokenRun {
	runs := make([]tokenRun, 0, len(diffs))
	for _, d := range diffs {
		tokens := decode(d.Text)
		if len(tokens) == 0 {
			continue
		}
		var op tokenOp
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = opDelete
		case diffmatchpatch.DiffInsert:
			op = opInsert
		default:
			op = opEqual
		}
		runs = append(runs, tokenRun{op: op, tokens: tokens})
	}
	return runs
}

// myersEngine delegates to znkr.io/diff with the optimal (non-heuristic) search.
type myersEngine struct{}

func (myersEngine) diffTokens(left, right []string) []tokenRun {
	edits := diff.Edits(left, right, diff.Optimal())

	var runs []tokenRun
	for _, e := range edits {
		var op tokenOp
		var tok string
		switch e.Op {
		case diff.Delete:
			op, tok = opDelete, e.X
		case diff.Insert:
			op, tok = opInsert, e.Y
		default:
			op, tok = opEqual, e.X
		}
		if n := len(runs); n > 0 && runs[n-1].op == op {
			runs[n-1].tokens = append(runs[n-1].tokens, tok)
			continue
		}
		runs = append(runs, tokenRun{op: op, tokens: []string{tok}})
	}
	return runs
}

func replaceAll(left, right []string) []tokenRun {
	var runs []tokenRun
	if len(left) > 0 {
		runs = append(runs, tokenRun{op: opDelete, tokens: left})
	}
	if len(right) > 0 {
		runs = append(runs, tokenRun{op: opInsert, tokens: right})
	}
	return runs
}
