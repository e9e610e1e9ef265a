package differ

import (
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// DiffProcessor is the edit-script primitive: it tokenizes, runs the configured
// engine and coalesces the result into segments.
type DiffProcessor struct {
	engine tokenEngine
	dmp    *dmpEngine
	config DiffConfig
}

// NewDiffProcessor creates a new diff processor
func NewDiffProcessor(config DiffConfig) (*DiffProcessor, error) {
	dp := &DiffProcessor{
		dmp:    newDMPEngine(),
		config: config,
	}

	switch config.Engine {
	case "", EngineDMP:
		dp.engine = dp.dmp
	case EngineMyers:
		dp.engine = myersEngine{}
	default:
		return nil, common.NewValidationError("engine", config.Engine, "must be one of dmp, myers")
	}
	return dp, nil
}

// Config returns the processor configuration.
func (dp *DiffProcessor) Config() DiffConfig {
	return dp.config
}

// EditScript diffs two texts at the given granularity. The non-added segments
// concatenate to left and the non-removed segments concatenate to right.
func (dp *DiffProcessor) EditScript(left, right string, g Granularity) []models.DiffSegment {
	if g == GranularityCharacter && dp.config.EnableSemanticCleanup {
		return coalesce(dp.dmp.diffRaw(left, right, true))
	}
	return coalesce(dp.engine.diffTokens(Tokenize(left, g), Tokenize(right, g)))
}

// UnitScript diffs two sequences of opaque units. Each unit is compared as a whole and
// appears in the segment values followed by "\n". Units must not contain "\n".
func (dp *DiffProcessor) UnitScript(left, right []string) []models.DiffSegment {
	runs := dp.engine.diffTokens(left, right)
	for i := range runs {
		terminated := make([]string, len(runs[i].tokens))
		for j, t := range runs[i].tokens {
			terminated[j] = t + "\n"
		}
		runs[i].tokens = terminated
	}
	return coalesce(runs)
}

// coalesce joins adjacent runs with the same operation into single segments and
// orders each change block as deletions then insertions.
func coalesce(runs []tokenRun) []models.DiffSegment {
	var segments []models.DiffSegment
	var del, ins strings.Builder

	flush := func() {
		if del.Len() > 0 {
			segments = append(segments, models.DiffSegment{Value: del.String(), Removed: true})
			del.Reset()
		}
		if ins.Len() > 0 {
			segments = append(segments, models.DiffSegment{Value: ins.String(), Added: true})
			ins.Reset()
		}
	}

	for _, run := range runs {
		switch run.op {
		case opDelete:
			for _, t := range run.tokens {
				del.WriteString(t)
			}
		case opInsert:
			for _, t := range run.tokens {
				ins.WriteString(t)
			}
		default:
			flush()
			var sb strings.Builder
			for _, t := range run.tokens {
				sb.WriteString(t)
			}
			if sb.Len() == 0 {
				continue
			}
			if n := len(segments); n > 0 && segments[n-1].IsCommon() {
				segments[n-1].Value += sb.String()
				continue
			}
			segments = append(segments, models.DiffSegment{Value: sb.String()})
		}
	}
	flush()
	return segments
}
