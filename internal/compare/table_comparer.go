package compare

import (
	"context"
	"slices"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/differ"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/rs/zerolog"
)

// TableRequest is one table comparison.
type TableRequest struct {
	Left        models.Table       `json:"left"`
	Right       models.Table       `json:"right"`
	Strategy    differ.Strategy    `json:"strategy,omitempty"`
	Granularity differ.Granularity `json:"granularity,omitempty"`
}

// CellChange is the highlight of one column of a modified row.
type CellChange struct {
	Column    string            `json:"column"`
	Changed   bool              `json:"changed"`
	Highlight *models.Highlight `json:"highlight,omitempty"`
}

// TableRow is an aligned row projected onto the combined columns. The kind comes from the
// raw rows; RawOnly marks a modified row whose combined columns all hold equal cells, so
// the difference sits in an unnamed or shadowed column or in the column order.
type TableRow struct {
	models.AlignedUnit[models.Row]
	Cells   []CellChange `json:"cells,omitempty"`
	RawOnly bool         `json:"raw_only,omitempty"`
}

// TableResult holds the row alignment of two tables.
type TableResult struct {
	CombinedHeaders []string        `json:"combined_headers"`
	Columns         []models.Column `json:"columns"`
	Rows            []TableRow      `json:"rows"`
	Stats           models.Stats    `json:"stats"`
	Strategy        differ.Strategy `json:"strategy"`
}

// TableComparer runs the tabular pipeline: header union, alignment of the raw body rows,
// projection onto the combined columns and per-cell highlights for modified rows.
type TableComparer struct {
	processor   *differ.DiffProcessor
	tableConfig config.TableConfig
	diffConfig  config.DiffConfig
	logger      zerolog.Logger
}

// NewTableComparer creates a TableComparer sharing processor with the text pipeline.
func NewTableComparer(processor *differ.DiffProcessor, diffCfg config.DiffConfig, tableCfg config.TableConfig, logger zerolog.Logger) (*TableComparer, error) {
	if processor == nil {
		return nil, common.NewValidationError("processor", nil, "diff processor cannot be nil")
	}
	return &TableComparer{
		processor:   processor,
		tableConfig: tableCfg,
		diffConfig:  diffCfg,
		logger:      logger.With().Str("component", "TableComparer").Logger(),
	}, nil
}

// Compare aligns the body rows of two tables over the union of their headers.
func (tc *TableComparer) Compare(ctx context.Context, req TableRequest) (*TableResult, error) {
	startTime := time.Now()

	strategy, err := resolveStrategy(req.Strategy, tc.tableConfig.Strategy, differ.StrategyPositional)
	if err != nil {
		return nil, common.NewValidationError("strategy", req.Strategy, err.Error())
	}
	granularity, err := resolveGranularity(req.Granularity, tc.diffConfig.Granularity)
	if err != nil {
		return nil, common.NewValidationError("granularity", req.Granularity, err.Error())
	}

	leftNames := req.Left.HeaderNames()
	rightNames := req.Right.HeaderNames()
	combined := differ.UnionHeaders(leftNames, rightNames)

	units, err := differ.Align(tc.processor, req.Left.Body, req.Right.Body, strategy, differ.RowCodec())
	if err != nil {
		return nil, common.WrapError(err, "failed to align rows")
	}

	project := func(header []string, r models.Row) models.Row {
		return differ.CombinedCells(combined, differ.ProjectRow(header, r))
	}

	rows := make([]TableRow, 0, len(units))
	for _, u := range units {
		view := u
		switch u.Kind {
		case models.UnitSame, models.UnitRemoved:
			view.Content = project(leftNames, u.Content)
		case models.UnitAdded:
			view.Content = project(rightNames, u.Content)
		case models.UnitModified:
			view.Left = project(leftNames, u.Left)
			view.Right = project(rightNames, u.Right)
		}

		row := TableRow{AlignedUnit: view}
		if u.Kind == models.UnitModified {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			row.Cells = tc.cellChanges(combined, view.Left, view.Right, granularity)
			row.RawOnly = !slices.ContainsFunc(row.Cells, func(c CellChange) bool { return c.Changed })
		}
		rows = append(rows, row)
	}

	result := &TableResult{
		CombinedHeaders: combined,
		Columns:         differ.ClassifyColumns(leftNames, rightNames),
		Rows:            rows,
		Stats:           differ.CountUnits(units),
		Strategy:        strategy,
	}

	tc.logger.Debug().
		Int("columns", len(combined)).
		Int("rows", len(rows)).
		Int("modified", result.Stats.Modified).
		Dur("took", time.Since(startTime)).
		Msg("Table comparison finished")
	return result, nil
}

// cellChanges compares two projected rows column by column. Rows are aligned to columns,
// so index i of either row belongs to columns[i].
func (tc *TableComparer) cellChanges(columns []string, left, right models.Row, g differ.Granularity) []CellChange {
	changes := make([]CellChange, len(columns))
	for i, name := range columns {
		l, r := cellAt(left, i), cellAt(right, i)
		changes[i] = CellChange{Column: name}
		if l.Equal(r) {
			continue
		}
		var h models.Highlight
		if ls, rs := l.String(), r.String(); ls == rs {
			// Same text, different kind: the whole cell changed.
			h = differ.HighlightSegments([]models.DiffSegment{{Value: ls, Removed: true}, {Value: rs, Added: true}})
		} else {
			h = tc.processor.Highlight(ls, rs, g)
		}
		changes[i].Changed = true
		changes[i].Highlight = &h
	}
	return changes
}

func cellAt(row models.Row, i int) models.Cell {
	if i < len(row) {
		return row[i]
	}
	return models.EmptyCell()
}
