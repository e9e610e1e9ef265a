package reporter

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/compare"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/rs/zerolog"
)

// ReportMeta is the page header shared by every report.
type ReportMeta struct {
	Title       string
	LeftLabel   string
	RightLabel  string
	GeneratedAt time.Time
	ShareToken  string
}

type pageBase struct {
	Meta ReportMeta
	CSS  template.CSS
}

type splitRowView struct {
	Kind      models.UnitKind
	LeftNo    int
	RightNo   int
	LeftHTML  template.HTML
	RightHTML template.HTML
}

type unifiedLineView struct {
	Kind    models.UnitKind
	LeftNo  int
	RightNo int
	Marker  string
	HTML    template.HTML
}

type textPageData struct {
	pageBase
	Split bool
	Stats models.Stats
	Rows  []splitRowView
	Lines []unifiedLineView
}

type cellView struct {
	Changed   bool
	LeftHTML  template.HTML
	RightHTML template.HTML
}

type tableRowView struct {
	Kind     models.UnitKind
	Modified bool
	RawOnly  bool
	Note     string
	LeftNo   int
	RightNo  int
	Cells    []cellView
}

type tablePageData struct {
	pageBase
	Columns []models.Column
	Stats   models.Stats
	Rows    []tableRowView
}

// IndexPage is the data of the landing page.
type IndexPage struct {
	Recent      []models.SavedComparison
	Accepted    []string
	MaxUploadMB int
	StorageDown bool
}

type indexPageData struct {
	pageBase
	IndexPage
}

// HTMLRenderer renders comparisons as standalone HTML pages from embedded templates.
type HTMLRenderer struct {
	logger      zerolog.Logger
	pages       map[string]*template.Template
	css         template.CSS
	title       string
	fileManager *common.FileManager
	now         func() time.Time
}

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer(cfg config.ReporterConfig, logger zerolog.Logger) (*HTMLRenderer, error) {
	r := &HTMLRenderer{
		logger:      logger.With().Str("component", "HTMLRenderer").Logger(),
		pages:       make(map[string]*template.Template),
		title:       cfg.ReportTitle,
		fileManager: common.NewFileManager(logger),
		now:         time.Now,
	}
	if r.title == "" {
		r.title = DefaultReportTitle
	}

	if err := r.initializeTemplates(); err != nil {
		return nil, err
	}

	css, err := assetsFS.ReadFile(EmbeddedCSSPath)
	if err != nil {
		r.logger.Error().Err(err).Str("asset", EmbeddedCSSPath).Msg("Failed to read embedded CSS asset")
		return nil, fmt.Errorf("failed to read embedded CSS: %w", err)
	}
	r.css = template.CSS(css)
	return r, nil
}

// initializeTemplates parses one template set per page, each on top of the base layout
func (r *HTMLRenderer) initializeTemplates() error {
	pages := map[string]string{
		PageText:  TextTemplatePath,
		PageTable: TableTemplatePath,
		PageIndex: IndexTemplatePath,
	}
	for name, path := range pages {
		tmpl, err := template.New(name).Funcs(templateFuncs()).ParseFS(templatesFS, BaseTemplatePath, path)
		if err != nil {
			return fmt.Errorf("failed to parse HTML template %s: %w", path, err)
		}
		r.pages[name] = tmpl
	}
	r.logger.Debug().Int("pages", len(r.pages)).Msg("HTML templates parsed successfully")
	return nil
}

func (r *HTMLRenderer) base(meta ReportMeta) pageBase {
	if meta.Title == "" {
		meta.Title = r.title
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = r.now()
	}
	return pageBase{Meta: meta, CSS: r.css}
}

func (r *HTMLRenderer) execute(w io.Writer, page string, data any) error {
	// Render into a buffer so a template failure never leaves a half-written page.
	buf := common.DefaultBufferPool.Get()
	defer common.DefaultBufferPool.Put(buf)
	if err := r.pages[page].ExecuteTemplate(buf, "base", data); err != nil {
		r.logger.Error().Err(err).Str("page", page).Msg("Failed to execute HTML template")
		return fmt.Errorf("failed to render %s page: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderText writes a text comparison in its requested presentation.
func (r *HTMLRenderer) RenderText(w io.Writer, res *compare.TextResult, meta ReportMeta) error {
	if res == nil {
		return common.NewValidationError("result", nil, "text result cannot be nil")
	}
	data := textPageData{
		pageBase: r.base(meta),
		Split:    res.Presentation != compare.PresentationUnified,
		Stats:    res.Stats,
	}
	for i, u := range res.Units {
		data.Rows = append(data.Rows, splitRow(u, res.Highlights[i]))
		data.Lines = append(data.Lines, unifiedLines(u, res.Highlights[i])...)
	}
	return r.execute(w, PageText, data)
}

// RenderTable writes a table comparison.
func (r *HTMLRenderer) RenderTable(w io.Writer, res *compare.TableResult, meta ReportMeta) error {
	if res == nil {
		return common.NewValidationError("result", nil, "table result cannot be nil")
	}
	data := tablePageData{
		pageBase: r.base(meta),
		Columns:  res.Columns,
		Stats:    res.Stats,
	}
	for _, row := range res.Rows {
		data.Rows = append(data.Rows, tableRow(row, len(res.CombinedHeaders)))
	}
	return r.execute(w, PageTable, data)
}

// RenderIndex writes the landing page.
func (r *HTMLRenderer) RenderIndex(w io.Writer, page IndexPage) error {
	return r.execute(w, PageIndex, indexPageData{pageBase: r.base(ReportMeta{}), IndexPage: page})
}

// WriteFile renders through render and writes the page to path.
func (r *HTMLRenderer) WriteFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := r.fileManager.WriteFile(path, buf.Bytes(), common.DefaultFileWriteOptions()); err != nil {
		return common.WrapError(err, "failed to write HTML report")
	}
	r.logger.Info().Str("path", path).Msg("HTML report written")
	return nil
}

func splitRow(u models.AlignedUnit[string], h *models.Highlight) splitRowView {
	row := splitRowView{Kind: u.Kind, LeftNo: u.LeftIndex, RightNo: u.RightIndex}
	switch u.Kind {
	case models.UnitSame:
		row.LeftHTML = PlainHTML(u.Content)
		row.RightHTML = row.LeftHTML
	case models.UnitRemoved:
		row.LeftHTML = PlainHTML(u.Content)
	case models.UnitAdded:
		row.RightHTML = PlainHTML(u.Content)
	case models.UnitModified:
		if h != nil {
			row.LeftHTML = FragmentsHTML(h.Left)
			row.RightHTML = FragmentsHTML(h.Right)
		} else {
			row.LeftHTML = PlainHTML(u.Left)
			row.RightHTML = PlainHTML(u.Right)
		}
	}
	return row
}

func unifiedLines(u models.AlignedUnit[string], h *models.Highlight) []unifiedLineView {
	switch u.Kind {
	case models.UnitSame:
		return []unifiedLineView{{Kind: u.Kind, LeftNo: u.LeftIndex, RightNo: u.RightIndex, Marker: " ", HTML: PlainHTML(u.Content)}}
	case models.UnitRemoved:
		return []unifiedLineView{{Kind: models.UnitRemoved, LeftNo: u.LeftIndex, Marker: "-", HTML: PlainHTML(u.Content)}}
	case models.UnitAdded:
		return []unifiedLineView{{Kind: models.UnitAdded, RightNo: u.RightIndex, Marker: "+", HTML: PlainHTML(u.Content)}}
	}

	row := splitRow(u, h)
	return []unifiedLineView{
		{Kind: models.UnitRemoved, LeftNo: u.LeftIndex, Marker: "-", HTML: row.LeftHTML},
		{Kind: models.UnitAdded, RightNo: u.RightIndex, Marker: "+", HTML: row.RightHTML},
	}
}

func tableRow(row compare.TableRow, width int) tableRowView {
	view := tableRowView{
		Kind:     row.Kind,
		Modified: row.Kind == models.UnitModified,
		RawOnly:  row.RawOnly,
		LeftNo:   row.LeftIndex,
		RightNo:  row.RightIndex,
		Cells:    make([]cellView, width),
	}

	if view.RawOnly {
		view.Note = RawOnlyNote
	}
	if !view.Modified {
		content := row.Content
		for i := range view.Cells {
			if i < len(content) {
				view.Cells[i].LeftHTML = PlainHTML(content[i].String())
			}
		}
		return view
	}

	for i := range view.Cells {
		var l, r string
		if i < len(row.Left) {
			l = row.Left[i].String()
		}
		if i < len(row.Right) {
			r = row.Right[i].String()
		}
		view.Cells[i] = cellView{LeftHTML: PlainHTML(l), RightHTML: PlainHTML(r)}
		if i < len(row.Cells) && row.Cells[i].Changed && row.Cells[i].Highlight != nil {
			view.Cells[i].Changed = true
			view.Cells[i].LeftHTML = FragmentsHTML(row.Cells[i].Highlight.Left)
			view.Cells[i].RightHTML = FragmentsHTML(row.Cells[i].Highlight.Right)
		}
	}
	return view
}
