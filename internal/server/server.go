package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/compare"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/datastore"
	"github.com/MeiTetsuH/diffchecker/internal/ingest"
	"github.com/MeiTetsuH/diffchecker/internal/reporter"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// pipelines holds everything derived from the reloadable configuration.
type pipelines struct {
	text        *compare.TextComparer
	table       *compare.TableComparer
	loader      *ingest.Loader
	tableConfig config.TableConfig
	maxUpload   int64
}

func buildPipelines(cfg *config.GlobalConfig, logger zerolog.Logger) (*pipelines, error) {
	text, err := compare.NewTextComparerBuilder(logger).
		WithDiffConfig(cfg.DiffConfig).
		WithReporterConfig(cfg.ReporterConfig).
		Build()
	if err != nil {
		return nil, err
	}
	table, err := compare.NewTableComparer(text.Processor(), cfg.DiffConfig, cfg.TableConfig, logger)
	if err != nil {
		return nil, err
	}
	maxUpload := int64(cfg.ServerConfig.MaxUploadSizeMB) * 1024 * 1024
	return &pipelines{
		text:        text,
		table:       table,
		loader:      ingest.NewLoader(logger, maxUpload),
		tableConfig: cfg.TableConfig,
		maxUpload:   maxUpload,
	}, nil
}

// Server is the HTTP surface over the comparison pipelines and the saved-comparison store.
type Server struct {
	logger   zerolog.Logger
	cfg      config.ServerConfig
	store    *datastore.ComparisonStore
	archive  *datastore.ArchiveStore
	html     *reporter.HTMLRenderer
	runner   *compare.Runner
	sessions *sessionStore

	mu        sync.RWMutex
	pipelines *pipelines
}

// New creates a Server. store may be nil, in which case saving and history report
// ErrStorageUnavailable while comparisons keep working.
func New(cfg *config.GlobalConfig, store *datastore.ComparisonStore, archive *datastore.ArchiveStore, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, common.NewValidationError("config", nil, "config cannot be nil")
	}
	serverLogger := logger.With().Str("component", "Server").Logger()

	p, err := buildPipelines(cfg, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to build comparison pipelines")
	}
	html, err := reporter.NewHTMLRenderer(cfg.ReporterConfig, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create HTML renderer")
	}

	return &Server{
		logger:    serverLogger,
		cfg:       cfg.ServerConfig,
		store:     store,
		archive:   archive,
		html:      html,
		runner:    compare.NewRunner(logger),
		sessions:  newSessionStore(defaultSessionTTL),
		pipelines: p,
	}, nil
}

// ApplyConfig swaps in pipelines built from a reloaded configuration. Listener settings
// only take effect on restart.
func (s *Server) ApplyConfig(cfg *config.GlobalConfig) {
	p, err := buildPipelines(cfg, s.logger)
	if err != nil {
		s.logger.Error().Err(err).Msg("Rejected reloaded configuration, keeping the previous pipelines")
		return
	}
	s.mu.Lock()
	s.pipelines = p
	s.mu.Unlock()
	s.logger.Info().Msg("Applied reloaded configuration")
}

func (s *Server) current() *pipelines {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipelines
}

// Handler returns the routed handler wrapped in logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /report/text", s.handleTextReport)
	mux.HandleFunc("POST /report/table", s.handleTableReport)
	mux.HandleFunc("GET /comparisons/{id}", s.handleComparisonReport)

	mux.HandleFunc("POST /api/text/compare", s.handleTextCompare)
	mux.HandleFunc("POST /api/text/export", s.handleTextExport)
	mux.HandleFunc("POST /api/table/compare", s.handleTableCompare)
	mux.HandleFunc("POST /api/table/text", s.handleTableText)
	mux.HandleFunc("POST /api/tools/{tool}", s.handleTextTool)

	mux.HandleFunc("GET /api/comparisons", s.handleListComparisons)
	mux.HandleFunc("POST /api/comparisons", s.handleCreateComparison)
	mux.HandleFunc("GET /api/comparisons/export", s.handleExportComparisons)
	mux.HandleFunc("POST /api/comparisons/import", s.handleImportComparisons)
	mux.HandleFunc("GET /api/comparisons/{id}", s.handleGetComparison)
	mux.HandleFunc("PATCH /api/comparisons/{id}", s.handleUpdateComparison)
	mux.HandleFunc("DELETE /api/comparisons/{id}", s.handleDeleteComparison)

	mux.HandleFunc("POST /api/share", s.handleCreateShare)
	mux.HandleFunc("GET /api/share/{token}", s.handleOpenShare)

	return s.recoverer(s.requestLogger(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.cfg.ListenAddress).Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		event := s.logger.Debug()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Dur("took", time.Since(start)).
			Msg("Handled request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error().Interface("panic", p).Str("path", r.URL.Path).Msg("Recovered from handler panic")
				writeError(w, fmt.Errorf("internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
