package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/compare"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/datastore"
	"github.com/MeiTetsuH/diffchecker/internal/ingest"
	"github.com/MeiTetsuH/diffchecker/internal/logger"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/MeiTetsuH/diffchecker/internal/reporter"
	"github.com/MeiTetsuH/diffchecker/internal/server"
	"github.com/rs/zerolog"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	flags, err := ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(exitUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, flags, os.Stdout)
	stop()
	os.Exit(code)
}

// app carries what every mode needs.
type app struct {
	flags  AppFlags
	cfg    *config.GlobalConfig
	logger zerolog.Logger
	out    io.Writer
}

func run(ctx context.Context, flags AppFlags, out io.Writer) int {
	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not load global config using path '%s': %v\n", flags.GlobalConfigFile, err)
		return exitError
	}
	applyOverrides(gCfg, flags)

	if err := config.ValidateConfig(gCfg); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Configuration validation failed: %v\n", err)
		return exitError
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not initialize logger: %v\n", err)
		return exitError
	}
	zLogger.Debug().Str("mode", flags.Mode).Msg("Configuration loaded")

	if flags.WriteConfig != "" {
		if err := config.SaveGlobalConfig(gCfg, flags.WriteConfig, zLogger); err != nil {
			zLogger.Error().Err(err).Str("path", flags.WriteConfig).Msg("Could not write config")
			return exitError
		}
		fmt.Fprintf(out, "Configuration written to %s\n", flags.WriteConfig)
		if flags.Mode == "" {
			return exitOK
		}
	}

	a := &app{flags: flags, cfg: gCfg, logger: zLogger, out: out}

	switch flags.Mode {
	case modeText:
		err = a.runText(ctx)
	case modeTable:
		err = a.runTable(ctx)
	case modeServe:
		err = a.runServe(ctx)
	case modeHistory:
		err = a.runHistory(ctx)
	}
	if err != nil {
		zLogger.Error().Err(err).Str("mode", flags.Mode).Msg("Run failed")
		return exitError
	}
	return exitOK
}

// applyOverrides copies command-line options over the loaded configuration.
func applyOverrides(cfg *config.GlobalConfig, flags AppFlags) {
	if flags.Granularity != "" {
		cfg.DiffConfig.Granularity = flags.Granularity
	}
	if flags.Strategy != "" {
		cfg.DiffConfig.Strategy = flags.Strategy
		cfg.TableConfig.Strategy = flags.Strategy
	}
	if flags.Presentation != "" {
		cfg.ReporterConfig.Presentation = flags.Presentation
	}
	if flags.LeftSheet != "" {
		cfg.TableConfig.LeftSheet = flags.LeftSheet
	}
	if flags.RightSheet != "" {
		cfg.TableConfig.RightSheet = flags.RightSheet
	}
	if flags.LeftHeader != nil {
		cfg.TableConfig.LeftHeaderRow = *flags.LeftHeader
	}
	if flags.RightHeader != nil {
		cfg.TableConfig.RightHeaderRow = *flags.RightHeader
	}
	if flags.NoColor {
		cfg.ReporterConfig.Color = false
	}
	if flags.Listen != "" {
		cfg.ServerConfig.ListenAddress = flags.Listen
	}
	if flags.HotReload {
		cfg.ServerConfig.HotReload = true
	}
}

func (a *app) console() *reporter.ConsoleRenderer {
	return reporter.NewConsoleRenderer(a.cfg.ReporterConfig, a.flags.Width, a.logger)
}

func (a *app) openStore() (*datastore.ComparisonStore, error) {
	store, err := datastore.NewComparisonStore(a.cfg.StorageConfig, a.logger)
	if err != nil {
		return nil, common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	return store, nil
}

// save stores rec under the -save name. A storage failure is reported but does not fail
// the comparison that was already printed.
func (a *app) save(ctx context.Context, rec models.SavedComparison) {
	store, err := a.openStore()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Comparison not saved")
		return
	}
	defer func() { _ = store.Close() }()

	saved, err := store.Save(ctx, rec)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Comparison not saved")
		return
	}
	fmt.Fprintf(a.out, "Saved as %s (%s)\n", saved.Name, saved.ID)
}

func (a *app) writeHTML(render func(*reporter.HTMLRenderer, io.Writer) error) error {
	html, err := reporter.NewHTMLRenderer(a.cfg.ReporterConfig, a.logger)
	if err != nil {
		return err
	}
	return html.WriteFile(a.flags.HTMLOut, func(w io.Writer) error { return render(html, w) })
}

func (a *app) runText(ctx context.Context) error {
	fm := common.NewFileManager(a.logger)
	readOpts := common.FileReadOptions{MaxSize: int64(a.cfg.DiffConfig.MaxInputSizeMB) << 20}

	left, err := fm.ReadFile(a.flags.Left, readOpts)
	if err != nil {
		return err
	}
	right, err := fm.ReadFile(a.flags.Right, readOpts)
	if err != nil {
		return err
	}

	req := compare.TextRequest{Left: string(left), Right: string(right)}
	return a.compareText(ctx, req, filepath.Base(a.flags.Left), filepath.Base(a.flags.Right))
}

// compareText runs the text pipeline and prints it styled, or in the -format export.
func (a *app) compareText(ctx context.Context, req compare.TextRequest, leftLabel, rightLabel string) error {
	comparer, err := compare.NewTextComparerBuilder(a.logger).
		WithDiffConfig(a.cfg.DiffConfig).
		WithReporterConfig(a.cfg.ReporterConfig).
		Build()
	if err != nil {
		return err
	}

	res, err := comparer.Compare(ctx, req)
	if err != nil {
		return err
	}

	if a.flags.Format != "" {
		format, err := compare.ParseExportFormat(a.flags.Format)
		if err != nil {
			return err
		}
		out, err := compare.Export(format, req, res)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(a.out, out); err != nil {
			return err
		}
	} else if err := a.console().RenderText(a.out, res); err != nil {
		return err
	}

	if a.flags.HTMLOut != "" {
		meta := reporter.ReportMeta{LeftLabel: leftLabel, RightLabel: rightLabel, GeneratedAt: time.Now()}
		err := a.writeHTML(func(html *reporter.HTMLRenderer, w io.Writer) error {
			return html.RenderText(w, res, meta)
		})
		if err != nil {
			return err
		}
	}
	if a.flags.Save != "" {
		rec, err := compare.NewTextComparison(a.flags.Save, leftLabel, rightLabel, req, res.Stats)
		if err != nil {
			return err
		}
		a.save(ctx, rec)
	}
	return nil
}

func (a *app) runTable(ctx context.Context) error {
	maxBytes := int64(a.cfg.ServerConfig.MaxUploadSizeMB) << 20
	loader := ingest.NewLoader(a.logger, maxBytes)

	leftBook, err := loader.OpenFile(a.flags.Left)
	if err != nil {
		return err
	}
	rightBook, err := loader.OpenFile(a.flags.Right)
	if err != nil {
		return err
	}

	tc := a.cfg.TableConfig
	if a.flags.AsText || a.flags.Format != "" {
		leftRows, err := leftBook.Rows(tc.LeftSheet)
		if err != nil {
			return err
		}
		rightRows, err := rightBook.Rows(tc.RightSheet)
		if err != nil {
			return err
		}
		return a.compareText(ctx, compare.SheetText(leftRows, rightRows), leftBook.Name, rightBook.Name)
	}

	leftTable, err := leftBook.Table(tc.LeftSheet, tc.LeftHeaderRow)
	if err != nil {
		return err
	}
	rightTable, err := rightBook.Table(tc.RightSheet, tc.RightHeaderRow)
	if err != nil {
		return err
	}

	processor, err := compare.NewDiffProcessor(a.cfg.DiffConfig)
	if err != nil {
		return err
	}
	comparer, err := compare.NewTableComparer(processor, a.cfg.DiffConfig, tc, a.logger)
	if err != nil {
		return err
	}

	req := compare.TableRequest{Left: leftTable, Right: rightTable}
	res, err := comparer.Compare(ctx, req)
	if err != nil {
		return err
	}
	if err := a.console().RenderTable(a.out, res); err != nil {
		return err
	}

	if a.flags.HTMLOut != "" {
		meta := reporter.ReportMeta{LeftLabel: leftBook.Name, RightLabel: rightBook.Name, GeneratedAt: time.Now()}
		err := a.writeHTML(func(html *reporter.HTMLRenderer, w io.Writer) error {
			return html.RenderTable(w, res, meta)
		})
		if err != nil {
			return err
		}
	}
	if a.flags.Save != "" {
		rec, err := compare.NewTableComparison(a.flags.Save, leftBook.Name, rightBook.Name, req, res.Stats)
		if err != nil {
			return err
		}
		a.save(ctx, rec)
	}
	return nil
}

func (a *app) runServe(ctx context.Context) error {
	// The server keeps running without history when the database cannot be opened.
	store, err := a.openStore()
	if err != nil {
		a.logger.Error().Err(err).Msg("Saved comparisons are unavailable")
	}
	defer func() { _ = store.Close() }()

	srv, err := server.New(a.cfg, store, datastore.NewArchiveStore(a.cfg.StorageConfig, a.logger), a.logger)
	if err != nil {
		return err
	}

	if a.cfg.ServerConfig.HotReload {
		opts := config.DefaultConfigManagerOptions()
		opts.Logger = a.logger
		opts.HotReloadEnabled = true
		manager, err := config.NewConfigManager(config.GetConfigPath(a.flags.GlobalConfigFile), opts)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Hot reload disabled")
		} else {
			defer func() { _ = manager.Close() }()
			manager.OnReload(func(cfg *config.GlobalConfig) {
				applyOverrides(cfg, a.flags)
				srv.ApplyConfig(cfg)
			})
			manager.StartHotReload(ctx)
		}
	}

	return srv.Run(ctx)
}

func (a *app) runHistory(ctx context.Context) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	archive := datastore.NewArchiveStore(a.cfg.StorageConfig, a.logger)

	switch {
	case a.flags.Delete != "":
		if err := store.DeleteByID(ctx, a.flags.Delete); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted %s\n", a.flags.Delete)
		return nil
	case a.flags.Export != "":
		records, err := store.ListAll(ctx)
		if err != nil {
			return err
		}
		path := a.flags.Export
		if path == "-" {
			path = ""
		}
		written, err := archive.Export(ctx, records, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Exported %d comparisons to %s\n", len(records), written)
		return nil
	case a.flags.Import != "":
		records, err := archive.Load(ctx, a.flags.Import)
		if err != nil {
			return err
		}
		n, err := store.Import(ctx, records)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Imported %d comparisons\n", n)
		return nil
	}

	var records []models.SavedComparison
	if a.flags.Search != "" {
		records, err = store.SearchByName(ctx, a.flags.Search)
	} else {
		records, err = store.ListAll(ctx)
	}
	if err != nil {
		return err
	}
	return a.console().RenderHistory(a.out, records)
}
