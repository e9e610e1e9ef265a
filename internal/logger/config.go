package logger

import (
	"io"
	"os"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/rs/zerolog"
)

// LogFormat names an output encoding
type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatConsole LogFormat = "console"
	// FormatText is the console layout without ANSI colors, for pipes and CI logs.
	FormatText LogFormat = "text"
)

// LoggerConfig is the resolved form of config.LogConfig plus the console sink.
// The CLI prints diffs to stdout, so Console defaults to stderr.
type LoggerConfig struct {
	Level      zerolog.Level
	Format     LogFormat
	Console    io.Writer
	NoColor    bool
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
}

// DefaultLoggerConfig returns an info-level colored console logger on stderr
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      zerolog.InfoLevel,
		Format:     FormatConsole,
		Console:    os.Stderr,
		MaxSizeMB:  config.DefaultMaxLogSizeMB,
		MaxBackups: config.DefaultMaxLogBackups,
	}
}

// FileEnabled reports whether records are also written to a rotating file
func (lc LoggerConfig) FileEnabled() bool {
	return lc.FilePath != ""
}

func (lc LoggerConfig) validate() error {
	if lc.FileEnabled() && lc.MaxSizeMB <= 0 {
		return common.NewValidationError("max_log_size_mb", lc.MaxSizeMB, "must be positive when log_file is set")
	}
	if lc.MaxBackups < 0 {
		return common.NewValidationError("max_log_backups", lc.MaxBackups, "cannot be negative")
	}
	return nil
}

// FromConfig resolves the application log section
func FromConfig(cfg config.LogConfig) (LoggerConfig, error) {
	lc := DefaultLoggerConfig()

	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return lc, err
	}
	lc.Level = level
	lc.Format = ParseFormat(cfg.LogFormat)
	lc.FilePath = cfg.LogFile
	if cfg.MaxLogSizeMB > 0 {
		lc.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		lc.MaxBackups = cfg.MaxLogBackups
	}
	return lc, nil
}
