package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// consoleWriter encodes records for a terminal or pipe. JSON is passed through untouched.
func consoleWriter(out io.Writer, format LogFormat, noColor bool) io.Writer {
	if format == FormatJSON {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor || format == FormatText,
	}
}

// fileWriter opens a lumberjack-rotated log file. Non-JSON formats are written without
// color codes.
func fileWriter(cfg LoggerConfig) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}
	return consoleWriter(rotating, cfg.Format, true), nil
}
