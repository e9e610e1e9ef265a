package logger

import (
	"errors"
	"io"
	stdlog "log"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config LoggerConfig
	err    error
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{config: DefaultLoggerConfig()}
}

// WithConfig applies the application log section
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lc, err := FromConfig(cfg)
	if err != nil {
		lb.err = err
		return lb
	}
	lc.Console = lb.config.Console
	lc.NoColor = lb.config.NoColor
	lb.config = lc
	return lb
}

// WithConsole redirects console output. A nil writer disables the console sink.
func (lb *LoggerBuilder) WithConsole(w io.Writer, noColor bool) *LoggerBuilder {
	lb.config.Console = w
	lb.config.NoColor = noColor
	return lb
}

// WithLevel overrides the level
func (lb *LoggerBuilder) WithLevel(level zerolog.Level) *LoggerBuilder {
	lb.config.Level = level
	return lb
}

// Build creates the logger. Records go to the console sink and, when a log file is
// configured, to a rotating file as well.
func (lb *LoggerBuilder) Build() (zerolog.Logger, error) {
	if lb.err != nil {
		return zerolog.Nop(), lb.err
	}
	if err := lb.config.validate(); err != nil {
		return zerolog.Nop(), err
	}

	var writers []io.Writer
	if lb.config.Console != nil {
		writers = append(writers, consoleWriter(lb.config.Console, lb.config.Format, lb.config.NoColor))
	}
	if lb.config.FileEnabled() {
		fw, err := fileWriter(lb.config)
		if err != nil {
			return zerolog.Nop(), common.WrapError(err, "failed to create log file writer")
		}
		writers = append(writers, fw)
	}
	if len(writers) == 0 {
		return zerolog.Nop(), errors.New("no output writers configured")
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.config.Level).
		With().
		Timestamp().
		Logger()

	// Route stray log.Printf calls from dependencies through the same sinks.
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)

	return logger, nil
}
