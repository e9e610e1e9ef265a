package logger

import (
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/rs/zerolog"
)

// New creates a logger from the application log section
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}
