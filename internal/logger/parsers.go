package logger

import (
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/rs/zerolog"
)

// ParseLevel maps a level name onto zerolog; an empty name means info
func ParseLevel(levelStr string) (zerolog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(levelStr))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, common.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat maps a format name onto LogFormat. Unknown names fall back to console.
func ParseFormat(formatStr string) LogFormat {
	switch f := LogFormat(strings.ToLower(strings.TrimSpace(formatStr))); f {
	case FormatJSON, FormatText:
		return f
	}
	return FormatConsole
}
