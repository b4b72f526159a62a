package logging

import (
	"os"
	"strings"

	"github.com/phuslu/log"
)

// Format selects the log encoding.
type Format string

const (
	// FormatConsole is human-readable output for interactive tools.
	FormatConsole Format = "console"
	// FormatJSON is one JSON object per line, for services.
	FormatJSON Format = "json"
)

// Setup builds a logger writing to stderr at level and installs it as
// log.DefaultLogger. Unknown levels fall back to info.
func Setup(level string, format Format) *log.Logger {
	logger := &log.Logger{
		Level:      parseLevel(level),
		TimeFormat: "15:04:05",
	}
	switch format {
	case FormatConsole:
		logger.Writer = &log.ConsoleWriter{
			ColorOutput:    log.IsTerminal(os.Stderr.Fd()),
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         os.Stderr,
		}
	default:
		logger.TimeFormat = ""
		logger.Writer = &log.IOWriter{Writer: os.Stderr}
	}
	log.DefaultLogger = *logger
	return logger
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
