package logging

import (
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"":        log.InfoLevel,
		"info":    log.InfoLevel,
		"DEBUG":   log.DebugLevel,
		"trace":   log.TraceLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"loud":    log.InfoLevel,
	}
	for in, want := range tests {
		require.Equal(t, want, parseLevel(in), in)
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	prev := log.DefaultLogger
	t.Cleanup(func() { log.DefaultLogger = prev })

	logger := Setup("warn", FormatJSON)
	require.Equal(t, log.WarnLevel, logger.Level)
	require.Equal(t, log.WarnLevel, log.DefaultLogger.Level)
	require.IsType(t, &log.IOWriter{}, logger.Writer)

	logger = Setup("debug", FormatConsole)
	require.IsType(t, &log.ConsoleWriter{}, logger.Writer)
}
