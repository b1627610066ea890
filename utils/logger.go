package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(io.Discard)

// InitLogger configures the process logger. format is "json" or "console".
func InitLogger(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	logger = zerolog.New(out).With().Timestamp().Str("app", AppName).Logger()
}

// SetLogger replaces the process logger, mainly for tests.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// Logger returns the process logger for structured events.
func Logger() *zerolog.Logger {
	return &logger
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

// LogWarn logs a warning message
func LogWarn(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

// LogRequest logs HTTP request details
func LogRequest(method, path, ip, requestID string, status int, duration time.Duration) {
	logger.Info().
		Str("method", method).
		Str("path", path).
		Str("ip", ip).
		Str("request_id", requestID).
		Int("status", status).
		Dur("duration", duration).
		Msg("http_request")
}

// LogErrorWithStack logs an error with stack trace
func LogErrorWithStack(err error, stack []byte) {
	logger.Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
}
