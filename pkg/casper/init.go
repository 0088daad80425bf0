// Package casper is the navigation and session-continuity engine of a
// single-page client application.
//
// An Application decides which page to show for every change of location,
// loads that page's code on demand, and keeps the session sockets alive
// across flaky networks by reconnecting on user activity with an
// exponential backoff. Rendering, the socket transport and the browser
// history are injected collaborators.
package casper

import (
	"log/slog"

	"github.com/BrandonKowalski/casper/pkg/casper/constants"
	"github.com/BrandonKowalski/casper/pkg/casper/internal"
)

// configureLogging applies the logging part of a Config. Only the first
// call may change the log file location.
func configureLogging(cfg Config) {
	if cfg.LogPath != "" {
		internal.SetLogPath(cfg.LogPath)
	}

	if constants.IsDebug() {
		internal.SetInternalLogLevel(slog.LevelDebug)
	} else {
		internal.SetInternalLogLevel(slog.LevelError)
	}

	if cfg.LogLevel != "" {
		internal.SetRawLogLevel(cfg.LogLevel)
	}
}

// SetLogPath sets the full path for the log file, including filename.
// Creates all necessary parent directories.
// Call before New to take effect.
func SetLogPath(path string) {
	internal.SetLogPath(path)
}

// GetLogger returns the application logger for structured logging.
func GetLogger() *slog.Logger {
	return internal.GetLogger()
}

// SetLogLevel sets the minimum log level for the application logger.
func SetLogLevel(level slog.Level) {
	internal.SetLogLevel(level)
}

// SetRawLogLevel parses and sets the log level from a string (e.g., "debug", "info", "error").
func SetRawLogLevel(level string) {
	internal.SetRawLogLevel(level)
}

// CloseLogger flushes and closes the log file.
func CloseLogger() {
	internal.CloseLogger()
}
