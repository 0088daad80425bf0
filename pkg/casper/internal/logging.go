package internal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDir      = "logs"
	defaultLogFilename = "casper.log"
	logMaxSizeMB       = 10
	logMaxBackups      = 3
)

var (
	logRotator *lumberjack.Logger
	logPath    string

	setupOnce   sync.Once
	multiWriter io.Writer

	loggerOnce sync.Once
	logger     *slog.Logger
	levelVar   *slog.LevelVar

	internalLoggerOnce sync.Once
	internalLogger     *slog.Logger
	internalLevelVar   *slog.LevelVar
)

// SetLogPath sets the full path for the log file, including filename.
// Must be called before the first logger is requested.
func SetLogPath(path string) {
	logPath = path
}

func setup() {
	setupOnce.Do(func() {
		targetPath := logPath
		if targetPath == "" {
			targetPath = filepath.Join(defaultLogDir, defaultLogFilename)
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
			// Can't create the log directory, fall back to console-only
			multiWriter = os.Stdout
			return
		}

		logRotator = &lumberjack.Logger{
			Filename:   targetPath,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
		}
		multiWriter = io.MultiWriter(os.Stdout, logRotator)
	})
}

// GetLogger returns the application logger.
func GetLogger() *slog.Logger {
	loggerOnce.Do(func() {
		levelVar = &slog.LevelVar{}

		setup()

		handler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{
			Level:     levelVar,
			AddSource: false,
		})
		logger = slog.New(handler)
	})
	return logger
}

// GetInternalLogger returns the logger used by the engine itself.
// It defaults to error level so embedding applications stay quiet.
func GetInternalLogger() *slog.Logger {
	internalLoggerOnce.Do(func() {
		internalLevelVar = &slog.LevelVar{}
		internalLevelVar.Set(slog.LevelError)

		setup()

		handler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{
			Level:     internalLevelVar,
			AddSource: false,
		})
		internalLogger = slog.New(handler).With("component", "casper")
	})
	return internalLogger
}

func SetLogLevel(level slog.Level) {
	GetLogger()
	levelVar.Set(level)
}

func SetInternalLogLevel(level slog.Level) {
	GetInternalLogger()
	internalLevelVar.Set(level)
}

// ParseLogLevel maps a level name to a slog level, defaulting to info.
func ParseLogLevel(rawLevel string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(rawLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func SetRawLogLevel(rawLevel string) {
	SetLogLevel(ParseLogLevel(rawLevel))
}

func CloseLogger() {
	if logRotator != nil {
		logRotator.Close()
	}
}
