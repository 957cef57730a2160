package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()

	DebugEnabled = false

	logFile *os.File
)

// InitLogging sets up logging based on configuration. Warnings and errors
// always reach stderr; debug mode additionally writes everything down to
// debug level into logPath.
func InitLogging(debugMode bool, logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	DebugEnabled = debugMode

	if !DebugEnabled || logPath == "" {
		return nil
	}

	logDir := filepath.Dir(logPath)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to open log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	fileLevel := zerolog.MultiLevelWriter(f, levelWriter{w: console, min: zerolog.WarnLevel})
	log = zerolog.New(fileLevel).Level(zerolog.DebugLevel).With().Timestamp().Caller().Logger()

	return nil
}

// SetLogger replaces the underlying logger.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()

	log = l
}

// Close closes the log file if open.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	l := log
	return &l
}

func Infof(format string, v ...interface{}) {
	current().Info().Msgf(format, v...)
}

// Errorf logs an error message.
func Errorf(format string, v ...interface{}) {
	current().Error().Msgf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	current().Debug().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	current().Warn().Msgf(format, v...)
}

// levelWriter forwards only events at or above min.
type levelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (lw levelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.min {
		return len(p), nil
	}
	return lw.w.Write(p)
}
