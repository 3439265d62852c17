// Package logger provides leveled logging for a terminal UI. Output goes to
// a log file in the cache directory so it never corrupts the screen.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// LogFileName is the name of the log file inside the cache directory.
const LogFileName = "insightview.log"

const defaultTimeFormat = "2006-01-02 15:04:05"

// Level represents the logging level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LevelFor returns LevelDebug when debug is set, LevelInfo otherwise.
func LevelFor(debug bool) Level {
	if debug {
		return LevelDebug
	}
	return LevelInfo
}

// Logger implements interfaces.Logger with configurable output and level.
type Logger struct {
	mu         sync.RWMutex
	out        *log.Logger
	level      Level
	timeFormat string
	file       *os.File
}

// Config holds configuration for the logger.
type Config struct {
	Level      Level
	Output     io.Writer
	LogToFile  bool
	LogFile    string
	TimeFormat string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Output:     os.Stdout,
		LogToFile:  false,
		TimeFormat: defaultTimeFormat,
	}
}

// NewLogger creates a new logger with the given configuration. When both
// Output is stdout and LogToFile is set, messages go to both.
func NewLogger(config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	var file *os.File
	if config.LogToFile && config.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.LogFile), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f

		if config.Output == os.Stdout {
			output = io.MultiWriter(os.Stdout, file)
		} else {
			output = file
		}
	}

	timeFormat := config.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}

	return &Logger{
		out:        log.New(output, "", 0),
		level:      config.Level,
		timeFormat: timeFormat,
		file:       file,
	}, nil
}

// NewInternalLogger creates a logger writing to LogFileName in cacheDir,
// falling back to the current directory when cacheDir is unusable.
func NewInternalLogger(level Level, cacheDir string) (*Logger, error) {
	logsDir := cacheDir
	if logsDir == "" {
		logsDir = "."
	}
	if err := os.MkdirAll(logsDir, 0o750); err != nil {
		logsDir = "."
	}

	return NewLogger(&Config{
		Level:     level,
		LogToFile: true,
		LogFile:   filepath.Join(logsDir, LogFileName),
	})
}

// NewSimpleLogger creates a logger that outputs to stdout with the given level.
func NewSimpleLogger(level Level) *Logger {
	logger, _ := NewLogger(&Config{Level: level, Output: os.Stdout})
	return logger
}

// NewWriterLogger creates a logger that writes to w.
func NewWriterLogger(level Level, w io.Writer) *Logger {
	logger, _ := NewLogger(&Config{Level: level, Output: w})
	return logger
}

// NewFileLogger creates a logger that outputs to a file with the given level.
func NewFileLogger(level Level, logFile string) (*Logger, error) {
	return NewLogger(&Config{
		Level:     level,
		LogToFile: true,
		LogFile:   logFile,
	})
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	l.mu.RLock()
	enabled := l.level <= level
	timeFormat := l.timeFormat
	l.mu.RUnlock()

	if !enabled {
		return
	}

	l.out.Printf("[%s] [%s] %s", time.Now().Format(timeFormat), level, fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// SetLevel changes the logging level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel returns the current logging level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.level
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

var _ interfaces.Logger = (*Logger)(nil)

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// InitGlobalLogger initializes the global logger in cacheDir. Later calls
// only adjust the level. On failure the global logger falls back to stdout
// and the error is returned.
func InitGlobalLogger(level Level, cacheDir string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger != nil {
		globalLogger.SetLevel(level)
		return nil
	}

	logger, err := NewInternalLogger(level, cacheDir)
	if err != nil {
		globalLogger = NewSimpleLogger(level)
		return err
	}

	globalLogger = logger
	return nil
}

// GetGlobalLogger returns the global logger, creating an Info-level stdout
// logger if InitGlobalLogger was never called.
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		globalLogger = NewSimpleLogger(LevelInfo)
	}

	return globalLogger
}

// CloseGlobalLogger closes and resets the global logger.
func CloseGlobalLogger() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		return nil
	}

	err := globalLogger.Close()
	globalLogger = nil
	return err
}
