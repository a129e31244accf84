// Package logging provides config-driven categorized file-based logging for cipherprobe.
// Logs are written to .probe/logs/ with separate files per category.
// Logging is controlled by debug_mode in the logging config - when false, no logs are written.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config resolution
	CategoryOracle  Category = "oracle"  // Oracle HTTP calls and cache hits
	CategoryMapper  Category = "mapper"  // Single-character map builds
	CategoryDecoder Category = "decoder" // Segment decoding
	CategoryMatrix  Category = "matrix"  // Repetition matrix builds and cross-checks
	CategoryStore   Category = "store"   // SQLite persistence
	CategorySession Category = "session" // Identity changes, commits
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	DebugMode  bool
	Level      string
	JSONFormat bool
	Categories map[string]bool
}

// StructuredLogEntry is one JSON log line.
type StructuredLogEntry struct {
	Timestamp int64                  `json:"ts"`
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category and file output
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	config    Options
	configMu  sync.RWMutex
	logLevel  int // 0=debug, 1=info, 2=warn, 3=error
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory under the workspace.
// Should be called once at startup.
func Initialize(ws string, opts Options) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	configMu.Lock()
	config = opts
	logLevel = parseLevel(opts.Level)
	configMu.Unlock()

	logsDir = filepath.Join(ws, ".probe", "logs")

	if !opts.DebugMode {
		return nil // Silent no-op in production mode
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := InitAudit(); err != nil {
		return err
	}

	boot := Get(CategoryBoot)
	boot.Info("=== cipherprobe logging initialized ===")
	boot.Info("Workspace: %s", ws)
	boot.Info("Log level: %s", opts.Level)
	return nil
}

func parseLevel(level string) int {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) write(level, tag string, threshold int, format string, args ...interface{}) {
	if l.logger == nil || logLevel > threshold {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON(level, msg, nil)
		return
	}
	l.logger.Printf("[%s] %s", tag, msg)
}

func (l *Logger) logJSON(level, msg string, fields map[string]interface{}) {
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
		Fields:    fields,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("%s", data)
}

// Debug logs a debug message (only if level <= debug)
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write("debug", "DEBUG", LevelDebug, format, args...)
}

// Info logs an informational message (only if level <= info)
func (l *Logger) Info(format string, args ...interface{}) {
	l.write("info", "INFO", LevelInfo, format, args...)
}

// Warn logs a warning message (only if level <= warn)
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write("warn", "WARN", LevelWarn, format, args...)
}

// Error logs an error message (always logged if logger exists)
func (l *Logger) Error(format string, args ...interface{}) {
	l.write("error", "ERROR", LevelError, format, args...)
}

// StructuredLog writes a log entry with custom fields
func (l *Logger) StructuredLog(level string, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	if config.JSONFormat {
		l.logJSON(level, msg, fields)
		return
	}
	l.logger.Printf("[%s] %s | fields=%v", level, msg, fields)
}

// CloseAll closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	CloseAudit()
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

func Oracle(format string, args ...interface{})      { Get(CategoryOracle).Info(format, args...) }
func OracleDebug(format string, args ...interface{}) { Get(CategoryOracle).Debug(format, args...) }
func OracleWarn(format string, args ...interface{})  { Get(CategoryOracle).Warn(format, args...) }

func Mapper(format string, args ...interface{})      { Get(CategoryMapper).Info(format, args...) }
func MapperDebug(format string, args ...interface{}) { Get(CategoryMapper).Debug(format, args...) }
func MapperWarn(format string, args ...interface{})  { Get(CategoryMapper).Warn(format, args...) }
func MapperError(format string, args ...interface{}) { Get(CategoryMapper).Error(format, args...) }

func Decoder(format string, args ...interface{})      { Get(CategoryDecoder).Info(format, args...) }
func DecoderDebug(format string, args ...interface{}) { Get(CategoryDecoder).Debug(format, args...) }
func DecoderWarn(format string, args ...interface{})  { Get(CategoryDecoder).Warn(format, args...) }

func Matrix(format string, args ...interface{})      { Get(CategoryMatrix).Info(format, args...) }
func MatrixDebug(format string, args ...interface{}) { Get(CategoryMatrix).Debug(format, args...) }
func MatrixWarn(format string, args ...interface{})  { Get(CategoryMatrix).Warn(format, args...) }

func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }
func StoreError(format string, args ...interface{}) { Get(CategoryStore).Error(format, args...) }

func Session(format string, args ...interface{})      { Get(CategorySession).Info(format, args...) }
func SessionDebug(format string, args ...interface{}) { Get(CategorySession).Debug(format, args...) }
func SessionWarn(format string, args ...interface{})  { Get(CategorySession).Warn(format, args...) }

// =============================================================================
// TIMING
// =============================================================================

// Timer measures one operation for a category.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}
