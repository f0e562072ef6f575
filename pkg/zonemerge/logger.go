package zonemerge

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel orders log output; a logger drops records below its level.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogOff
)

var levelNames = [...]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogWarn:  "WARN",
	LogError: "ERROR",
	LogOff:   "OFF",
}

func (l LogLevel) String() string {
	if l < LogDebug || l > LogOff {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLogLevel maps a config level name to a LogLevel, defaulting to info.
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LogDebug
	case "warn", "warning":
		return LogWarn
	case "error":
		return LogError
	case "off":
		return LogOff
	default:
		return LogInfo
	}
}

// Fields are key/value pairs appended to every line of a logger, sorted by key.
type Fields map[string]interface{}

// Logger writes leveled lines of the form
//
//	2006-01-02 15:04:05 [WARN] message key=value ...
//
// Loggers derived with WithFields share their parent's lock, so lines written
// from concurrent merges never interleave.
type Logger struct {
	mu     *sync.Mutex
	writer io.Writer
	level  LogLevel
	fields Fields
}

func NewLogger(w io.Writer, level LogLevel) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{mu: &sync.Mutex{}, writer: w, level: level}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Enabled reports whether a record at level would be written. Callers use it
// to skip building expensive debug output.
func (l *Logger) Enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level && level < LogOff
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Fields{key: value})
}

func (l *Logger) WithFields(fields Fields) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{mu: l.mu, writer: l.writer, level: l.level, fields: merged}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.write(LogDebug, format, args) }
func (l *Logger) Info(format string, args ...interface{})  { l.write(LogInfo, format, args) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write(LogWarn, format, args) }
func (l *Logger) Error(format string, args ...interface{}) { l.write(LogError, format, args) }

func (l *Logger) write(level LogLevel, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	var line strings.Builder
	line.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	line.WriteString(" [")
	line.WriteString(level.String())
	line.WriteString("] ")
	fmt.Fprintf(&line, format, args...)

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&line, " %s=%v", k, l.fields[k])
	}
	line.WriteByte('\n')

	io.WriteString(l.writer, line.String())
}

var (
	globalLogger     *Logger
	globalLoggerOnce sync.Once
	globalLoggerMu   sync.RWMutex
)

// GetLogger returns the package logger. It writes to stderr at the level of
// the global configuration until replaced with SetLogger.
func GetLogger() *Logger {
	globalLoggerOnce.Do(func() {
		globalLogger = NewLogger(os.Stderr, ParseLogLevel(GetGlobalConfig().LogLevel))
	})
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

func SetLogger(logger *Logger) {
	GetLogger()
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()
}

// UpdateLoggerFromConfig applies the global configuration's level to the
// package logger.
func UpdateLoggerFromConfig() {
	GetLogger().SetLevel(ParseLogLevel(GetGlobalConfig().LogLevel))
}
