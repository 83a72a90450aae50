package internal

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelNames = map[string]LogLevel{
	"ERROR": LogLevelError,
	"WARN":  LogLevelWarn,
	"INFO":  LogLevelInfo,
	"DEBUG": LogLevelDebug,
}

// ParseLogLevel maps a level name to its LogLevel, falling back to info
func ParseLogLevel(name string) LogLevel {
	if level, ok := levelNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return level
	}
	return LogLevelInfo
}

// Logger writes leveled lines prefixed with a component tag, e.g. "[Plot] ..."
type Logger struct {
	level  LogLevel
	tag    string
	output *log.Logger
}

// NewLogger creates a logger for one component
func NewLogger(level LogLevel, tag string) *Logger {
	return &Logger{level: level, tag: tag, output: log.Default()}
}

// NewDefaultLogger creates a component logger using the LOG_LEVEL environment variable
func NewDefaultLogger(tag string) *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")), tag)
}

// WithOutput redirects the logger, mainly for tests
func (l *Logger) WithOutput(out *log.Logger) *Logger {
	cp := *l
	cp.output = out
	return &cp
}

func (l *Logger) printf(level LogLevel, marker, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	l.output.Printf("[%s]%s %s", l.tag, marker, fmt.Sprintf(format, args...))
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LogLevelError, " ERROR:", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LogLevelWarn, " WARN:", format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LogLevelInfo, "", format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LogLevelDebug, " DEBUG:", format, args...)
}

// Timed logs how long a step took in milliseconds
func (l *Logger) Timed(step string, started time.Time) {
	l.Info("%s in %.2fms", step, float64(time.Since(started).Nanoseconds())/1e6)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}
