// Package logger provides leveled logging with debug, info, warn, and error
// levels. It wraps the standard log package to add level filtering without
// pulling a logging framework into a single-binary tool.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	// DebugLevel logs are voluminous and usually disabled outside development.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are degraded-but-continuing conditions.
	WarnLevel
	// ErrorLevel logs are high-priority failures.
	ErrorLevel
)

var prefixes = map[Level]string{
	DebugLevel: "[DEBUG] ",
	InfoLevel:  "[INFO] ",
	WarnLevel:  "[WARN] ",
	ErrorLevel: "[ERROR] ",
}

var defaultLogger *Logger

// Logger filters messages below its configured level.
type Logger struct {
	level Level
	out   *log.Logger
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Init initializes the default logger with the given level and format.
// Format "text" adds source locations; anything else stays terse.
func Init(level string, format string) {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	defaultLogger = &Logger{
		level: ParseLevel(level),
		out:   log.New(os.Stderr, "", flags),
	}
}

func emit(l Level, format string, args ...any) {
	if defaultLogger == nil || defaultLogger.level > l {
		return
	}
	_ = defaultLogger.out.Output(3, prefixes[l]+fmt.Sprintf(format, args...))
}

// Debug logs a message at DebugLevel.
func Debug(format string, args ...any) { emit(DebugLevel, format, args...) }

// Info logs a message at InfoLevel.
func Info(format string, args ...any) { emit(InfoLevel, format, args...) }

// Warn logs a message at WarnLevel.
func Warn(format string, args ...any) { emit(WarnLevel, format, args...) }

// Error logs a message at ErrorLevel.
func Error(format string, args ...any) { emit(ErrorLevel, format, args...) }

// Fatal logs a message at ErrorLevel and exits.
func Fatal(format string, args ...any) {
	msg := "[FATAL] " + fmt.Sprintf(format, args...)
	if defaultLogger != nil {
		_ = defaultLogger.out.Output(3, msg)
	} else {
		log.Print(msg)
	}
	os.Exit(1)
}
