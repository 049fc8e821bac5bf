// Package log provides structured logging for schematic.
// Entries carry a level, a category and key=value fields. Logging is off
// until Init or InitWriter is called (the CLI does so for --debug or
// SCHEMATIC_DEBUG).
package log

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level. Unknown values map to LevelDebug.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// Category groups related log messages.
type Category string

const (
	CatDoc      Category = "doc"      // Document mutations and lifecycle
	CatRegistry Category = "registry" // Open-document registry
	CatStore    Category = "store"    // Connectivity graph
	CatFile     Category = "file"     // File handlers and resolution
	CatLibrary  Category = "library"  // Part catalog
	CatCache    Category = "cache"    // cache operations
	CatConfig   Category = "config"   // Configuration loading/saving
	CatWatcher  Category = "watcher"  // File watcher events
	CatTrace    Category = "trace"    // Tracing setup
	CatCLI      Category = "cli"      // Command handlers
)

// Logger writes formatted entries to a writer. It is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	w        io.Writer
	enabled  bool
	minLevel Level
	now      func() time.Time
}

// New returns an enabled logger writing every level to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, enabled: true, minLevel: LevelDebug, now: time.Now}
}

var defaultLogger *Logger

// SetDefault installs l as the target of the package-level functions.
// A nil l turns logging off.
func SetDefault(l *Logger) { defaultLogger = l }

// Init opens path for appending and installs a logger writing to it.
// The returned cleanup closes the file and turns logging off.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := New(f)
	SetDefault(l)
	return func() {
		if defaultLogger == l {
			SetDefault(nil)
		}
		_ = f.Close()
	}, nil
}

// InitWriter installs a logger that writes to w, replacing any existing
// logger. Mainly used for stderr output and tests.
func InitWriter(w io.Writer) { SetDefault(New(w)) }

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) { defaultLogger.Log(LevelDebug, cat, msg, fields...) }

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) { defaultLogger.Log(LevelInfo, cat, msg, fields...) }

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) { defaultLogger.Log(LevelWarn, cat, msg, fields...) }

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) { defaultLogger.Log(LevelError, cat, msg, fields...) }

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	defaultLogger.Log(LevelError, cat, msg, append(fields, "error", err)...)
}

// Log writes one entry. A nil logger discards it.
//
// Format: 2025-12-06T10:45:00 [ERROR] [doc] message key=value key2="a value"
func (l *Logger) Log(level Level, cat Category, msg string, fields ...any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel || l.w == nil {
		return
	}

	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		b.WriteByte(' ')
		b.WriteString(formatValue(fields[i]))
		b.WriteByte('=')
		if i+1 < len(fields) {
			b.WriteString(formatValue(fields[i+1]))
		} else {
			b.WriteString("<missing>")
		}
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.w, b.String())
}

// formatValue renders a field, quoting strings that would split the line.
func formatValue(v any) string {
	var s string
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case error:
		s = v.Error()
	case fmt.Stringer:
		s = v.String()
	case string:
		s = v
	default:
		return fmt.Sprint(v)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
