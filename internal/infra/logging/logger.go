// Package logging writes operational logs for taskhub.
// Every entry goes to the global log (.taskhub/logs/taskhub.log); entries
// about a task also go to that task's own file (.taskhub/logs/task-N.log).
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/runoshun/taskhub/internal/domain"
)

var _ domain.Logger = (*Logger)(nil)

// Logger is a leveled, file-backed domain.Logger. It is safe for
// concurrent use. The zero data directory disables file output.
// Fields are ordered to minimize memory padding.
type Logger struct {
	clock   domain.Clock
	mirror  io.Writer
	files   map[string]*os.File
	dataDir string
	mu      sync.Mutex
	level   slog.Level
}

// New creates a Logger that writes below dataDir/logs.
func New(dataDir string, level slog.Level) *Logger {
	return &Logger{
		clock:   domain.RealClock{},
		dataDir: dataDir,
		level:   level,
		files:   make(map[string]*os.File),
	}
}

// WithClock sets the clock used to timestamp entries.
func (l *Logger) WithClock(clock domain.Clock) *Logger {
	l.clock = clock
	return l
}

// WithMirror copies warnings and errors to w, typically stderr.
func (l *Logger) WithMirror(w io.Writer) *Logger {
	l.mirror = w
	return l
}

// ParseLevel parses a log level name. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Info logs an info message.
func (l *Logger) Info(taskID int64, category, msg string) {
	l.write(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID int64, category, msg string) {
	l.write(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID int64, category, msg string) {
	l.write(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID int64, category, msg string) {
	l.write(slog.LevelError, taskID, category, msg)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for path, f := range l.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", path, err))
		}
		delete(l.files, path)
	}
	return errors.Join(errs...)
}

// write formats one entry and appends it to every destination.
// Write failures are dropped; logging never fails an operation.
func (l *Logger) write(level slog.Level, taskID int64, category, msg string) {
	if level < l.level {
		return
	}
	entry := formatEntry(l.clock, level, taskID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mirror != nil && level >= slog.LevelWarn {
		_, _ = io.WriteString(l.mirror, entry)
	}
	if l.dataDir == "" {
		return
	}

	paths := []string{domain.GlobalLogPath(l.dataDir)}
	if taskID > 0 {
		paths = append(paths, domain.TaskLogPath(l.dataDir, taskID))
	}
	for _, path := range paths {
		if f, err := l.open(path); err == nil {
			_, _ = io.WriteString(f, entry)
		}
	}
}

// open returns the append handle for path, opening it on first use.
// Callers must hold l.mu.
func (l *Logger) open(path string) (*os.File, error) {
	if f, ok := l.files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.files[path] = f
	return f, nil
}

// formatEntry renders one line.
// Format: [2026-03-01 12:00:00] [INFO] [#12] [task] message
func formatEntry(clock domain.Clock, level slog.Level, taskID int64, category, msg string) string {
	scope := "global"
	if taskID > 0 {
		scope = domain.TaskRef(taskID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		clock.Now().Format("2006-01-02 15:04:05"),
		levelName(level),
		scope,
		category,
		msg,
	)
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
