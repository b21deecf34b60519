// Package logging provides component-tagged file logging for scraper runs.
// Every component in a process writes to the same per-run log file under
// ~/.ehubscan/logs, named by a run id, so one browsing run reads as one
// chronological transcript. Core packages receive a *Logger rather than
// depending on process-global logging state.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	runID     string
	runIDOnce sync.Once

	logDir     string
	logDirOnce sync.Once
	logDirErr  error
)

// RunID returns the identifier shared by all loggers in this process.
func RunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func ensureLogDir() (string, error) {
	logDirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			logDirErr = fmt.Errorf("failed to resolve home directory: %w", err)
			return
		}
		logDir = filepath.Join(home, ".ehubscan", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			logDirErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return logDir, logDirErr
}

// Logger writes leveled, component-tagged lines to the run's log file.
// Debug lines are dropped unless the logger was created with debug on.
type Logger struct {
	mu        sync.Mutex
	component string
	logger    *log.Logger
	file      *os.File
	path      string
	debug     bool
	closeOnce sync.Once
}

// New creates a logger for a component. When the log directory or file is
// unavailable it falls back to stderr and returns the underlying error so
// callers can warn; the returned logger is always usable.
func New(component string, debug bool) (*Logger, error) {
	dir, err := ensureLogDir()
	if err != nil {
		return fallback(component, debug, err), err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", RunID()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return fallback(component, debug, err), err
	}

	return &Logger{
		component: component,
		logger:    log.New(file, "", 0),
		file:      file,
		path:      path,
		debug:     debug,
	}, nil
}

// Discard returns a logger that drops everything. For tests.
func Discard() *Logger {
	return &Logger{logger: log.New(io.Discard, "", 0)}
}

func fallback(component string, debug bool, cause error) *Logger {
	l := &Logger{
		component: component,
		logger:    log.New(os.Stderr, "", 0),
		debug:     debug,
	}
	l.emit("WARN", "file logging unavailable, using stderr: %v", cause)
	return l
}

func (l *Logger) emit(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", ts, l.component, level, fmt.Sprintf(format, args...))
}

// Debugf logs at debug level. Dropped unless debug logging is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.debug {
		return
	}
	l.emit("DEBUG", format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.emit("INFO", format, args...)
}

// Warnf logs at warning level.
func (l *Logger) Warnf(format string, args ...any) {
	l.emit("WARN", format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.emit("ERROR", format, args...)
}

// Path returns the log file path, or "" when logging to stderr or discard.
func (l *Logger) Path() string {
	return l.path
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
