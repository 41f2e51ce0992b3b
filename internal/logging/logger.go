package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// EnvLevel selects the default log level when no explicit logger is given.
const EnvLevel = "LOOKSEE_LOG_LEVEL"

// DefaultLevel is used when EnvLevel is unset or unparsable.
const DefaultLevel = log.InfoLevel

// Options configures New.
type Options struct {
	// Prefix is printed in front of every line.
	Prefix string
	// Level is a level name (debug, info, warn, error, fatal). Empty falls
	// back to EnvLevel, then DefaultLevel.
	Level string
	// File, when set, additionally appends plain timestamped lines to this
	// path so failures can be inspected after the process exits.
	File string
	// Writer receives the styled output. Defaults to os.Stderr.
	Writer io.Writer
}

// Logger is a charm logger that may own a log file.
type Logger struct {
	*log.Logger
	file *os.File
}

// New creates a logger; when opts.File is set the file is created (or
// reused) and kept open until Close.
func New(opts Options) (*Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(opts.Level)
	if strings.TrimSpace(opts.Level) == "" {
		level = LevelFromEnv()
	}
	logger := newCharmLogger(w, opts.Prefix, level)
	if strings.TrimSpace(opts.File) == "" {
		return &Logger{Logger: logger}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	// a multi-writer is not a terminal, so both destinations get plain text
	logger = newCharmLogger(io.MultiWriter(w, f), opts.Prefix, level)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.RFC3339)
	return &Logger{Logger: logger, file: f}, nil
}

// Close releases the file handle, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FromEnv returns a stderr logger whose level comes from EnvLevel.
func FromEnv(prefix string) *log.Logger {
	return newCharmLogger(os.Stderr, prefix, LevelFromEnv())
}

// LevelFromEnv reads EnvLevel.
func LevelFromEnv() log.Level {
	return ParseLevel(os.Getenv(EnvLevel))
}

// ParseLevel is a lenient log.ParseLevel: unknown names map to DefaultLevel.
func ParseLevel(value string) log.Level {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "warning" {
		trimmed = "warn"
	}
	level, err := log.ParseLevel(trimmed)
	if err != nil || trimmed == "" {
		return DefaultLevel
	}
	return level
}

func newCharmLogger(w io.Writer, prefix string, level log.Level) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: prefix,
		Level:  level,
	})
	logger.SetStyles(styles())
	return logger
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Prefix = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	s.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	s.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))
	s.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(lipgloss.Color("214"))
	return s
}
