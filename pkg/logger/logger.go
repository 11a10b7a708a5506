package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to log lines
type Fields = logrus.Fields

// Logger provides leveled, structured logging on top of logrus.
// Progress output is kept separate from log lines and only shown in verbose mode.
type Logger struct {
	entry    *logrus.Entry
	verbose  bool
	progress io.Writer
}

// NewLogger creates a new logger with specified level and verbose mode
func NewLogger(level string, verbose bool) *Logger {
	return NewLoggerWithOutput(level, "text", verbose, os.Stderr)
}

// NewLoggerWithOutput creates a logger writing to out with the given format ("text" or "json")
func NewLoggerWithOutput(level, format string, verbose bool, out io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(parseLogLevel(level))
	if strings.EqualFold(format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{
		entry:    logrus.NewEntry(base),
		verbose:  verbose,
		progress: os.Stdout,
	}
}

// With returns a child logger carrying the given fields on every line
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{
		entry:    l.entry.WithFields(fields),
		verbose:  l.verbose,
		progress: l.progress,
	}
}

// Debug logs debug information (only in debug mode)
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// ProgressAlways prints a milestone users should see regardless of verbose mode
func (l *Logger) ProgressAlways(emoji, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.progress, "%s %s\n", emoji, message)
}

// Progress prints step-by-step details (only in verbose mode)
func (l *Logger) Progress(emoji, format string, args ...interface{}) {
	if l.verbose {
		l.ProgressAlways(emoji, format, args...)
	}
}

// SetProgressOutput redirects progress lines, mainly for tests
func (l *Logger) SetProgressOutput(w io.Writer) {
	l.progress = w
}

// IsVerbose reports whether progress output is enabled
func (l *Logger) IsVerbose() bool {
	return l.verbose
}

// parseLogLevel converts string level to a logrus level
func parseLogLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	l := NewLoggerWithOutput("error", "text", false, io.Discard)
	l.progress = io.Discard
	return l
}
