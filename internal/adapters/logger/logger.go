// Package logger implements a logging adapter using charmbracelet/log.
package logger

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"go.trai.ch/selfie/internal/core/ports"
)

// messager describes an error that can report its own message without the chain.
// zerr.Error provides it.
type messager interface {
	Message() string
}

// Logger implements ports.Logger using charmbracelet/log.
type Logger struct {
	logger   *log.Logger
	jsonMode bool
}

// New creates a Logger writing human-readable output to stderr.
func New() ports.Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		logger: log.NewWithOptions(w, log.Options{
			Level:     log.InfoLevel,
			Formatter: log.TextFormatter,
		}),
	}
}

// SetOutput updates the logger's output destination. A nil w selects stderr.
func (l *Logger) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	l.logger.SetOutput(w)
}

// SetJSON switches between JSON and text output.
func (l *Logger) SetJSON(enable bool) {
	l.jsonMode = enable
	if enable {
		l.logger.SetFormatter(log.JSONFormatter)
		return
	}
	l.logger.SetFormatter(log.TextFormatter)
}

// SetVerbose enables debug output.
func (l *Logger) SetVerbose(enable bool) {
	if enable {
		l.logger.SetLevel(log.DebugLevel)
		return
	}
	l.logger.SetLevel(log.InfoLevel)
}

// SetColors turns ANSI styling on or off.
func (l *Logger) SetColors(enable bool) {
	if enable {
		l.logger.SetColorProfile(termenv.ANSI256)
		return
	}
	l.logger.SetColorProfile(termenv.Ascii)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	l.logger.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.logger.Warn(msg)
}

// Error logs an error. In text mode the cause chain is printed one cause per line.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err.Error())
		return
	}

	l.logger.Error(FormatError(err))
}

// FormatError renders err and its causes as an indented multi-line message.
func FormatError(err error) string {
	var messages []string
	current := err

	for current != nil {
		m, ok := current.(messager)
		if !ok {
			messages = append(messages, current.Error())
			break
		}
		if msg := m.Message(); msg != "" {
			messages = append(messages, msg)
		}
		current = errors.Unwrap(current)
	}

	var lines []string
	for i, msg := range messages {
		parts := strings.Split(msg, "\n")
		if i == 0 {
			lines = append(lines, "Error: "+parts[0])
			for _, p := range parts[1:] {
				lines = append(lines, "       "+p)
			}
			continue
		}
		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+parts[0])
		for _, p := range parts[1:] {
			lines = append(lines, "      "+p)
		}
	}

	return strings.Join(lines, "\n")
}
