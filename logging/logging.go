/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package logging provides the CLI logger used across cdpipelines.
// Loggers travel through context.Context (WithLogger, FromContext) so that
// commands and tests can swap writers, formats and verbosity without globals.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel represents the severity level of a log message
type LogLevel int

// OutputType represents the output format for logs
type OutputType int

// Output types for different log formats
const (
	PlainOutput OutputType = iota
	ColorOutput
	JSONOutput
)

// Log levels ordered from least to most severe.
const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// slogLevel maps a LogLevel onto the slog scale used for threshold checks.
func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CustomLogger writes leveled, optionally colored messages to ConsoleWriter
// and command results to OutputWriter.
type CustomLogger struct {
	mu            sync.Mutex
	LogLevel      slog.Level
	OutputType    OutputType
	Quiet         bool
	Verbose       bool
	ConsoleWriter io.Writer
	OutputWriter  io.Writer
}

// NewCustomLogger creates a plain-text logger writing to stderr.
func NewCustomLogger(level slog.Level) *CustomLogger {
	return &CustomLogger{
		LogLevel:      level,
		OutputType:    PlainOutput,
		ConsoleWriter: os.Stderr,
		OutputWriter:  os.Stdout,
	}
}

// NewCustomLoggerWithOptions creates a new CustomLogger with full configuration.
// Verbose forces the level down to debug.
func NewCustomLoggerWithOptions(logLevelStr, outputFormat string, quiet, verbose bool) *CustomLogger {
	logLevel := DetermineLogLevel(logLevelStr)
	if verbose && logLevel > slog.LevelDebug {
		logLevel = slog.LevelDebug
	}

	return &CustomLogger{
		LogLevel:      logLevel,
		OutputType:    DetermineOutputType(outputFormat),
		Quiet:         quiet,
		Verbose:       verbose,
		ConsoleWriter: os.Stderr,
		OutputWriter:  os.Stdout,
	}
}

// DetermineLogLevel converts a string to slog.Level
func DetermineLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DetermineOutputType maps a format name (text, plain, color, json) to an OutputType.
func DetermineOutputType(format string) OutputType {
	switch format {
	case "json":
		return JSONOutput
	case "color":
		return ColorOutput
	default:
		return PlainOutput
	}
}

// shouldShowLocked reports whether a message at level reaches the console.
// Quiet only lets errors through; otherwise the configured level applies.
// Must be called while holding l.mu.
func (l *CustomLogger) shouldShowLocked(level LogLevel) bool {
	if l.Quiet {
		return level == ErrorLevel
	}
	if l.Verbose {
		return true
	}
	return level.slogLevel() >= l.LogLevel
}

func (l *CustomLogger) formatMessage(level LogLevel, msg string) string {
	switch l.OutputType {
	case ColorOutput:
		switch level {
		case DebugLevel:
			return color.HiBlackString("[DEBUG] %s", msg)
		case InfoLevel:
			return color.HiGreenString("[INFO] %s", msg)
		case WarnLevel:
			return color.HiYellowString("[WARN] %s", msg)
		case ErrorLevel:
			return color.HiRedString("[ERROR] %s", msg)
		}
	case JSONOutput:
		line, err := json.Marshal(map[string]string{
			"level": level.String(),
			"msg":   msg,
			"time":  time.Now().UTC().Format(time.RFC3339),
		})
		if err == nil {
			return string(line)
		}
	}
	return fmt.Sprintf("[%s] %s", level, msg)
}

func (l *CustomLogger) log(level LogLevel, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.shouldShowLocked(level) || l.ConsoleWriter == nil {
		return
	}

	line := l.formatMessage(level, msg)
	if l.OutputType != JSONOutput {
		line = fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), line)
	}
	if _, err := fmt.Fprintln(l.ConsoleWriter, line); err != nil {
		fmt.Fprintln(os.Stderr, line)
	}
}

// SetQuiet enables or disables quiet mode.
func (l *CustomLogger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Quiet = quiet
}

// SetVerbose enables or disables verbose mode.
func (l *CustomLogger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Verbose = verbose
}

// IsQuiet returns whether the logger is in quiet mode.
func (l *CustomLogger) IsQuiet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Quiet
}

// Info logs an informational message.
func (l *CustomLogger) Info(format string, args ...interface{}) {
	l.log(InfoLevel, format, args...)
}

// Warn logs a warning message.
func (l *CustomLogger) Warn(format string, args ...interface{}) {
	l.log(WarnLevel, format, args...)
}

// Debug logs a debug message.
func (l *CustomLogger) Debug(format string, args ...interface{}) {
	l.log(DebugLevel, format, args...)
}

// Error logs an error message. It accepts either an error, a format string,
// or any other value as the first argument.
func (l *CustomLogger) Error(firstArg interface{}, args ...interface{}) {
	switch v := firstArg.(type) {
	case error:
		l.log(ErrorLevel, "%s", v.Error())
	case string:
		l.log(ErrorLevel, v, args...)
	default:
		l.log(ErrorLevel, "%v", v)
	}
}

// Output writes a command result to OutputWriter. JSON loggers encode data
// as indented JSON, all others print it with fmt.
func (l *CustomLogger) Output(data interface{}) {
	l.mu.Lock()
	w := l.OutputWriter
	outputType := l.OutputType
	l.mu.Unlock()

	if w == nil {
		w = os.Stdout
	}

	if outputType == JSONOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			l.Error("Failed to encode JSON output: %v", err)
		}
		return
	}

	if _, err := fmt.Fprintln(w, data); err != nil {
		l.Error("Failed to write output: %v", err)
	}
}

// Print writes raw text to OutputWriter without adding a newline.
func (l *CustomLogger) Print(data string) {
	l.mu.Lock()
	w := l.OutputWriter
	l.mu.Unlock()

	if w == nil {
		w = os.Stdout
	}
	if _, err := fmt.Fprint(w, data); err != nil {
		l.Error("Failed to write output: %v", err)
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewCustomLogger(slog.LevelInfo)
)

// Initialize configures the process-wide default logger returned by
// FromContext when a context carries none.
func Initialize(logLevel, logFormat string, quiet, verbose bool) error {
	switch logFormat {
	case "", "text", "plain", "color", "json":
	default:
		return fmt.Errorf("unsupported log format %q (supported: text, color, json)", logFormat)
	}

	l := NewCustomLoggerWithOptions(logLevel, logFormat, quiet, verbose)

	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	return nil
}

// Default returns the process-wide default logger.
func Default() *CustomLogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Info logs through the default logger.
func Info(format string, args ...interface{}) { Default().Info(format, args...) }

// Warn logs through the default logger.
func Warn(format string, args ...interface{}) { Default().Warn(format, args...) }

// Debug logs through the default logger.
func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }

// Error logs through the default logger.
func Error(firstArg interface{}, args ...interface{}) { Default().Error(firstArg, args...) }

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// WithLogger returns a new context with the provided logger.
func WithLogger(ctx context.Context, l *CustomLogger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from the context, falling back to the
// default logger.
func FromContext(ctx context.Context) *CustomLogger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*CustomLogger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// InfoContext logs an informational message using the logger from context.
func InfoContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Info(message, args...)
}

// WarnContext logs a warning message using the logger from context.
func WarnContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Warn(message, args...)
}

// DebugContext logs a debug message using the logger from context.
func DebugContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Debug(message, args...)
}

// ErrorContext logs an error message using the logger from context.
func ErrorContext(ctx context.Context, firstArg interface{}, args ...interface{}) {
	FromContext(ctx).Error(firstArg, args...)
}

// OutputContext writes a command result using the logger from context.
func OutputContext(ctx context.Context, data interface{}) {
	FromContext(ctx).Output(data)
}

// PrintContext writes raw output using the logger from context.
func PrintContext(ctx context.Context, data string) {
	FromContext(ctx).Print(data)
}
