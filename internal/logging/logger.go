// Package logging provides the structured logger used across contactform.
// It wraps log/slog behind a small interface so handlers, the form state
// machine, and tests can share one diagnostic sink.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel represents different log levels
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
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

// ParseLevel parses debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// ContactLogger implements Logger on top of slog.
type ContactLogger struct {
	logger    *slog.Logger
	level     *atomic.Int32
	component string
	fields    map[string]interface{}
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger
func NewLogger(config *LoggerConfig) *ContactLogger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	// Level filtering happens in ContactLogger so SetLevel can change it live.
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	level := &atomic.Int32{}
	level.Store(int32(config.Level))

	return &ContactLogger{
		logger:    slog.New(handler),
		level:     level,
		component: config.Component,
		fields:    make(map[string]interface{}),
	}
}

// SetLevel changes the minimum level for this logger and every logger derived from it.
func (l *ContactLogger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// Level returns the current minimum level.
func (l *ContactLogger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

func (l *ContactLogger) enabled(level LogLevel) bool {
	return level >= l.Level()
}

// Debug logs a debug message
func (l *ContactLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	if !l.enabled(LevelDebug) {
		return
	}
	l.log(ctx, LevelDebug, nil, msg, fields...)
}

// Info logs an info message
func (l *ContactLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	if !l.enabled(LevelInfo) {
		return
	}
	l.log(ctx, LevelInfo, nil, msg, fields...)
}

// Warn logs a warning message
func (l *ContactLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	if !l.enabled(LevelWarn) {
		return
	}
	l.log(ctx, LevelWarn, err, msg, fields...)
}

// Error logs an error message
func (l *ContactLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	if !l.enabled(LevelError) {
		return
	}
	l.log(ctx, LevelError, err, msg, fields...)
}

// With creates a new logger with additional fields
func (l *ContactLogger) With(fields ...interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields)/2)
	for k, v := range l.fields {
		newFields[k] = v
	}

	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			newFields[key] = fields[i+1]
		}
	}

	return &ContactLogger{
		logger:    l.logger,
		level:     l.level,
		component: l.component,
		fields:    newFields,
	}
}

// WithComponent creates a new logger with component context
func (l *ContactLogger) WithComponent(component string) Logger {
	return &ContactLogger{
		logger:    l.logger,
		level:     l.level,
		component: component,
		fields:    l.fields,
	}
}

func (l *ContactLogger) log(ctx context.Context, level LogLevel, err error, msg string, fields ...interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := make([]slog.Attr, 0, len(l.fields)+len(fields)/2+2)

	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	for k, v := range l.fields {
		attrs = append(attrs, slog.Any(k, v))
	}

	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			attrs = append(attrs, slog.Any(key, fields[i+1]))
		}
	}

	record := slog.NewRecord(time.Now(), level.slogLevel(), msg, 0)
	record.AddAttrs(attrs...)

	_ = l.logger.Handler().Handle(ctx, record)
}

var (
	jsonStringValue = regexp.MustCompile(`("[^"]+"\s*:\s*)"(?:[^"\\]|\\.)*"`)
	emailAddress    = regexp.MustCompile(`[^\s@"':,{}\[\]]+@[^\s@"':,{}\[\]]+`)
)

// SanitizeForLog hides credentials and personal data in one log line.
// Lines mentioning a secret are dropped whole; otherwise JSON string values
// and email addresses are masked. Long lines are truncated.
func SanitizeForLog(data string) string {
	sensitive := []string{
		"password", "token", "secret", "key", "auth", "bearer",
	}

	lower := strings.ToLower(data)
	for _, word := range sensitive {
		if strings.Contains(lower, word) {
			return "[REDACTED]"
		}
	}

	data = jsonStringValue.ReplaceAllString(data, `${1}"***"`)
	data = emailAddress.ReplaceAllString(data, "***@***")

	if len(data) > 1000 {
		return data[:1000] + "...[TRUNCATED]"
	}

	return data
}

// Redact masks a secret, keeping only a short suffix for recognition.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// PerfLogger tracks the duration of one operation
type PerfLogger struct {
	Logger
	startTime time.Time
	operation string
}

// StartOperation begins performance tracking
func StartOperation(logger Logger, operation string) *PerfLogger {
	return &PerfLogger{
		Logger:    logger.With("operation", operation),
		startTime: time.Now(),
		operation: operation,
	}
}

// End completes performance tracking and logs the duration
func (p *PerfLogger) End(ctx context.Context) {
	duration := time.Since(p.startTime)
	p.Debug(ctx, "Operation completed",
		"duration_ms", duration.Milliseconds(),
	)
}

// EndWithError completes performance tracking of a failed operation. The
// failure itself is left for the caller to report.
func (p *PerfLogger) EndWithError(ctx context.Context, err error) {
	duration := time.Since(p.startTime)
	p.Debug(ctx, "Operation failed",
		"duration_ms", duration.Milliseconds(),
		"error", err.Error(),
	)
}
