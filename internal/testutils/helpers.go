// Package testutils holds fakes shared by the package tests: a recording
// logger, a scriptable Creator, and a recording Navigator.
package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/logging"
)

// LogEntry is one call captured by RecordingLogger.
type LogEntry struct {
	Level     logging.LogLevel
	Component string
	Message   string
	Err       error
	Fields    map[string]interface{}
}

type logSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// RecordingLogger implements logging.Logger by storing every entry.
type RecordingLogger struct {
	sink      *logSink
	component string
	fields    map[string]interface{}
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{sink: &logSink{}, fields: map[string]interface{}{}}
}

func (r *RecordingLogger) record(level logging.LogLevel, err error, msg string, fields ...interface{}) {
	merged := make(map[string]interface{}, len(r.fields)+len(fields)/2)
	for k, v := range r.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			merged[key] = fields[i+1]
		}
	}

	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	r.sink.entries = append(r.sink.entries, LogEntry{
		Level:     level,
		Component: r.component,
		Message:   msg,
		Err:       err,
		Fields:    merged,
	})
}

func (r *RecordingLogger) Debug(_ context.Context, msg string, fields ...interface{}) {
	r.record(logging.LevelDebug, nil, msg, fields...)
}

func (r *RecordingLogger) Info(_ context.Context, msg string, fields ...interface{}) {
	r.record(logging.LevelInfo, nil, msg, fields...)
}

func (r *RecordingLogger) Warn(_ context.Context, err error, msg string, fields ...interface{}) {
	r.record(logging.LevelWarn, err, msg, fields...)
}

func (r *RecordingLogger) Error(_ context.Context, err error, msg string, fields ...interface{}) {
	r.record(logging.LevelError, err, msg, fields...)
}

func (r *RecordingLogger) With(fields ...interface{}) logging.Logger {
	merged := make(map[string]interface{}, len(r.fields)+len(fields)/2)
	for k, v := range r.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			merged[key] = fields[i+1]
		}
	}
	return &RecordingLogger{sink: r.sink, component: r.component, fields: merged}
}

func (r *RecordingLogger) WithComponent(component string) logging.Logger {
	return &RecordingLogger{sink: r.sink, component: component, fields: r.fields}
}

// Entries returns a copy of every captured entry.
func (r *RecordingLogger) Entries() []LogEntry {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	out := make([]LogEntry, len(r.sink.entries))
	copy(out, r.sink.entries)
	return out
}

// Errors returns the captured error-level entries.
func (r *RecordingLogger) Errors() []LogEntry {
	var out []LogEntry
	for _, e := range r.Entries() {
		if e.Level == logging.LevelError {
			out = append(out, e)
		}
	}
	return out
}

// FakeCreator records CreateContact calls and returns Err.
// When Gate is non-nil every call blocks until Gate is closed or ctx ends.
type FakeCreator struct {
	mu      sync.Mutex
	records []contact.Record
	Err     error
	Gate    chan struct{}
	Started chan struct{}
}

// NewFakeCreator creates a FakeCreator that succeeds.
func NewFakeCreator() *FakeCreator {
	return &FakeCreator{}
}

// NewFailingCreator creates a FakeCreator whose calls are rejected.
func NewFailingCreator(msg string) *FakeCreator {
	return &FakeCreator{Err: fmt.Errorf("%s", msg)}
}

// NewGatedCreator creates a FakeCreator that blocks until the gate closes.
// Started receives one value per call that has begun.
func NewGatedCreator() *FakeCreator {
	return &FakeCreator{Gate: make(chan struct{}), Started: make(chan struct{}, 16)}
}

func (c *FakeCreator) CreateContact(ctx context.Context, record contact.Record) error {
	c.mu.Lock()
	c.records = append(c.records, record)
	gate, started, err := c.Gate, c.Started, c.Err
	c.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Calls returns the number of CreateContact calls.
func (c *FakeCreator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Records returns every record received.
func (c *FakeCreator) Records() []contact.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]contact.Record, len(c.records))
	copy(out, c.records)
	return out
}

// FakeNavigator records navigation requests.
type FakeNavigator struct {
	mu    sync.Mutex
	paths []string
	Err   error
}

func (n *FakeNavigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	return n.Err
}

// Paths returns every path navigated to.
func (n *FakeNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.paths))
	copy(out, n.paths)
	return out
}

// CreateTestConfig returns a config suitable for handler tests.
func CreateTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8080
	cfg.Server.Environment = "development"
	cfg.API.Endpoint = "http://localhost:20002/graphql"
	return cfg
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}
