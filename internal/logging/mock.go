package logging

import (
	"fmt"
	"sync"
)

// MockLogger is a mock implementation of the Logger interface for testing.
// It captures log entries for verification in tests. Derived loggers from
// WithError/WithField record into the root logger's Entries, and recording
// is safe for concurrent use.
type MockLogger struct {
	mu      sync.Mutex
	Entries []LogEntry

	parent        *MockLogger
	pendingError  error
	pendingFields []Field
}

// LogEntry represents a single log entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// Debug logs a debug-level message with optional fields.
func (m *MockLogger) Debug(msg string, fields ...Field) {
	m.record("DEBUG", msg, fields)
}

// Info logs an info-level message with optional fields.
func (m *MockLogger) Info(msg string, fields ...Field) {
	m.record("INFO", msg, fields)
}

// Warn logs a warning-level message with optional fields.
func (m *MockLogger) Warn(msg string, fields ...Field) {
	m.record("WARN", msg, fields)
}

// Error logs an error-level message with optional fields.
func (m *MockLogger) Error(msg string, fields ...Field) {
	m.record("ERROR", msg, fields)
}

// WithError returns a derived logger with an error attached.
func (m *MockLogger) WithError(err error) Logger {
	return &MockLogger{
		parent:        m,
		pendingError:  err,
		pendingFields: m.pendingFields,
	}
}

// WithField returns a derived logger with a single field attached.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

// WithFields returns a derived logger with multiple fields attached.
func (m *MockLogger) WithFields(fields ...Field) Logger {
	combined := make([]Field, 0, len(m.pendingFields)+len(fields))
	combined = append(combined, m.pendingFields...)
	combined = append(combined, fields...)
	return &MockLogger{
		parent:        m,
		pendingError:  m.pendingError,
		pendingFields: combined,
	}
}

// Fatal records a fatal-level message. Unlike production implementations it
// does not exit, so tests can assert on fatal paths.
func (m *MockLogger) Fatal(msg string, fields ...Field) {
	m.record("FATAL", msg, fields)
}

// Fatalf records a formatted fatal-level message without exiting.
func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(msg, args...), nil)
}

func (m *MockLogger) root() *MockLogger {
	r := m
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	allFields := make([]Field, 0, len(m.pendingFields)+len(fields))
	allFields = append(allFields, m.pendingFields...)
	allFields = append(allFields, fields...)

	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  allFields,
		Error:   m.pendingError,
	})
}

// HasMessage reports whether any captured entry contains the given message.
func (m *MockLogger) HasMessage(msg string) bool {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}
