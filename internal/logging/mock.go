package logging

import "sync"

// MockLogger records entries instead of writing them. Loggers derived with
// WithError/WithField(s) share the same record.
type MockLogger struct {
	record        *mockRecord
	pendingError  error
	pendingFields []Field
}

type mockRecord struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is a single entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{record: &mockRecord{}}
}

func (m *MockLogger) add(level, msg string, fields []Field) {
	if m.record == nil {
		m.record = &mockRecord{}
	}
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)

	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	m.record.entries = append(m.record.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.add("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.add("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.add("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.add("ERROR", msg, fields) }

func (m *MockLogger) WithError(err error) Logger {
	if m.record == nil {
		m.record = &mockRecord{}
	}
	return &MockLogger{
		record:        m.record,
		pendingError:  err,
		pendingFields: m.pendingFields,
	}
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	if m.record == nil {
		m.record = &mockRecord{}
	}
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)
	return &MockLogger{
		record:        m.record,
		pendingError:  m.pendingError,
		pendingFields: all,
	}
}

// GetEntries returns a copy of all captured entries.
func (m *MockLogger) GetEntries() []LogEntry {
	if m.record == nil {
		return nil
	}
	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	out := make([]LogEntry, len(m.record.entries))
	copy(out, m.record.entries)
	return out
}

// GetEntriesByLevel returns the captured entries of one level.
func (m *MockLogger) GetEntriesByLevel(level string) []LogEntry {
	var entries []LogEntry
	for _, entry := range m.GetEntries() {
		if entry.Level == level {
			entries = append(entries, entry)
		}
	}
	return entries
}

// HasEntry reports whether an entry with level and message was captured.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, entry := range m.GetEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

// Clear drops all captured entries.
func (m *MockLogger) Clear() {
	if m.record == nil {
		return
	}
	m.record.mu.Lock()
	m.record.entries = nil
	m.record.mu.Unlock()
}
