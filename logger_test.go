package icalendar

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

type mockLogger struct {
	debugCalls []string
	infoCalls  []string
	warnCalls  []string
	errorCalls []string
}

func (m *mockLogger) Debug(msg string, args ...interface{}) {
	m.debugCalls = append(m.debugCalls, msg)
}

func (m *mockLogger) Info(msg string, args ...interface{}) {
	m.infoCalls = append(m.infoCalls, msg)
}

func (m *mockLogger) Warn(msg string, args ...interface{}) {
	m.warnCalls = append(m.warnCalls, msg)
}

func (m *mockLogger) Error(msg string, args ...interface{}) {
	m.errorCalls = append(m.errorCalls, msg)
}

func TestStandardLoggerLevels(t *testing.T) {
	tests := []struct {
		name       string
		level      LogLevel
		emit       func(Logger)
		wantOutput string
		wantLogged bool
	}{
		{
			name:       "debug level logs debug",
			level:      LogLevelDebug,
			emit:       func(l Logger) { l.Debug("derived %s", "x") },
			wantOutput: "[DEBUG] derived x",
			wantLogged: true,
		},
		{
			name:       "info level skips debug",
			level:      LogLevelInfo,
			emit:       func(l Logger) { l.Debug("hidden") },
			wantLogged: false,
		},
		{
			name:       "warn level logs error",
			level:      LogLevelWarn,
			emit:       func(l Logger) { l.Error("boom") },
			wantOutput: "[ERROR] boom",
			wantLogged: true,
		},
		{
			name:       "error level skips warn",
			level:      LogLevelError,
			emit:       func(l Logger) { l.Warn("hidden") },
			wantLogged: false,
		},
		{
			name:       "none level skips everything",
			level:      LogLevelNone,
			emit:       func(l Logger) { l.Error("hidden") },
			wantLogged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := &standardLogger{
				logger: log.New(&buf, "", 0),
				level:  tt.level,
			}
			tt.emit(logger)

			got := buf.String()
			if tt.wantLogged {
				if !strings.Contains(got, tt.wantOutput) {
					t.Errorf("output = %q, want %q", got, tt.wantOutput)
				}
			} else if got != "" {
				t.Errorf("output = %q, want nothing", got)
			}
		})
	}
}

func TestRegistryLoggerOption(t *testing.T) {
	mock := &mockLogger{}
	registry := NewTimeZoneRegistry(WithLogger(mock))

	if _, err := registry.Definition("Europe/London"); err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}
	if len(mock.debugCalls) == 0 {
		t.Error("derivation logged nothing at debug level")
	}

	before := len(mock.debugCalls)
	if _, err := registry.Definition("Europe/London"); err != nil {
		t.Fatalf("second Definition() error = %v", err)
	}
	hitLogged := false
	for _, msg := range mock.debugCalls[before:] {
		if strings.Contains(msg, "cache hit") {
			hitLogged = true
		}
	}
	if !hitLogged {
		t.Error("cache hit was not logged")
	}
}

func TestWithDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	registry := NewTimeZoneRegistry(WithDebugLogging(&buf))

	if _, err := registry.Definition("Asia/Tokyo"); err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}
	if !strings.Contains(buf.String(), "[icalendar]") || !strings.Contains(buf.String(), "[DEBUG]") {
		t.Errorf("debug output = %q", buf.String())
	}
}
