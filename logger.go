package icalendar

import (
	"fmt"
	"io"
	"log"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type noopLogger struct{}

func (n *noopLogger) Debug(msg string, args ...interface{}) {}
func (n *noopLogger) Info(msg string, args ...interface{})  {}
func (n *noopLogger) Warn(msg string, args ...interface{})  {}
func (n *noopLogger) Error(msg string, args ...interface{}) {}

type standardLogger struct {
	logger *log.Logger
	level  LogLevel
}

func NewStandardLogger(w io.Writer, level LogLevel) Logger {
	return &standardLogger{
		logger: log.New(w, "[icalendar] ", log.LstdFlags),
		level:  level,
	}
}

func (s *standardLogger) Debug(msg string, args ...interface{}) {
	if s.level >= LogLevelDebug {
		s.log("DEBUG", msg, args...)
	}
}

func (s *standardLogger) Info(msg string, args ...interface{}) {
	if s.level >= LogLevelInfo {
		s.log("INFO", msg, args...)
	}
}

func (s *standardLogger) Warn(msg string, args ...interface{}) {
	if s.level >= LogLevelWarn {
		s.log("WARN", msg, args...)
	}
}

func (s *standardLogger) Error(msg string, args ...interface{}) {
	if s.level >= LogLevelError {
		s.log("ERROR", msg, args...)
	}
}

func (s *standardLogger) log(level, msg string, args ...interface{}) {
	formatted := fmt.Sprintf(msg, args...)
	s.logger.Printf("[%s] %s", level, formatted)
}

type RegistryOption func(*TimeZoneRegistry)

func WithLogger(logger Logger) RegistryOption {
	return func(r *TimeZoneRegistry) {
		r.logger = logger
	}
}

func WithDebugLogging(w io.Writer) RegistryOption {
	return func(r *TimeZoneRegistry) {
		r.logger = NewStandardLogger(w, LogLevelDebug)
	}
}
