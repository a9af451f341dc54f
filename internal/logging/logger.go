// Package logging defines the leveled logger used across sitekit.
package logging

import (
	"io"
	"log/slog"
)

type Field struct {
	Key   string
	Value any
}

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}

func (NopLogger) Info(string, ...Field) {}

func (NopLogger) Warn(string, ...Field) {}

func (NopLogger) Error(string, ...Field) {}

// With returns logger, or a NopLogger when logger is nil.
func With(logger Logger) Logger {
	if logger == nil {
		return NopLogger{}
	}

	return logger
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// SlogLogger writes key/value records through a log/slog text handler.
type SlogLogger struct {
	l *slog.Logger
}

// New creates a logger writing to w. Debug records are dropped unless verbose is set.
func New(w io.Writer, verbose bool) *SlogLogger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{l: slog.New(h)}
}

func (s *SlogLogger) Debug(msg string, fields ...Field) {
	s.l.Debug(msg, attrs(fields)...)
}

func (s *SlogLogger) Info(msg string, fields ...Field) {
	s.l.Info(msg, attrs(fields)...)
}

func (s *SlogLogger) Warn(msg string, fields ...Field) {
	s.l.Warn(msg, attrs(fields)...)
}

func (s *SlogLogger) Error(msg string, fields ...Field) {
	s.l.Error(msg, attrs(fields)...)
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}
