package slogx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Logger is a ctx-first facade over slog.Handler.
type Logger struct {
	h slog.Handler
}

func New(h slog.Handler) *Logger {
	return &Logger{h: h}
}

func (l *Logger) Handler() slog.Handler {
	return l.h
}

func (l *Logger) With(attrs ...slog.Attr) *Logger {
	return &Logger{h: l.h.WithAttrs(attrs)}
}

func (l *Logger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.Log(ctx, slog.LevelInfo, msg, attrs...)
}

func (l *Logger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.Log(ctx, slog.LevelDebug, msg, attrs...)
}

func (l *Logger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.Log(ctx, slog.LevelWarn, msg, attrs...)
}

func (l *Logger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.Log(ctx, slog.LevelError, msg, attrs...)
}

func (l *Logger) Log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	slog.New(l.h).LogAttrs(ctx, level, msg, attrs...)
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("parse log level %q: %v", s, err)
	}

	return level, nil
}
