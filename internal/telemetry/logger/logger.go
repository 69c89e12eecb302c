// Package logger provides structured logging for ptagate.
//
// Loggers are backed by log/slog. Every record passes through the redaction
// in redact.go before it is written, so tokens and key material never reach
// the output whatever attribute name they are logged under.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config mirrors the log section of the gate configuration.
type Config struct {
	Level     string    // debug, info, warn or error
	Format    string    // json (default) or text
	Output    io.Writer // os.Stderr when nil
	AddSource bool
}

// level is shared by every logger so a reload can retune them all at once.
var level = new(slog.LevelVar)

// New builds a logger for cfg and sets the shared level to cfg.Level.
func New(cfg Config) (Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(out, opts)
	case "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	level.Set(parseLevel(cfg.Level))
	return &slogLogger{logger: slog.New(h), ctx: context.Background()}, nil
}

// SetLevel changes the level of every logger, e.g. on config reload.
// Unknown names fall back to info.
func SetLevel(name string) {
	level.Set(parseLevel(name))
}

// GetLevel reports the current level name, as shown by the admin status
// command.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

func parseLevel(name string) slog.Level {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

type slogLogger struct {
	logger *slog.Logger
	ctx    context.Context
}

func (l *slogLogger) log(lvl slog.Level, msg string, args []any) {
	l.logger.Log(l.ctx, lvl, msg, args...)
}

func (l *slogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *slogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *slogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...), ctx: l.ctx}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return &slogLogger{logger: l.logger, ctx: ctx}
}

var defaultLogger atomic.Pointer[slogLogger]

func init() {
	l, _ := New(Config{Level: "info"})
	defaultLogger.Store(l.(*slogLogger))
}

// SetDefault replaces the process-wide logger. It also becomes slog's
// default, so libraries logging through slog get the same redaction.
func SetDefault(l Logger) {
	if sl, ok := l.(*slogLogger); ok {
		defaultLogger.Store(sl)
		slog.SetDefault(sl.logger)
	}
}

// Default returns the process-wide logger.
func Default() Logger {
	return defaultLogger.Load()
}

// Slog returns the *slog.Logger behind l, or slog.Default() for other
// Logger implementations.
func Slog(l Logger) *slog.Logger {
	if sl, ok := l.(*slogLogger); ok {
		return sl.logger
	}
	return slog.Default()
}
