// Package logger configures the process-wide slog logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
)

const instrumentationName = "permanode"

var Logger = slog.Default()

// Options controls how Init builds the handler chain.
type Options struct {
	Level      string
	EnableOTel bool
	Output     io.Writer
}

// Init builds the handler chain, installs it as slog's default and returns it.
func Init(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	levelName := opts.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		levelName = env
	}
	level := ParseLevel(levelName)

	jsonHandler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})

	var handler slog.Handler = NewTraceContextHandler(jsonHandler)
	if opts.EnableOTel {
		otelHandler := otelslog.NewHandler(
			instrumentationName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
		handler = NewMultiHandler(handler, otelHandler)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Info("logger initialized", "level", level.String(), "otel_enabled", opts.EnableOTel)
	return Logger
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether ParseLevel understands level without falling back.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// MultiHandler fans a record out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			_ = handler.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: newHandlers}
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &MultiHandler{handlers: newHandlers}
}
