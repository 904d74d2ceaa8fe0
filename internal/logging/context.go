package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	renderIDKey ctxKey = iota
	documentKey
	toolKey
)

// WithRenderID returns a context with the render ID set.
func WithRenderID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, renderIDKey, id)
}

// WithDocument returns a context naming the document being processed
// (its title or source file).
func WithDocument(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, documentKey, name)
}

// WithTool returns a context with the MCP tool name set.
func WithTool(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolKey, name)
}

// RenderID extracts the render ID from the context, or "" if absent.
func RenderID(ctx context.Context) string {
	v, _ := ctx.Value(renderIDKey).(string)
	return v
}

// Document extracts the document name from the context, or "" if absent.
func Document(ctx context.Context) string {
	v, _ := ctx.Value(documentKey).(string)
	return v
}

// Tool extracts the MCP tool name from the context, or "" if absent.
func Tool(ctx context.Context) string {
	v, _ := ctx.Value(toolKey).(string)
	return v
}

// correlationAttrs returns the non-empty correlation values of ctx.
func correlationAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if v := RenderID(ctx); v != "" {
		attrs = append(attrs, slog.String("render_id", v))
	}
	if v := Document(ctx); v != "" {
		attrs = append(attrs, slog.String("document", v))
	}
	if v := Tool(ctx); v != "" {
		attrs = append(attrs, slog.String("tool", v))
	}
	return attrs
}

// LogWith returns a logger enriched with correlation values from the context.
// Only non-empty values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	for _, a := range correlationAttrs(ctx) {
		logger = logger.With(a)
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation values from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and the values appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(correlationAttrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
