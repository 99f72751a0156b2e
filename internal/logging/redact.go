package logging

import (
	"context"
	"log/slog"
)

// Redacted replaces the value of a masked attribute.
const Redacted = "[REDACTED]"

// noteFields carry user-typed text.
var noteFields = map[string]struct{}{
	"content": {},
	"draft":   {},
	"text":    {},
}

// RedactingHandler masks note text in records above debug level, so only a
// deliberately verbose run writes what the user typed. Attributes bound with
// WithAttrs are always masked.
type RedactingHandler struct {
	inner slog.Handler
}

func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	mask := record.Level > slog.LevelDebug

	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(redactAttr(attr, mask))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		redacted = append(redacted, redactAttr(attr, true))
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(redacted)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(attr slog.Attr, mask bool) slog.Attr {
	if !mask {
		return attr
	}
	if _, ok := noteFields[attr.Key]; ok {
		return slog.String(attr.Key, Redacted)
	}

	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		redacted := make([]slog.Attr, 0, len(group))
		for _, nested := range group {
			redacted = append(redacted, redactAttr(nested, mask))
		}
		return slog.Attr{
			Key:   attr.Key,
			Value: slog.GroupValue(redacted...),
		}
	}

	return attr
}
