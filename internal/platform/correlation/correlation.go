// Package correlation carries a short request or run identifier through
// context.Context and stamps it onto every log record.
package correlation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// HeaderName is the HTTP header used to propagate an inbound correlation id.
const HeaderName = "X-Correlation-ID"

const maxInboundIDLength = 64

type contextKey struct{}

// NewID returns an 8-character hex id taken from a random UUID.
func NewID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// FromHeader returns the inbound id if it is usable, otherwise a new one.
func FromHeader(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxInboundIDLength {
		return NewID()
	}
	return value
}

// WithID returns a new context carrying the given correlation ID.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// ID extracts the correlation ID from ctx, returning ("", false) if not present.
func ID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Handler wraps an slog.Handler and adds a "correlation_id" attribute when
// the record's context carries one.
type Handler struct {
	inner slog.Handler
}

func NewHandler(inner slog.Handler) *Handler {
	return &Handler{inner: inner}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ID(ctx); ok {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("correlation handler: %w", err)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}
