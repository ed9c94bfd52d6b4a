package logging

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// UnbelievaBoat application tokens are JWTs: three base64url segments
// separated by dots.
var jwtPattern = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*$`)

// RedactOptions returns the masq options applied to every log record.
// They cover the field names the client and its callers are likely to log
// a token under, plus a JWT shape match as a backstop.
func RedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("token"),
		masq.WithFieldName("Token"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldName("apiKey"),
		masq.WithFieldName("api_key"),
		masq.WithRegex(jwtPattern),
	}
}

// NewReplaceAttr returns an slog ReplaceAttr function that redacts secrets.
func NewReplaceAttr() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(RedactOptions()...)
}

// redactHandler runs every attribute through a ReplaceAttr function before
// delegating. Handlers that take a ReplaceAttr option apply redaction
// themselves; this wraps the ones that don't, such as the charmbracelet
// terminal handler.
type redactHandler struct {
	inner   slog.Handler
	replace func(groups []string, a slog.Attr) slog.Attr
}

// newRedactHandler wraps inner with secret redaction.
func newRedactHandler(inner slog.Handler) *redactHandler {
	return &redactHandler{inner: inner, replace: NewReplaceAttr()}
}

// Enabled implements slog.Handler.
func (h *redactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *redactHandler) Handle(ctx context.Context, record slog.Record) error {
	redacted := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.replace(nil, a))
		return true
	})

	return h.inner.Handle(ctx, redacted)
}

// WithAttrs implements slog.Handler.
func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.replace(nil, a)
	}

	return &redactHandler{inner: h.inner.WithAttrs(redacted), replace: h.replace}
}

// WithGroup implements slog.Handler.
func (h *redactHandler) WithGroup(name string) slog.Handler {
	return &redactHandler{inner: h.inner.WithGroup(name), replace: h.replace}
}
