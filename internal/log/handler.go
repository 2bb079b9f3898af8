package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length limits applied to string attribute values, in runes.
const (
	// MaxValueLength bounds ordinary string values.
	MaxValueLength = 512
	// MaxTextLength bounds values carrying recognized text.
	MaxTextLength = 160
)

// TruncationMarker is appended to values cut by the handler.
const TruncationMarker = "…"

// textKeys are attribute keys whose values hold OCR output. Such text is
// long and noisy, so it gets the tighter limit.
var textKeys = map[string]bool{
	"raw":  true,
	"line": true,
	"text": true,
	"cell": true,
}

// SanitizingHandler wraps an slog.Handler and cleans string attribute
// values before passing records on. Control characters are replaced with
// spaces and overlong values are truncated, so stray escape sequences in
// recognized text cannot corrupt terminal output or break log lines.
type SanitizingHandler struct {
	handler slog.Handler
}

// NewSanitizingHandler creates a SanitizingHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSanitizingHandler(handler slog.Handler) *SanitizingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SanitizingHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *SanitizingHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, sanitizeString(r.Message, MaxValueLength), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the sanitized attributes added.
func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = sanitizeAttr(a)
	}
	return &SanitizingHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	case slog.KindString:
		limit := MaxValueLength
		if textKeys[strings.ToLower(a.Key)] {
			limit = MaxTextLength
		}
		return slog.String(a.Key, sanitizeString(a.Value.String(), limit))
	default:
		return a
	}
}

// sanitizeString replaces control characters with spaces and cuts s to at
// most limit runes.
func sanitizeString(s string, limit int) string {
	clean := strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	if utf8.RuneCountInString(clean) <= limit {
		return clean
	}
	runes := []rune(clean)
	return string(runes[:limit]) + TruncationMarker
}

// NewLogger creates a text logger writing to w through a
// SanitizingHandler. Verbose loggers emit Debug records; others start at
// Warn.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(verbose)}
	return slog.New(NewSanitizingHandler(slog.NewTextHandler(w, opts)))
}

// NewJSONLogger is like NewLogger but writes JSON records.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(verbose)}
	return slog.New(NewSanitizingHandler(slog.NewJSONHandler(w, opts)))
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
