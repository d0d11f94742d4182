package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rivo/uniseg"
)

// MaxValueGraphemes caps how much of a string attribute reaches the log.
// Notes and descriptions can be long; stroke images are raw bytes.
const MaxValueGraphemes = 120

// TruncatingHandler shortens long string attributes and replaces byte
// slices with their size before passing records on.
type TruncatingHandler struct {
	inner slog.Handler
}

func NewTruncatingHandler(inner slog.Handler) *TruncatingHandler {
	return &TruncatingHandler{inner: inner}
}

func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *TruncatingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(shortenAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	short := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		short = append(short, shortenAttr(attr))
	}
	return &TruncatingHandler{inner: h.inner.WithAttrs(short)}
}

func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{inner: h.inner.WithGroup(name)}
}

func shortenAttr(attr slog.Attr) slog.Attr {
	v := attr.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, Truncate(v.String(), MaxValueGraphemes))
	case slog.KindGroup:
		group := v.Group()
		short := make([]any, 0, len(group))
		for _, a := range group {
			short = append(short, shortenAttr(a))
		}
		return slog.Group(attr.Key, short...)
	case slog.KindAny:
		if b, ok := v.Any().([]byte); ok {
			return slog.String(attr.Key, fmt.Sprintf("<%d bytes>", len(b)))
		}
	}
	return slog.Attr{Key: attr.Key, Value: v}
}

// Truncate cuts s to at most n user-perceived characters, marking the cut
// with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 || uniseg.GraphemeClusterCount(s) <= n {
		return s
	}
	g := uniseg.NewGraphemes(s)
	end := 0
	for i := 0; i < n && g.Next(); i++ {
		_, end = g.Positions()
	}
	return s[:end] + "…"
}
