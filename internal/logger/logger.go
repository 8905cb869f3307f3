// Package logger is a compact slog handler: one line per record with
// time, level, message and key=value attributes.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

type Handler struct {
	console io.Writer // records at or above Info, every record in debug mode
	file    io.Writer // every enabled record, may be nil
	level   slog.Leveler
	debug   bool

	attrs  []slog.Attr
	prefix string // open group names joined with dots
	mu     *sync.Mutex
}

// NewHandler returns a handler writing to console and, when file is not
// nil, to file. With debug set, debug records reach the console too.
func NewHandler(console, file io.Writer, level slog.Leveler, debug bool) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		console: console,
		file:    file,
		level:   level,
		debug:   debug,
		mu:      &sync.Mutex{},
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			appendAttr(b, prefix+a.Key+".", ga)
		}
		return
	}
	fmt.Fprintf(b, " %s%s=%v", prefix, a.Key, a.Value.Any())
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006/01/02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteString(": ")
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		appendAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')
	line := []byte(b.String())

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.file != nil {
		_, err = h.file.Write(line)
	}
	if h.console != nil && (h.debug || r.Level > slog.LevelDebug) {
		if _, cerr := h.console.Write(line); err == nil {
			err = cerr
		}
	}
	return err
}
