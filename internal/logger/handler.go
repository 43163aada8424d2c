// Package logger provides the slog handlers used by the command line and
// terminal front ends.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	glyphWarn  = "⚠"
	glyphError = "✗"
	glyphDebug = "·"
)

// PrettyHandler is a slog.Handler that writes one colored line per record.
type PrettyHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
	group string

	debug lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
}

// NewPrettyHandler creates a PrettyHandler writing to w (os.Stderr if nil).
// Colors are dropped when w is not a terminal.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	r := lipgloss.NewRenderer(w)
	return &PrettyHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		debug: r.NewStyle().Foreground(lipgloss.Color("241")),
		info:  r.NewStyle().Foreground(lipgloss.Color("252")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		err:   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var style lipgloss.Style
	msg := r.Message

	switch {
	case r.Level >= slog.LevelError:
		msg = glyphError + " " + msg
		style = h.err
	case r.Level >= slog.LevelWarn:
		msg = glyphWarn + " " + msg
		style = h.warn
	case r.Level >= slog.LevelInfo:
		style = h.info
	default:
		msg = glyphDebug + " " + msg
		style = h.debug
	}

	if attrs := h.formatAttrs(r); attrs != "" {
		msg += " " + attrs
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, style.Render(msg)+"\n")
	return err
}

func (h *PrettyHandler) formatAttrs(r slog.Record) string {
	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		parts = append(parts, formatAttr(h.group, attr))
	}
	r.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, formatAttr(h.group, attr))
		return true
	})
	return strings.Join(parts, " ")
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a new Handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	clone.group = name
	return &clone
}

// formatAttr formats a single attribute as key=value, prefixing the key
// with the group name.
func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	return key + "=" + attr.Value.String()
}

// Event is a log record forwarded by FuncHandler.
type Event struct {
	Level   slog.Level
	Message string
}

// FuncHandler is a slog.Handler that forwards records to a callback, with
// attributes folded into the message.
type FuncHandler struct {
	fn    func(Event)
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewFuncHandler creates a FuncHandler calling fn for every enabled record.
func NewFuncHandler(fn func(Event), level slog.Leveler) *FuncHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FuncHandler{fn: fn, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *FuncHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle forwards the record.
func (h *FuncHandler) Handle(_ context.Context, r slog.Record) error {
	msg := r.Message
	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		parts = append(parts, formatAttr(h.group, attr))
	}
	r.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, formatAttr(h.group, attr))
		return true
	})
	if len(parts) > 0 {
		msg += " " + strings.Join(parts, " ")
	}
	h.fn(Event{Level: r.Level, Message: msg})
	return nil
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *FuncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a new Handler with the given group name.
func (h *FuncHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	clone.group = name
	return &clone
}

// New returns a logger writing pretty output to w. verbose enables debug
// records.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(NewPrettyHandler(w, &slog.HandlerOptions{Level: level}))
}
