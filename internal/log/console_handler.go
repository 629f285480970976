package log

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
)

// ConsoleHandler is a slog.Handler that renders records through zerolog's
// ConsoleWriter:
//
//	15:04:05 INF server started port=8080
type ConsoleHandler struct {
	logger zerolog.Logger
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// ConsoleOption configures a ConsoleHandler.
type ConsoleOption func(*zerolog.ConsoleWriter)

// WithNoColor disables ANSI colours.
func WithNoColor() ConsoleOption {
	return func(w *zerolog.ConsoleWriter) { w.NoColor = true }
}

// NewConsoleHandler creates a ConsoleHandler writing to w.
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions, options ...ConsoleOption) *ConsoleHandler {
	cw := zerolog.ConsoleWriter{
		Out:        zerolog.SyncWriter(w),
		TimeFormat: "15:04:05",
	}
	for _, opt := range options {
		opt(&cw)
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &ConsoleHandler{
		logger: zerolog.New(cw).Level(zerolog.TraceLevel),
		level:  level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one record.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.logger.WithLevel(zerologLevel(r.Level))
	if !r.Time.IsZero() {
		ev = ev.Time(zerolog.TimestampFieldName, r.Time)
	}
	for _, a := range h.attrs {
		ev = addAttr(ev, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = addAttr(ev, h.prefix, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

// WithAttrs returns a handler that always includes attrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup returns a handler that prefixes later keys with name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func addAttr(ev *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return ev
	}
	key := prefix + a.Key

	switch a.Value.Kind() {
	case slog.KindGroup:
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = key + "."
		}
		for _, ga := range a.Value.Group() {
			ev = addAttr(ev, groupPrefix, ga)
		}
		return ev
	case slog.KindString:
		return ev.Str(key, a.Value.String())
	case slog.KindInt64:
		return ev.Int64(key, a.Value.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return ev.Bool(key, a.Value.Bool())
	case slog.KindDuration:
		return ev.Str(key, a.Value.Duration().String())
	case slog.KindTime:
		return ev.Str(key, a.Value.Time().Format(time.RFC3339))
	default:
		if err, ok := a.Value.Any().(error); ok {
			return ev.Str(key, err.Error())
		}
		return ev.Interface(key, a.Value.Any())
	}
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l >= slog.LevelError:
		return zerolog.ErrorLevel
	case l >= slog.LevelWarn:
		return zerolog.WarnLevel
	case l >= slog.LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
