// Package logging builds the process-wide slog.Logger: a console handler (tint text or JSON)
// optionally fanned out to Fluent Bit.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"

	"github.com/joseph-ayodele/lease-extractor/internal/common"
)

// New returns the logger and a close func that flushes the Fluent client, if any.
func New(cfg common.LogConfig, appName string, w io.Writer) (*slog.Logger, func() error, error) {
	if w == nil {
		w = os.Stdout
	}
	level := ParseLevel(cfg.Level)

	var console slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		console = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		console = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	noop := func() error { return nil }
	if !cfg.FluentEnabled {
		return slog.New(console).With("service_name", appName), noop, nil
	}

	if appName == "" {
		return nil, noop, errors.New("fluent tag prefix is required")
	}
	client, err := fluent.New(fluent.Config{
		FluentHost: cfg.FluentHost,
		FluentPort: cfg.FluentPort,
		TagPrefix:  appName,
		Async:      true,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("create fluent client: %w", err)
	}

	h := NewFanoutHandler(console, NewFluentHandler(client, level))
	return slog.New(h).With("service_name", appName), client.Close, nil
}

// ParseLevel maps debug/info/warn/error onto slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// FanoutHandler forwards each record to every wrapped handler.
type FanoutHandler struct {
	handlers []slog.Handler
}

func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{handlers: handlers}
}

func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, 0, len(f.handlers))
	for _, h := range f.handlers {
		out = append(out, h.WithAttrs(attrs))
	}
	return &FanoutHandler{handlers: out}
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, 0, len(f.handlers))
	for _, h := range f.handlers {
		out = append(out, h.WithGroup(name))
	}
	return &FanoutHandler{handlers: out}
}

// poster is the slice of *fluent.Fluent the handler needs.
type poster interface {
	PostWithTime(tag string, tm time.Time, message interface{}) error
}

// FluentHandler posts each record as a flat map tagged with its level.
type FluentHandler struct {
	client poster
	level  slog.Leveler
	fields map[string]any
	prefix string
}

func NewFluentHandler(client poster, level slog.Leveler) *FluentHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FluentHandler{client: client, level: level, fields: map[string]any{}}
}

func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]any, len(h.fields)+r.NumAttrs()+3)
	for k, v := range h.fields {
		data[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		h.put(data, h.prefix, a)
		return true
	})
	data["level"] = strings.ToLower(r.Level.String())
	data["message"] = r.Message
	data["timestamp"] = r.Time.UTC().Format(time.RFC3339Nano)

	return h.client.PostWithTime(strings.ToLower(r.Level.String()), r.Time, data)
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		next.put(next.fields, next.prefix, a)
	}
	return next
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *FluentHandler) clone() *FluentHandler {
	fields := make(map[string]any, len(h.fields))
	for k, v := range h.fields {
		fields[k] = v
	}
	return &FluentHandler{client: h.client, level: h.level, fields: fields, prefix: h.prefix}
}

func (h *FluentHandler) put(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			h.put(dst, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	switch v.Kind() {
	case slog.KindTime:
		dst[prefix+a.Key] = v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindDuration:
		dst[prefix+a.Key] = v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			dst[prefix+a.Key] = err.Error()
			return
		}
		dst[prefix+a.Key] = fmt.Sprint(v.Any())
	default:
		dst[prefix+a.Key] = v.Any()
	}
}
