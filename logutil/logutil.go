// Package logutil configures the structured logger shared by the command
// line tool and the HTTP server.
package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"
)

// LevelTrace is more verbose than slog.LevelDebug.
const LevelTrace slog.Level = -8

// NewLogger returns a text logger writing to w. Source locations are
// trimmed to the file name.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if attr.Value.Any().(slog.Level) == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}

// Trace logs msg at LevelTrace on the default logger.
func Trace(msg string, args ...any) {
	TraceContext(context.Background(), msg, args...)
}

// TraceContext logs msg at LevelTrace on the default logger.
func TraceContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.Default(), msg, args...)
}

// TraceTo logs msg at LevelTrace on l.
func TraceTo(l *slog.Logger, msg string, args ...any) {
	logAt(context.Background(), l, msg, args...)
}

func logAt(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	if !l.Enabled(ctx, LevelTrace) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip Callers, logAt and the exported wrapper
	r := slog.NewRecord(time.Now(), LevelTrace, msg, pcs[0])
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}
