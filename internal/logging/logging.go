// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Format selects the handler behind the slog logger.
type Format string

const (
	// FormatText is slog's key=value text handler.
	FormatText Format = "text"
	// FormatZap routes records through a zap JSON core.
	FormatZap Format = "zap"
)

// ParseFormat resolves a -log-format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatZap:
		return f, nil
	}
	return "", fmt.Errorf("unknown log format %q (want text or zap)", s)
}

// New returns a logger writing to w. In debug mode the level drops to Debug
// and records carry their source location.
func New(w io.Writer, format Format, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if format == FormatZap {
		return slog.New(zapHandler(w, debug))
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	return slog.New(h)
}

// Init builds the logger and installs it as the slog default so the stdlib
// log package routes through the same handler.
func Init(w io.Writer, format Format, debug bool) *slog.Logger {
	l := New(w, format, debug)
	slog.SetDefault(l)
	return l
}

func zapHandler(w io.Writer, debug bool) slog.Handler {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zapslog.NewHandler(core, zapslog.WithCaller(debug))
}
