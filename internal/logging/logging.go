package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console-encoded zap.Logger at the given level. Unknown levels
// fall back to info. Output defaults to stderr when w is nil.
func New(level string, w io.Writer) *zap.Logger {
	lvl := parseLevel(level)
	if w == nil {
		w = os.Stderr
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(core)
}

// NewTUI logs everything at level to file and only errors to errs, so a
// running TUI keeps a clean screen but failures stay visible.
func NewTUI(level string, file, errs io.Writer) *zap.Logger {
	lvl := parseLevel(level)
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(file), zap.NewAtomicLevelAt(lvl)),
		zapcore.NewCore(enc.Clone(), zapcore.AddSync(errs), zap.NewAtomicLevelAt(zapcore.ErrorLevel)),
	)
	return zap.New(core)
}

func parseLevel(level string) zapcore.Level {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(strings.ToLower(strings.TrimSpace(level))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "ts",
		NameKey:        "logger",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     bracketNameEncoder,
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// bracketNameEncoder keeps the "[component]" prefix look of the old log lines.
func bracketNameEncoder(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + name + "]")
}
