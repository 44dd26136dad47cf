// Package logger exposes the map-field Logger used across the service and
// builds the zap logger behind it.
package logger

import (
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger takes its structured fields as a map so call sites stay free of zap
// types.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
}

// Options controls how New builds the zap logger.
type Options struct {
	Level   string
	Format  string // "json" or "console"
	Output  string // "stdout", "stderr" or a file path
	Service string
}

// New builds a zap logger. An unknown level means info; build errors fall
// back to a no-op logger so a bad output path never prevents startup.
func New(opts Options) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	if opts.Output != "" {
		cfg.OutputPaths = []string{opts.Output}
	}
	if opts.Service != "" {
		cfg.InitialFields = map[string]interface{}{"service": opts.Service}
	}

	built, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return built
}

type fieldLogger struct {
	z *zap.Logger
}

func (f fieldLogger) Debug(msg string, fields map[string]interface{}) {
	f.z.Debug(msg, toZap(fields)...)
}

func (f fieldLogger) Info(msg string, fields map[string]interface{}) {
	f.z.Info(msg, toZap(fields)...)
}

func (f fieldLogger) Warn(msg string, fields map[string]interface{}) {
	f.z.Warn(msg, toZap(fields)...)
}

func (f fieldLogger) Error(msg string, fields map[string]interface{}) {
	f.z.Error(msg, toZap(fields)...)
}

func (f fieldLogger) WithFields(fields map[string]interface{}) Logger {
	return fieldLogger{z: f.z.With(toZap(fields)...)}
}

// toZap converts fields in key order so log lines are stable.
func toZap(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, len(keys))
	for i, k := range keys {
		if err, ok := fields[k].(error); ok {
			out[i] = zap.NamedError(k, err)
			continue
		}
		out[i] = zap.Any(k, fields[k])
	}
	return out
}

// NewZapAdapter wraps an existing *zap.Logger.
func NewZapAdapter(l *zap.Logger) Logger {
	return fieldLogger{z: l}
}

// NewTestLogger routes output through t.Log.
func NewTestLogger(t testing.TB) Logger {
	return fieldLogger{z: zaptest.NewLogger(t)}
}

func NewNoOpLogger() Logger {
	return fieldLogger{z: zap.NewNop()}
}
