// Package logutil owns the process-wide zap logger. Init is called once at
// startup; GetLogger enriches the logger with request-scoped fields when
// they are present in the context.
package logutil

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var base = zap.NewNop()

func Init(level string, console bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	if console {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	base = logger
	return nil
}

func GetLogger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return base
	}
	if fields, ok := ctx.Value(ctxKey{}).([]zap.Field); ok {
		return base.With(fields...)
	}
	return base
}

func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if existing, ok := ctx.Value(ctxKey{}).([]zap.Field); ok {
		fields = append(existing, fields...)
	}
	return context.WithValue(ctx, ctxKey{}, fields)
}
