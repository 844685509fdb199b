package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap.SugaredLogger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// ZapConfig contains the inputs needed to build a zap-backed logger.
type ZapConfig struct {
	// Environment selects the output profile: "production" emits JSON,
	// anything else emits console output.
	Environment string
	// Level is the verbosity ceiling ("error", "warn", "info", "debug").
	Level string
}

// NewZapLogger builds a structured logger from the given config.
func NewZapLogger(cfg ZapConfig) (*ZapLogger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid zap config: %w", err)
	}

	var base zap.Config
	if strings.EqualFold(cfg.Environment, "production") {
		base = zap.NewProductionConfig()
	} else {
		base = zap.NewDevelopmentConfig()
	}

	base.Level = zap.NewAtomicLevelAt(toZapLevel(level))
	base.DisableStacktrace = true

	built, err := base.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &ZapLogger{sugar: built.Sugar()}, nil
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case ErrorLevel:
		return zapcore.ErrorLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case DebugLevel:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Info implements the Logger interface.
func (l *ZapLogger) Info(args ...any) { l.sugar.Info(sanitizeLogArgs(args)...) }

// Infof implements the Logger interface.
func (l *ZapLogger) Infof(format string, args ...any) {
	l.sugar.Infof(sanitizeLogString(format), args...)
}

// Warn implements the Logger interface.
func (l *ZapLogger) Warn(args ...any) { l.sugar.Warn(sanitizeLogArgs(args)...) }

// Warnf implements the Logger interface.
func (l *ZapLogger) Warnf(format string, args ...any) {
	l.sugar.Warnf(sanitizeLogString(format), args...)
}

// Error implements the Logger interface.
func (l *ZapLogger) Error(args ...any) { l.sugar.Error(sanitizeLogArgs(args)...) }

// Errorf implements the Logger interface.
func (l *ZapLogger) Errorf(format string, args ...any) {
	l.sugar.Errorf(sanitizeLogString(format), args...)
}

// Debug implements the Logger interface.
func (l *ZapLogger) Debug(args ...any) { l.sugar.Debug(sanitizeLogArgs(args)...) }

// Debugf implements the Logger interface.
func (l *ZapLogger) Debugf(format string, args ...any) {
	l.sugar.Debugf(sanitizeLogString(format), args...)
}

// WithFields implements the Logger interface.
//
//nolint:ireturn
func (l *ZapLogger) WithFields(fields ...any) Logger {
	return &ZapLogger{sugar: l.sugar.With(fields...)}
}

// Sync implements the Logger interface.
func (l *ZapLogger) Sync() error { return l.sugar.Sync() }
