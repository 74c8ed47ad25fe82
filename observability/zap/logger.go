// Package zap adapts go.uber.org/zap to core.Logger.
package zap

import (
	"github.com/Swind/go-nonblock/core"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger implements core.Logger on top of a *zap.Logger.
type Logger struct {
	logger *uberzap.Logger
}

var _ core.Logger = (*Logger)(nil)

// NewLogger wraps l. A nil l yields a no-op logger.
func NewLogger(l *uberzap.Logger) *Logger {
	if l == nil {
		l = uberzap.NewNop()
	}
	return &Logger{logger: l}
}

// New builds a zap logger at level. development selects zap's console
// encoder and development defaults; otherwise the JSON production config.
func New(level core.LogLevel, development bool) (*Logger, error) {
	cfg := uberzap.NewProductionConfig()
	if development {
		cfg = uberzap.NewDevelopmentConfig()
	}
	cfg.Level = uberzap.NewAtomicLevelAt(zapLevel(level))

	l, err := cfg.Build(uberzap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return NewLogger(l), nil
}

// Zap returns the wrapped logger.
func (l *Logger) Zap() *uberzap.Logger {
	return l.logger
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}

func (l *Logger) Debug(msg string, fields ...core.Field) {
	l.logger.Debug(msg, toZapFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...core.Field) {
	l.logger.Info(msg, toZapFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...core.Field) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...core.Field) {
	l.logger.Error(msg, toZapFields(fields)...)
}

func toZapFields(fields []core.Field) []zapcore.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			out = append(out, uberzap.NamedError(f.Key, v))
		case core.QueueKind, core.NotifierKind, core.NotifierState, core.Identity:
			out = append(out, uberzap.Stringer(f.Key, v.(interface{ String() string })))
		default:
			out = append(out, uberzap.Any(f.Key, v))
		}
	}
	return out
}

func zapLevel(level core.LogLevel) zapcore.Level {
	switch level {
	case core.LevelDebug:
		return zapcore.DebugLevel
	case core.LevelWarn:
		return zapcore.WarnLevel
	case core.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
