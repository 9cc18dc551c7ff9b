package logging

import (
	"context"

	"go.uber.org/zap"
)

type Logger struct {
	*zap.Logger
}

type ctxKey string

const (
	TraceIDKey ctxKey = "trace_id"
	UserIDKey  ctxKey = "user_id"
	loggerKey  ctxKey = "logger"
)

func New(level, format string) (*Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
	}
	lg, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{lg}, nil
}

// NewNop 测试用
func NewNop() *Logger { return &Logger{zap.NewNop()} }

// WithContext 根据 ctx 中的 trace_id / user_id 派生带字段的 logger
func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.Logger
	}
	fields := make([]zap.Field, 0, 2)
	if s, ok := ctx.Value(TraceIDKey).(string); ok && s != "" {
		fields = append(fields, zap.String("trace_id", s))
	}
	if s, ok := ctx.Value(UserIDKey).(string); ok && s != "" {
		fields = append(fields, zap.String("user_id", s))
	}
	if len(fields) == 0 {
		return l.Logger
	}
	return l.Logger.With(fields...)
}

// IntoContext 将请求级 logger 放入 ctx，由 LoggerContextMiddleware 调用
func IntoContext(ctx context.Context, lg *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, lg)
}

// FromContext 取请求级 logger；不存在时回退 fallback（可为 nil，此时返回 Nop）
func FromContext(ctx context.Context, fallback *Logger) *zap.Logger {
	if ctx != nil {
		if lg, ok := ctx.Value(loggerKey).(*zap.Logger); ok && lg != nil {
			return lg
		}
	}
	if fallback != nil {
		return fallback.WithContext(ctx)
	}
	return zap.NewNop()
}
