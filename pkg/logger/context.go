package logger

import (
	"context"

	"go.uber.org/zap"
)

type traceKey struct{}

// WithTraceID 把追踪 ID 放进 context，供下游日志使用
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceID 取出 context 中的追踪 ID，没有时为空
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// FromContext 在 base 上附加 trace_id 字段
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = L()
	}
	if id := TraceID(ctx); id != "" {
		return base.With(zap.String("trace_id", id))
	}
	return base
}
