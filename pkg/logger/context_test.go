package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextAddsTraceID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := WithTraceID(context.Background(), "trace-abc")
	assert.Equal(t, "trace-abc", TraceID(ctx))

	FromContext(ctx, base).Info("play retries exhausted")
	FromContext(context.Background(), base).Info("no trace")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "trace-abc", entries[0].ContextMap()["trace_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestWithTraceIDIgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTraceID(ctx, ""))
	assert.Empty(t, TraceID(ctx))
}

func TestFromContextNilBase(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background(), nil))
}
