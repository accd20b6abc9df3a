package push

import (
	"context"
	"testing"
	"voucher_wheel/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewAliyunPushServiceRequiresConfig(t *testing.T) {
	_, err := NewAliyunPushService(config.PushConfig{})
	assert.ErrorIs(t, err, ErrPushNotConfigured)
}

func TestNewPushServiceFallsBackToLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	service := NewPushService(config.PushConfig{}, zap.New(core))

	_, ok := service.(*LogPushService)
	require.True(t, ok)

	err := service.PushToAccount(context.Background(), "user-1", "title", "body", map[string]string{"code": "FOX-1"})
	require.NoError(t, err)

	entries := logs.FilterMessage("push notification").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "user-1", entries[0].ContextMap()["account"])
}
