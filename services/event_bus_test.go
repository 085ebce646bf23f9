package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"student-grade-api/config"
)

func TestDisabledEventBus(t *testing.T) {
	bus, err := NewEventBus(config.RedisConfig{Disabled: true}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, bus.Available())
	assert.NoError(t, bus.Publish(context.Background(), JobsChannel, map[string]string{"id": "x"}))
	assert.Nil(t, bus.Subscribe(context.Background(), JobsChannel))
	assert.NoError(t, bus.Close())
}

func TestNilEventBus(t *testing.T) {
	var bus *EventBus
	assert.False(t, bus.Available())
	assert.NoError(t, bus.Publish(context.Background(), JobsChannel, "x"))
}

func TestEventBusPublishError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	bus := newEventBusFromClient(client)
	defer bus.Close()

	assert.True(t, bus.Available())
	assert.Error(t, bus.Publish(context.Background(), PredictionsChannel, map[string]int{"a": 1}))
}
