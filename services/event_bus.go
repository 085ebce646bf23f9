package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"student-grade-api/config"
	"student-grade-api/metrics"
)

const (
	PredictionsChannel = "studentgrade:predictions"
	JobsChannel        = "studentgrade:jobs"
)

// EventBus publishes JSON events on Redis channels. A bus without a client
// drops every event, so callers never need to check for Redis.
type EventBus struct {
	client *redis.Client
}

const pingAttempts = 5

func NewEventBus(cfg config.RedisConfig, logger *zap.Logger) (*EventBus, error) {
	if cfg.Disabled {
		logger.Info("redis disabled, events will be dropped")
		return &EventBus{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var lastErr error
	for i := 0; i < pingAttempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			return &EventBus{client: client}, nil
		}
		logger.Warn("redis ping failed", zap.Int("attempt", i+1), zap.Error(lastErr))
		time.Sleep(time.Second)
	}

	_ = client.Close()
	return &EventBus{}, fmt.Errorf("redis ping failed after %d attempts: %w", pingAttempts, lastErr)
}

func newEventBusFromClient(client *redis.Client) *EventBus {
	return &EventBus{client: client}
}

func (b *EventBus) Available() bool {
	return b != nil && b.client != nil
}

func (b *EventBus) Publish(ctx context.Context, channel string, message interface{}) error {
	if !b.Available() {
		return nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return err
	}
	metrics.EventsPublished.WithLabelValues(channel).Inc()
	return nil
}

// Subscribe returns nil when Redis is unavailable.
func (b *EventBus) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if !b.Available() {
		return nil
	}
	return b.client.Subscribe(ctx, channel)
}

func (b *EventBus) Close() error {
	if !b.Available() {
		return nil
	}
	return b.client.Close()
}
