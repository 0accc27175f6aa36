// Package events publishes suggestion lifecycle events to Redis Pub/Sub so
// dashboards and other bots can follow the queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blobqueue/model"
)

const DefaultChannel = "blobqueue:events"

// Publisher sends lifecycle events. Publishing is best-effort.
type Publisher interface {
	Publish(ctx context.Context, ev model.Event)
}

// RedisPublisher wraps a go-redis client.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher connects to Redis and verifies the connection with a ping.
func NewRedisPublisher(ctx context.Context, cfg model.Redis, logger *zap.Logger) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr), zap.String("channel", channel))

	return &RedisPublisher{client: rdb, channel: channel, logger: logger}, nil
}

// NewRedisPublisherFromClient is used when the caller already owns a client.
func NewRedisPublisherFromClient(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev model.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("Failed to encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Warn("Failed to publish Redis message",
			zap.String("channel", p.channel),
			zap.String("type", ev.Type),
			zap.Error(err))
	}
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Nop discards events. It is used when no Redis address is configured.
type Nop struct{}

func (Nop) Publish(context.Context, model.Event) {}
