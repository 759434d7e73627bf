package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/model"
)

// RedisOutbox pushes rendered email onto the worker queue.
type RedisOutbox struct {
	rdb *redis.Client
}

// NewRedisOutbox creates a new RedisOutbox.
func NewRedisOutbox(rdb *redis.Client) *RedisOutbox {
	return &RedisOutbox{rdb: rdb}
}

// Enqueue stamps the message and appends it to the outbox queue.
func (o *RedisOutbox) Enqueue(ctx context.Context, msg model.EmailMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.QueuedAt.IsZero() {
		msg.QueuedAt = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	return o.rdb.RPush(ctx, config.WorkerKey.EmailOutboxQueue, data).Err()
}

// RedisAvailabilityPublisher broadcasts enrollment snapshots on a per-class channel.
type RedisAvailabilityPublisher struct {
	rdb *redis.Client
}

// NewRedisAvailabilityPublisher creates a new RedisAvailabilityPublisher.
func NewRedisAvailabilityPublisher(rdb *redis.Client) *RedisAvailabilityPublisher {
	return &RedisAvailabilityPublisher{rdb: rdb}
}

// PublishAvailability publishes the snapshot to the class channel.
func (p *RedisAvailabilityPublisher) PublishAvailability(ctx context.Context, a model.Availability) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, config.CacheKey.ClassAvailabilityChannel(a.ClassID.String()), data).Err()
}

// SubscribeAvailability streams the snapshots published for one class until
// ctx ends or the returned close func is called. The subscription is live
// when it returns, so no snapshot published afterwards is missed.
func (p *RedisAvailabilityPublisher) SubscribeAvailability(ctx context.Context, classID uuid.UUID) (<-chan model.Availability, func() error, error) {
	pubsub := p.rdb.Subscribe(ctx, config.CacheKey.ClassAvailabilityChannel(classID.String()))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe availability: %w", err)
	}

	out := make(chan model.Availability, 8)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var a model.Availability
			if err := json.Unmarshal([]byte(msg.Payload), &a); err != nil {
				continue
			}
			select {
			case out <- a:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}
