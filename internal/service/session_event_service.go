package service

import (
	"context"
	"encoding/json"
	"sync"

	"go-medical-booking/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisSessionEventChannel is the pub/sub channel carrying session change events
const RedisSessionEventChannel = "auth:session_events"

// SessionEventBus broadcasts session transitions to every connected client.
// Subscribe returns an unsubscribe func that blocks until delivery has stopped.
type SessionEventBus interface {
	Publish(ctx context.Context, event entity.SessionEvent) error
	Subscribe(ctx context.Context, handler func(entity.SessionEvent)) (func(), error)
}

type redisSessionEventBus struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewRedisSessionEventBus(redisClient *redis.Client, log *logrus.Logger) SessionEventBus {
	return &redisSessionEventBus{
		redisClient: redisClient,
		log:         log,
	}
}

func (b *redisSessionEventBus) Publish(ctx context.Context, event entity.SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.redisClient.Publish(ctx, RedisSessionEventChannel, payload).Err()
}

func (b *redisSessionEventBus) Subscribe(ctx context.Context, handler func(entity.SessionEvent)) (func(), error) {
	pubsub := b.redisClient.Subscribe(ctx, RedisSessionEventChannel)

	// Wait for the subscription to be confirmed so no event published after
	// Subscribe returns can be missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range pubsub.Channel() {
			var event entity.SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warnf("Failed to decode session event: %+v", err)
				continue
			}
			handler(event)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				b.log.Warnf("Failed to close session event subscription: %+v", err)
			}
			wg.Wait()
		})
	}, nil
}
