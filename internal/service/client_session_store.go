package service

import (
	"context"
	"encoding/json"
	"errors"

	"go-medical-booking/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

// RedisClientSessionKeyPrefix prefixes the persisted session of a client: client_session:<client>
const RedisClientSessionKeyPrefix = "client_session:"

// ClientSessionStore persists the token pair a client holds between restarts.
// A stored session is only a hint; callers re-validate it before trusting it.
type ClientSessionStore interface {
	Load(ctx context.Context, clientID string) (*entity.Session, error)
	Save(ctx context.Context, clientID string, session *entity.Session) error
	Clear(ctx context.Context, clientID string) error
}

type redisClientSessionStore struct {
	redisClient *redis.Client
}

func NewRedisClientSessionStore(redisClient *redis.Client) ClientSessionStore {
	return &redisClientSessionStore{redisClient: redisClient}
}

func (s *redisClientSessionStore) Load(ctx context.Context, clientID string) (*entity.Session, error) {
	payload, err := s.redisClient.Get(ctx, RedisClientSessionKeyPrefix+clientID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *redisClientSessionStore) Save(ctx context.Context, clientID string, session *entity.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, RedisClientSessionKeyPrefix+clientID, payload, 0).Err()
}

func (s *redisClientSessionStore) Clear(ctx context.Context, clientID string) error {
	return s.redisClient.Del(ctx, RedisClientSessionKeyPrefix+clientID).Err()
}
