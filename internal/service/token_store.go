package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisSessionKeyPrefix prefixes the per-session revocation keys: auth_session:<identity>:<session>
const RedisSessionKeyPrefix = "auth_session:"

// TokenStore tracks which issued sessions are still valid.
// A session is valid while its key exists; deleting the key revokes both tokens of the pair.
type TokenStore interface {
	Store(ctx context.Context, identityID uuid.UUID, sessionID string, ttl time.Duration) error
	Exists(ctx context.Context, identityID uuid.UUID, sessionID string) (bool, error)
	Delete(ctx context.Context, identityID uuid.UUID, sessionID string) error
	DeleteAll(ctx context.Context, identityID uuid.UUID) (int, error)
}

type redisTokenStore struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewRedisTokenStore(redisClient *redis.Client, log *logrus.Logger) TokenStore {
	return &redisTokenStore{
		redisClient: redisClient,
		log:         log,
	}
}

func sessionKey(identityID uuid.UUID, sessionID string) string {
	return fmt.Sprintf("%s%s:%s", RedisSessionKeyPrefix, identityID.String(), sessionID)
}

func (s *redisTokenStore) Store(ctx context.Context, identityID uuid.UUID, sessionID string, ttl time.Duration) error {
	return s.redisClient.Set(ctx, sessionKey(identityID, sessionID), "valid", ttl).Err()
}

func (s *redisTokenStore) Exists(ctx context.Context, identityID uuid.UUID, sessionID string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, sessionKey(identityID, sessionID)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *redisTokenStore) Delete(ctx context.Context, identityID uuid.UUID, sessionID string) error {
	return s.redisClient.Del(ctx, sessionKey(identityID, sessionID)).Err()
}

// DeleteAll revokes every session of an identity (used when an account is rejected)
func (s *redisTokenStore) DeleteAll(ctx context.Context, identityID uuid.UUID) (int, error) {
	pattern := fmt.Sprintf("%s%s:*", RedisSessionKeyPrefix, identityID.String())

	var keys []string
	iter := s.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warnf("Failed to scan session keys: %+v", err)
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnf("Failed to delete session keys: %+v", err)
		return 0, err
	}
	return len(keys), nil
}
