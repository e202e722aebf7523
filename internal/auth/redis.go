package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tenant-platform/internal/model"
)

const (
	pendingKeyPrefix = "pending2fa:"
	sessionKeyPrefix = "session:"
)

// RedisPendingStore keeps pending-2FA markers in redis with the same TTL
// as the codes themselves, so an abandoned login evaporates on its own.
type RedisPendingStore struct {
	client *redis.Client
}

// NewRedisPendingStore creates a redis-backed pending marker store.
func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

// Put implements PendingStore.
func (s *RedisPendingStore) Put(ctx context.Context, token string, userID uint) error {
	return s.client.Set(ctx, pendingKeyPrefix+token, userID, model.TwoFactorCodeTTL).Err()
}

// Get implements PendingStore.
func (s *RedisPendingStore) Get(ctx context.Context, token string) (uint, error) {
	val, err := s.client.Get(ctx, pendingKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrNoPendingChallenge
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read pending marker: %w", err)
	}

	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("corrupt pending marker: %w", err)
	}
	return uint(userID), nil
}

// Delete implements PendingStore.
func (s *RedisPendingStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, pendingKeyPrefix+token).Err()
}

// RedisSessionStore keeps live authenticated sessions in redis. TTL
// matches the JWT lifetime so tokens and sessions expire together.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a redis-backed live session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

// Create implements SessionStore.
func (s *RedisSessionStore) Create(ctx context.Context, sessionKey string, userID uint) error {
	return s.client.Set(ctx, sessionKeyPrefix+sessionKey, userID, s.ttl).Err()
}

// Exists implements SessionStore.
func (s *RedisSessionStore) Exists(ctx context.Context, sessionKey string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKeyPrefix+sessionKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n == 1, nil
}

// Delete implements SessionStore.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionKeys ...string) error {
	if len(sessionKeys) == 0 {
		return nil
	}
	keys := make([]string, len(sessionKeys))
	for i, k := range sessionKeys {
		keys[i] = sessionKeyPrefix + k
	}
	return s.client.Del(ctx, keys...).Err()
}
