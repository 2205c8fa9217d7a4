package nonce

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"plumise.backend/pkg/redis"
)

const redisKeyPrefix = "siwe:nonce:"

// RedisStore keeps nonces in Redis so that every worker process shares one
// nonce space. Expiry is enforced by the key TTL; consumption is a single
// GETDEL, so two concurrent consumers cannot both succeed.
type RedisStore struct{}

// NewRedisStore creates a nonce store backed by the shared Redis client
func NewRedisStore() *RedisStore {
	return &RedisStore{}
}

// Issue generates a random token and stores it with the nonce TTL
func (s *RedisStore) Issue(ctx context.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	if err := redis.Set(ctx, redisKeyPrefix+token, "1", TTL); err != nil {
		return "", err
	}
	return token, nil
}

// Consume atomically fetches and deletes the token
func (s *RedisStore) Consume(ctx context.Context, token string) bool {
	val, err := redis.GetDel(ctx, redisKeyPrefix+token)
	if err != nil {
		return false
	}
	return val != ""
}
