package utils

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const credentialKey = "portal:credential"

// TokenStore keeps the bearer credential in Redis so a restart does not log
// the portal out.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore connects to Redis and verifies the connection with a ping.
func NewTokenStore(addr, password string, db int) (*TokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &TokenStore{client: client}, nil
}

// SaveCredential stores the token with a 24h expiry. The JWT's own exp claim
// is shorter in practice; the Redis TTL is just a floor sweep.
func (t *TokenStore) SaveCredential(ctx context.Context, token string) error {
	return t.client.Set(ctx, credentialKey, token, 24*time.Hour).Err()
}

// LoadCredential returns the stored token, or empty with no error when none
// is stored.
func (t *TokenStore) LoadCredential(ctx context.Context) (string, error) {
	token, err := t.client.Get(ctx, credentialKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (t *TokenStore) ClearCredential(ctx context.Context) error {
	return t.client.Del(ctx, credentialKey).Err()
}

func (t *TokenStore) Close() error {
	return t.client.Close()
}
