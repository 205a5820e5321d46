package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Second

// releaseScript deletes the lock key only when it still carries our token,
// so an expired lock grabbed by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes work per location code across service instances
// using a Redis SET NX lock with a TTL.
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	retryWait time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisLocker creates a distributed location locker, verifying the
// connection before returning
func NewRedisLocker(cfg RedisConfig, ttl time.Duration) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLockerWithClient(client, "", ttl), nil
}

// NewRedisLockerWithClient creates a locker with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisLockerWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "control:location-lock:"
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		retryWait: 50 * time.Millisecond,
	}
}

// Acquire blocks until the location lock is held or ctx is done. The returned
// function releases the lock; a lock that outlives the TTL expires on its own.
func (l *RedisLocker) Acquire(ctx context.Context, location string) (func(), error) {
	key := l.keyPrefix + location
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire location lock: %w", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-time.After(l.retryWait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Best effort: if the release fails the TTL still reclaims the lock.
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}

// Close closes the underlying Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
