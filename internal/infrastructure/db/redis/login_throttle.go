package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tasktrack/task-api/internal/core/ports"
)

const (
	defaultMaxFailures = 5
	defaultLockout     = 15 * time.Minute
)

// counterStore is the subset of redis commands the throttle needs.
type counterStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginThrottle counts failed sign-in attempts per username.
// Key format: login:failures:<username>
// The counter expires lockout after the first failure in a window. A counter
// found without a TTL gets one on the next failure or blocked check, so a
// lost EXPIRE never turns into a permanent lockout.
type LoginThrottle struct {
	store       counterStore
	maxFailures int64
	lockout     time.Duration
}

var _ ports.LoginThrottle = (*LoginThrottle)(nil)

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client, maxFailures int, lockout time.Duration) *LoginThrottle {
	return newLoginThrottle(client, maxFailures, lockout)
}

func newLoginThrottle(store counterStore, maxFailures int, lockout time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginThrottle{store: store, maxFailures: int64(maxFailures), lockout: lockout}
}

// Allowed reports whether username is still below the failure limit.
func (t *LoginThrottle) Allowed(ctx context.Context, username string) (bool, error) {
	n, err := t.store.Get(ctx, t.key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	if n < t.maxFailures {
		return true, nil
	}
	if err := t.ensureExpiry(ctx, t.key(username)); err != nil {
		return false, err
	}
	return false, nil
}

// RecordFailure increments the failure counter, starting the lockout window
// on the first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) error {
	key := t.key(username)
	n, err := t.store.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	if n == 1 {
		if err := t.store.Expire(ctx, key, t.lockout).Err(); err != nil {
			return fmt.Errorf("throttle expire: %w", err)
		}
		return nil
	}
	return t.ensureExpiry(ctx, key)
}

// ensureExpiry sets the lockout TTL on key when it has none.
func (t *LoginThrottle) ensureExpiry(ctx context.Context, key string) error {
	ttl, err := t.store.TTL(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("throttle ttl: %w", err)
	}
	// -1 means the key exists without an expiry.
	if ttl != -1 {
		return nil
	}
	if err := t.store.Expire(ctx, key, t.lockout).Err(); err != nil {
		return fmt.Errorf("throttle expire: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful sign-in.
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	return t.store.Del(ctx, t.key(username)).Err()
}

func (t *LoginThrottle) key(username string) string {
	return fmt.Sprintf("login:failures:%s", username)
}
