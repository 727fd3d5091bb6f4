package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis wraps the redis client and implements the small coordination
// surfaces built on it: the backfill day marker and the login throttle.
type Redis struct {
	Client *redis.Client

	// Login throttle tuning.
	MaxFails   int
	FailWindow time.Duration
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string, maxFails int, failWindow time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client, MaxFails: maxFails, FailWindow: failWindow}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// TryMark atomically claims the per-user backfill slot for a calendar day.
// SETNX means only one of the API and the worker wins; the 48h TTL lets the
// key expire naturally after the day has passed.
func (r *Redis) TryMark(ctx context.Context, userID uuid.UUID, day string) (bool, error) {
	return r.Client.SetNX(ctx, "backfill:"+userID.String()+":"+day, 1, 48*time.Hour).Result()
}

// TooManyFailures reports whether an email has exceeded the sign-in failure
// budget inside the current window.
func (r *Redis) TooManyFailures(ctx context.Context, email string) (bool, error) {
	n, err := r.Client.Get(ctx, failKey(email)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= r.MaxFails, nil
}

// RecordFailure bumps the failure counter, starting the window on the
// first failure.
func (r *Redis) RecordFailure(ctx context.Context, email string) error {
	key := failKey(email)
	n, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return r.Client.Expire(ctx, key, r.FailWindow).Err()
	}
	return nil
}

// ClearFailures resets the counter after a successful sign-in.
func (r *Redis) ClearFailures(ctx context.Context, email string) error {
	return r.Client.Del(ctx, failKey(email)).Err()
}

func failKey(email string) string {
	return "loginfail:" + email
}
