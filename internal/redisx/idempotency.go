// Package redisx holds the Redis-backed helpers of the order API.
package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// idem:order:create:{key} -> order id, or pendingOrder while the owning
	// request runs
	KeyIdemOrderCreate = "idem:order:create:%s"

	TTLIdempotency = 24 * time.Hour
	// A claim left by a crashed request expires after this long.
	TTLIdempotencyClaim = 30 * time.Second

	pendingOrder = "pending"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Idempotency implements order.IdempotencyStore.
type Idempotency struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewIdempotency(rdb redis.Cmdable, ttl time.Duration) *Idempotency {
	return &Idempotency{rdb: rdb, ttl: ttl}
}

// Claim reserves key with a short-lived pending marker.
func (s *Idempotency) Claim(ctx context.Context, key string) (string, bool, error) {
	k := fmt.Sprintf(KeyIdemOrderCreate, key)

	ok, err := s.rdb.SetNX(ctx, k, pendingOrder, TTLIdempotencyClaim).Result()
	if err != nil {
		return "", false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	id, err := s.rdb.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// The other claim expired between the two calls; let the client retry.
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("read idempotency key: %w", err)
	case id == pendingOrder:
		return "", false, nil
	}
	return id, false, nil
}

// Complete replaces the pending marker with the order id for the full TTL.
func (s *Idempotency) Complete(ctx context.Context, key, orderID string) error {
	if err := s.rdb.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *Idempotency) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, fmt.Sprintf(KeyIdemOrderCreate, key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
