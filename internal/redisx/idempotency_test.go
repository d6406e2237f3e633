package redisx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers the commands the idempotency store issues.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.(string)
	f.ttl[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.(string)
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			delete(f.ttl, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestIdempotency(t *testing.T) {
	ctx := context.Background()
	const k = "idem:order:create:req-1"

	t.Run("First claim wins", func(t *testing.T) {
		rdb := newFakeRedis()
		store := NewIdempotency(rdb, TTLIdempotency)

		_, claimed, err := store.Claim(ctx, "req-1")
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Equal(t, TTLIdempotencyClaim, rdb.ttl[k])

		id, claimed, err := store.Claim(ctx, "req-1")
		require.NoError(t, err)
		assert.False(t, claimed)
		assert.Empty(t, id, "a pending claim has no order yet")
	})

	t.Run("Completed key replays the order", func(t *testing.T) {
		rdb := newFakeRedis()
		store := NewIdempotency(rdb, TTLIdempotency)

		_, _, err := store.Claim(ctx, "req-1")
		require.NoError(t, err)
		require.NoError(t, store.Complete(ctx, "req-1", "CM00001"))
		assert.Equal(t, TTLIdempotency, rdb.ttl[k])

		id, claimed, err := store.Claim(ctx, "req-1")
		require.NoError(t, err)
		assert.False(t, claimed)
		assert.Equal(t, "CM00001", id)
	})

	t.Run("Released key can be claimed again", func(t *testing.T) {
		rdb := newFakeRedis()
		store := NewIdempotency(rdb, TTLIdempotency)

		_, _, err := store.Claim(ctx, "req-1")
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "req-1"))

		_, claimed, err := store.Claim(ctx, "req-1")
		require.NoError(t, err)
		assert.True(t, claimed)
	})
}

func TestIdempotency_Errors(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	store := NewIdempotency(rdb, time.Hour)

	_, _, err := store.Claim(ctx, "req-1")
	assert.ErrorContains(t, err, "connection refused")

	err = store.Complete(ctx, "req-1", "CM00001")
	assert.ErrorContains(t, err, "connection refused")

	err = store.Release(ctx, "req-1")
	assert.ErrorContains(t, err, "connection refused")
}
