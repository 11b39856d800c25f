package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "post:7", PostKey(7))
	assert.Equal(t, "user:3", UserKey(3))
}

func TestAside_WithoutRedisAlwaysLoads(t *testing.T) {
	SetClient(nil)
	calls := 0
	var p cachedPost
	for i := 0; i < 2; i++ {
		err := Aside(context.Background(), PostKey(1), &p, PostTTL, func() error {
			calls++
			p = cachedPost{ID: 1, Text: "hello"}
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestAside_HitsCacheAfterFirstLoad(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	load := func(dest *cachedPost) func() error {
		return func() error {
			calls++
			*dest = cachedPost{ID: 1, Text: "hello"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey(1), &first, PostTTL, load(&first)))
	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey(1), &second, PostTTL, load(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("post:1"))
	assert.InDelta(t, PostTTL.Seconds(), mr.TTL("post:1").Seconds(), 1)
}

func TestAside_LoadErrorIsNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("boom")

	var p cachedPost
	err := Aside(context.Background(), PostKey(2), &p, PostTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("post:2"))
}

func TestAside_CorruptEntryIsReloaded(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set("post:3", "{not json"))

	var p cachedPost
	err := Aside(context.Background(), PostKey(3), &p, time.Minute, func() error {
		p = cachedPost{ID: 3, Text: "fresh"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", p.Text)

	stored, err := mr.Get("post:3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"text":"fresh"}`, stored)
}

func TestInvalidatePost(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set("post:4", "{}"))

	InvalidatePost(context.Background(), 4)
	assert.False(t, mr.Exists("post:4"))
}
