package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// memClient answers the commands RedisCache issues from a map. Any other
// command panics on the nil embedded client.
type memClient struct {
	redis.UniversalClient
	data   map[string]string
	ttls   map[string]time.Duration
	closed bool
}

func newMemClient() *memClient {
	return &memClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memClient) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memClient) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = string(value.([]byte))
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memClient) Close() error {
	m.closed = true
	return nil
}

func TestRedisCacheFromClient(t *testing.T) {
	ctx := context.Background()
	mc := newMemClient()
	c := NewRedisCacheFromClient(mc)

	if _, ok, err := c.Get(ctx, "query:a"); ok || err != nil {
		t.Fatalf("Get on empty cache = %v, %v", ok, err)
	}
	if err := c.Set(ctx, "query:a", []byte("rows"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if mc.ttls["query:a"] != time.Hour {
		t.Errorf("ttl = %v, want 1h", mc.ttls["query:a"])
	}
	data, ok, err := c.Get(ctx, "query:a")
	if err != nil || !ok || string(data) != "rows" {
		t.Errorf("Get = %q, %v, %v", data, ok, err)
	}
	if err := c.Delete(ctx, "query:a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "query:a"); ok {
		t.Error("entry survived Delete")
	}
	if err := c.Close(); err != nil || !mc.closed {
		t.Errorf("Close = %v, closed = %v", err, mc.closed)
	}
}

type failingClient struct {
	*memClient
}

func (failingClient) Get(context.Context, string) *redis.StringCmd {
	return redis.NewStringResult("", errors.New("connection reset"))
}

func TestRedisCacheGetError(t *testing.T) {
	c := NewRedisCacheFromClient(failingClient{newMemClient()})
	if _, ok, err := c.Get(context.Background(), "k"); ok || err == nil {
		t.Errorf("Get = %v, %v, want error", ok, err)
	}
}
