package cache

import (
	"context"
	"time"

	"github.com/matzehuels/pagegraph/pkg/observability"
)

// Observed reports hits, misses and writes of c to the registered
// observability cache hooks.
func Observed(c Cache) Cache { return observed{c} }

type observed struct{ Cache }

func (o observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if ok {
		observability.Cache().OnCacheHit(ctx, KeyType(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
	}
	return data, ok, err
}

func (o observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}
