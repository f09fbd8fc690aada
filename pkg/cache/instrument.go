package cache

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/familygraph/pkg/observability"
)

type instrumented struct {
	Cache
}

// Instrument reports every Get and Set of c to the cache hooks. Keys are
// reduced to their kind (layout, artifact, snapshot) to keep metric
// cardinality low.
func Instrument(c Cache) Cache {
	if _, ok := c.(*NullCache); ok {
		return c
	}
	return instrumented{Cache: c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, kindOf(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, kindOf(key))
		}
	}
	return data, hit, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, kindOf(key), len(data))
	}
	return err
}

var kinds = []string{"layout", "artifact", "snapshot"}

func kindOf(key string) string {
	for _, part := range strings.Split(key, ":") {
		if slices.Contains(kinds, part) {
			return part
		}
	}
	return "other"
}
