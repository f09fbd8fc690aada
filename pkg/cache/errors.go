package cache

import "errors"

// ErrCacheMiss is returned by [GetJSON] when an item is not in the cache.
var ErrCacheMiss = errors.New("cache miss")
