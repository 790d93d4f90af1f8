package cache

import (
	"context"
	"time"
)

// NullCache stands in when caching is off. Every Get misses and every
// write is dropped, so each draw goes to the parser.
type NullCache struct {
	// Reason says why caching is off, for logs.
	Reason string
}

// NewNullCache returns a cache that stores nothing.
func NewNullCache(reason string) *NullCache {
	return &NullCache{Reason: reason}
}

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
