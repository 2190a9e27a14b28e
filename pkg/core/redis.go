package core

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisDB wrapper around the redis db client.
type RedisDB interface {
	// Client is the redis client
	Client() redis.UniversalClient
	// Close closes the redis client.
	Close() error
}

// TimingCache stores timing snapshots keyed by branch tag.
type TimingCache interface {
	// Get returns the cached snapshot for tag, ok is false on a miss.
	Get(ctx context.Context, tag string) (timings []TestTiming, ok bool, err error)
	// Set stores the snapshot for tag.
	Set(ctx context.Context, tag string, timings []TestTiming) error
}
