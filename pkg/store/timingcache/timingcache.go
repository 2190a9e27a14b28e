// Package timingcache caches timing snapshots in redis so repeated plans for a
// branch do not reload the full history.
package timingcache

import (
	"context"
	"errors"
	"time"

	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type timingCache struct {
	redis  core.RedisDB
	ttl    time.Duration
	logger lumber.Logger
}

// New returns a redis backed TimingCache with the given expiry.
func New(redisDB core.RedisDB, ttl time.Duration, logger lumber.Logger) core.TimingCache {
	return &timingCache{redis: redisDB, ttl: ttl, logger: logger}
}

func (c *timingCache) Get(ctx context.Context, tag string) ([]core.TestTiming, bool, error) {
	raw, err := c.redis.Client().Get(ctx, cacheKey(tag)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	timings := make([]core.TestTiming, 0)
	if err := json.Unmarshal(raw, &timings); err != nil {
		c.logger.Errorf("failed to decode cached timings for tag %s, error: %v", tag, err)
		return nil, false, err
	}
	return timings, true, nil
}

func (c *timingCache) Set(ctx context.Context, tag string, timings []core.TestTiming) error {
	raw, err := json.Marshal(timings)
	if err != nil {
		return err
	}
	return c.redis.Client().Set(ctx, cacheKey(tag), raw, c.ttl).Err()
}

func cacheKey(tag string) string {
	return constants.TimingsCacheKeyPrefix + tag
}

type cachedStore struct {
	cache  core.TimingCache
	store  core.TimingStore
	tag    string
	logger lumber.Logger
}

// Wrap returns a TimingStore that serves tag from cache and fills the cache
// from store on a miss. Cache failures fall through to store.
func Wrap(cache core.TimingCache, store core.TimingStore, tag string, logger lumber.Logger) core.TimingStore {
	return &cachedStore{cache: cache, store: store, tag: tag, logger: logger}
}

func (s *cachedStore) Timings(ctx context.Context) ([]core.TestTiming, error) {
	timings, ok, err := s.cache.Get(ctx, s.tag)
	if err != nil {
		s.logger.Warnf("failed to read timing cache for tag %s, error: %v", s.tag, err)
	}
	if ok {
		s.logger.Debugf("serving %d cached test timings for tag %s", len(timings), s.tag)
		return timings, nil
	}
	timings, err = s.store.Timings(ctx)
	if err != nil {
		return nil, err
	}
	if len(timings) == 0 {
		return timings, nil
	}
	if err := s.cache.Set(ctx, s.tag, timings); err != nil {
		s.logger.Warnf("failed to cache timings for tag %s, error: %v", s.tag, err)
	}
	return timings, nil
}
