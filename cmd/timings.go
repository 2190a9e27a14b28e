package cmd

import (
	"context"

	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/azure"
	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/LambdaTest/forkplan/pkg/db"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/redis"
	"github.com/LambdaTest/forkplan/pkg/store/testtiming"
	"github.com/LambdaTest/forkplan/pkg/store/timingcache"
	"github.com/LambdaTest/forkplan/pkg/timingstore"
	"github.com/avast/retry-go/v4"
)

// timingSources owns the connections behind the configured timing store.
type timingSources struct {
	store   core.TimingStore
	closers []func() error
}

func (t *timingSources) Close(logger lumber.Logger) {
	for _, closeFn := range t.closers {
		if err := closeFn(); err != nil {
			logger.Errorf("failed to close timing source, error: %v", err)
		}
	}
}

// newTimingStore wires every configured timing history into one store: the
// explicit file first, then the execution database, then the blob archive.
// Remote sources use the branch tag, fall back to the target branch tag and
// are cached in redis when it is configured.
func newTimingStore(ctx context.Context, cfg *config.Config, logger lumber.Logger) (*timingSources, error) {
	sources := new(timingSources)
	stores := make([]core.TimingStore, 0)
	if cfg.Timings.File != "" {
		stores = append(stores, timingstore.NewFile(cfg.Timings.File, logger))
	}

	tags := branchTags(cfg)
	remote := cfg.DB.Host != "" || cfg.Azure.StorageAccountName != ""
	if remote && len(tags) == 0 {
		logger.Warnf("no branch tag configured, remote timing history is skipped")
	}
	if !remote || len(tags) == 0 {
		sources.store = merged(stores, logger)
		return sources, nil
	}

	var cache core.TimingCache
	if cfg.Redis.Addr != "" && cfg.Timings.CacheTTL > 0 {
		redisDB, err := redis.New(ctx, cfg, logger)
		if err != nil {
			logger.Errorf("failed to create redis connection %v", err)
			return nil, err
		}
		sources.closers = append(sources.closers, redisDB.Close)
		cache = timingcache.New(redisDB, cfg.Timings.CacheTTL, logger)
	}
	cached := func(source, tag string, store core.TimingStore) core.TimingStore {
		store = timingstore.NewRetry(store, cfg.Timings.LoadAttempts, logger, retry.Delay(cfg.Timings.RetryDelay))
		if cache == nil {
			return store
		}
		return timingcache.Wrap(cache, store, source+":"+tag, logger)
	}

	if cfg.DB.Host != "" {
		database, err := db.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Errorf("failed to create database connection %v", err)
			sources.Close(logger)
			return nil, err
		}
		sources.closers = append(sources.closers, database.Close)
		perTag := make([]core.TimingStore, 0, len(tags))
		for _, tag := range tags {
			perTag = append(perTag, cached("db", tag, testtiming.New(database, tag, cfg.Timings.Lookback, logger)))
		}
		stores = append(stores, timingstore.NewFallback(logger, perTag...))
	}

	if cfg.Azure.StorageAccountName != "" {
		archive, err := azure.NewAzureBlobEnv(cfg, logger)
		if err != nil {
			logger.Errorf("could not instantiate azure client %v", err)
			sources.Close(logger)
			return nil, err
		}
		perTag := make([]core.TimingStore, 0, len(tags))
		for _, tag := range tags {
			perTag = append(perTag, cached("archive", tag, timingstore.NewArchive(archive, tag, logger)))
		}
		stores = append(stores, timingstore.NewFallback(logger, perTag...))
	}

	sources.store = merged(stores, logger)
	return sources, nil
}

func branchTags(cfg *config.Config) []string {
	tags := make([]string, 0, 2)
	if cfg.Timings.BranchTag != "" {
		tags = append(tags, cfg.Timings.BranchTag)
	}
	if target := cfg.Timings.TargetBranchTag; target != "" && target != cfg.Timings.BranchTag {
		tags = append(tags, target)
	}
	return tags
}

func merged(stores []core.TimingStore, logger lumber.Logger) core.TimingStore {
	switch len(stores) {
	case 0:
		logger.Infof("no timing history configured, tests are split by count")
		return core.TimingStoreFunc(func(ctx context.Context) ([]core.TestTiming, error) {
			return nil, nil
		})
	case 1:
		return stores[0]
	default:
		return timingstore.NewMerged(logger, stores...)
	}
}
