package timingstore

import (
	"context"
	"errors"

	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"
)

type fallbackStore struct {
	stores []core.TimingStore
	logger lumber.Logger
}

// NewFallback returns a TimingStore that asks stores in order and returns the
// first non-empty result, e.g. the branch history before the target branch's.
func NewFallback(logger lumber.Logger, stores ...core.TimingStore) core.TimingStore {
	return &fallbackStore{stores: stores, logger: logger}
}

func (f *fallbackStore) Timings(ctx context.Context) ([]core.TestTiming, error) {
	var lastErr error
	for i, store := range f.stores {
		timings, err := store.Timings(ctx)
		if err != nil {
			f.logger.Warnf("timing store %d failed, trying next, error: %v", i, err)
			lastErr = err
			continue
		}
		if len(timings) > 0 {
			return timings, nil
		}
		f.logger.Debugf("timing store %d has no history, trying next", i)
	}
	return nil, lastErr
}

type mergedStore struct {
	stores []core.TimingStore
	logger lumber.Logger
}

// NewMerged returns a TimingStore that loads all stores concurrently. Records
// are returned in store order; a test name already seen in an earlier store is
// skipped. A failing store is left out of the merge, and an error is only
// returned when every store fails.
func NewMerged(logger lumber.Logger, stores ...core.TimingStore) core.TimingStore {
	return &mergedStore{stores: stores, logger: logger}
}

func (m *mergedStore) Timings(ctx context.Context) ([]core.TestTiming, error) {
	results := make([][]core.TestTiming, len(m.stores))
	failures := make([]error, len(m.stores))
	var g errgroup.Group
	for i, store := range m.stores {
		i, store := i, store
		g.Go(func() error {
			timings, err := store.Timings(ctx)
			if err != nil {
				m.logger.Errorf("failed to load timing store %d, merging the rest, error: %v", i, err)
				failures[i] = err
				return nil
			}
			results[i] = timings
			return nil
		})
	}
	_ = g.Wait()

	var lastErr error
	failed := 0
	for _, err := range failures {
		if err != nil {
			lastErr = err
			failed++
		}
	}
	if failed > 0 && failed == len(m.stores) {
		return nil, lastErr
	}

	seen := make(map[string]struct{})
	merged := make([]core.TestTiming, 0)
	for _, timings := range results {
		for _, t := range timings {
			if _, exists := seen[t.Name]; exists {
				continue
			}
			seen[t.Name] = struct{}{}
			merged = append(merged, t)
		}
	}
	return merged, nil
}

type retryStore struct {
	store    core.TimingStore
	attempts uint
	opts     []retry.Option
	logger   lumber.Logger
}

// NewRetry returns a TimingStore retrying store up to attempts times.
// Malformed history is not retried. opts are appended to the defaults.
func NewRetry(store core.TimingStore, attempts uint, logger lumber.Logger, opts ...retry.Option) core.TimingStore {
	return &retryStore{store: store, attempts: attempts, opts: opts, logger: logger}
}

func (r *retryStore) Timings(ctx context.Context) ([]core.TestTiming, error) {
	var timings []core.TestTiming
	opts := []retry.Option{
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.Attempts(r.attempts),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, errs.ErrMalformedTimings)
		}),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Errorf("failed to load timings, retry %d, error: %v", n, err)
		}),
	}
	err := retry.Do(func() error {
		var err error
		timings, err = r.store.Timings(ctx)
		return err
	}, append(opts, r.opts...)...)
	return timings, err
}
