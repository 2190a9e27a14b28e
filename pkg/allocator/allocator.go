// Package allocator is the entry point build tasks use to split their tests across forks.
package allocator

import (
	"context"
	"math"

	"github.com/LambdaTest/forkplan/pkg/bucket"
	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/planner"
)

type source struct {
	supplier core.PrefixSupplier
	task     core.TaskID
}

// BucketingAllocator registers test sources, plans them once against the
// timing history and answers per-fork queries.
type BucketingAllocator struct {
	planner        *planner.Planner
	timingStore    core.TimingStore
	logger         lumber.Logger
	mode           core.MatchMode
	strictPrefixes bool
	sources        []source
	plan           *planner.Plan
}

// Option configures a BucketingAllocator.
type Option func(*BucketingAllocator)

// WithMatchMode sets how bucket keys are matched against timing records.
func WithMatchMode(mode core.MatchMode) Option {
	return func(a *BucketingAllocator) {
		a.mode = mode
	}
}

// WithStrictPrefixes makes overlapping prefixes of a task fail the plan instead
// of only being logged.
func WithStrictPrefixes(strict bool) Option {
	return func(a *BucketingAllocator) {
		a.strictPrefixes = strict
	}
}

// New returns a BucketingAllocator for forkCount forks.
func New(forkCount int, timingStore core.TimingStore, logger lumber.Logger, opts ...Option) (*BucketingAllocator, error) {
	p, err := planner.ForForkCount(forkCount)
	if err != nil {
		return nil, err
	}
	a := &BucketingAllocator{
		planner:     p,
		timingStore: timingStore,
		logger:      logger,
		mode:        core.ClassMatch,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AddSource registers the prefixes supplied for task. The supplier is evaluated
// when the plan is generated.
func (a *BucketingAllocator) AddSource(supplier core.PrefixSupplier, task core.TaskID) error {
	if a.plan != nil {
		return errs.ErrPlanAlreadyGenerated
	}
	a.sources = append(a.sources, source{supplier: supplier, task: task})
	return nil
}

// GenerateTestPlan pulls the timing history once and packs every registered
// prefix into a fork. It may only run once per Reset.
func (a *BucketingAllocator) GenerateTestPlan(ctx context.Context) error {
	if a.plan != nil {
		return errs.ErrPlanAlreadyGenerated
	}

	timings, err := a.timingStore.Timings(ctx)
	if err != nil {
		// missing history only costs balance, never correctness
		a.logger.Warnf("could not load test timings, planning without history, error: %v", err)
		timings = nil
	}
	timings = a.usableTimings(timings)

	sources := make([]core.TestSource, 0, len(a.sources))
	for _, s := range a.sources {
		sources = append(sources, core.TestSource{Prefixes: s.supplier(), Task: s.task})
	}
	if err := bucket.Validate(sources, a.mode); err != nil {
		if a.strictPrefixes {
			a.logger.Errorf("invalid test sources, error: %v", err)
			return err
		}
		a.logger.Warnf("test sources overlap, tests may run more than once: %v", err)
	}

	buckets := bucket.Build(timings, sources, a.mode)
	a.estimateUncovered(buckets, timings)

	plan, err := a.planner.CreatePlan(buckets)
	if err != nil {
		a.logger.Errorf("failed to create test plan, error: %v", err)
		return err
	}
	a.plan = plan
	a.logSummary()
	return nil
}

// usableTimings drops records whose duration is negative or not finite.
func (a *BucketingAllocator) usableTimings(timings []core.TestTiming) []core.TestTiming {
	usable := make([]core.TestTiming, 0, len(timings))
	for _, t := range timings {
		if !validDuration(t.DurationSeconds) {
			a.logger.Warnf("ignoring timing of %s with invalid duration %v", t.Name, t.DurationSeconds)
			continue
		}
		usable = append(usable, t)
	}
	return usable
}

func validDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d >= 0
}

// estimateUncovered gives buckets without history the mean recorded duration,
// so they spread over the forks instead of all landing on the least loaded one.
func (a *BucketingAllocator) estimateUncovered(buckets []*core.TestBucket, timings []core.TestTiming) {
	estimate := meanDuration(timings)
	uncovered := 0
	for _, b := range buckets {
		if len(b.Timings) > 0 {
			continue
		}
		b.Estimate = estimate
		uncovered++
	}
	if uncovered == 0 {
		return
	}
	a.logger.Debugf("%d of %d buckets have no timing history, estimating %.3fs each", uncovered, len(buckets), estimate)
	bucket.Sort(buckets)
}

func meanDuration(timings []core.TestTiming) float64 {
	var total float64
	count := 0
	for _, t := range timings {
		if !validDuration(t.DurationSeconds) || t.DurationSeconds == 0 {
			continue
		}
		total += t.DurationSeconds
		count++
	}
	if count == 0 {
		return constants.DefaultEstimatedDurationSeconds
	}
	return total / float64(count)
}

// TestsForForkAndTestTask returns the bucket keys task has to run on fork. An
// unknown task yields an empty result.
func (a *BucketingAllocator) TestsForForkAndTestTask(fork int, task core.TaskID) ([]string, error) {
	if a.plan == nil {
		return nil, errs.ErrPlanNotGenerated
	}
	return a.plan.TestsForForkAndTask(fork, task)
}

// Summary returns the summary of the generated plan.
func (a *BucketingAllocator) Summary() (core.TestPlanSummary, error) {
	if a.plan == nil {
		return core.TestPlanSummary{}, errs.ErrPlanNotGenerated
	}
	return a.plan.Summary(), nil
}

// Plan returns the generated plan.
func (a *BucketingAllocator) Plan() (*planner.Plan, error) {
	if a.plan == nil {
		return nil, errs.ErrPlanNotGenerated
	}
	return a.plan, nil
}

// Reset drops the generated plan so sources can be added and planned again.
func (a *BucketingAllocator) Reset() {
	a.plan = nil
}

func (a *BucketingAllocator) logSummary() {
	summary := a.plan.Summary()
	a.logger.Infof("test plan generated for %d forks with %d timed tests", summary.ForkCount, summary.TotalTestCount)
	for i, d := range a.plan.ForkDurations() {
		a.logger.WithFields(lumber.Fields{"fork": i}).Debugf("estimated fork duration %.3fs", d)
	}
}
