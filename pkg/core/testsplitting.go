package core

import (
	"context"
)

// MatchMode decides how a bucket key is matched against timing record names.
type MatchMode string

// list of supported match modes
const (
	// ClassMatch groups every record whose name starts with the bucket key.
	ClassMatch MatchMode = "class"
	// MethodMatch only attaches records whose name equals the bucket key.
	MethodMatch MatchMode = "method"
)

// TaskID identifies the build task that owns a set of tests.
type TaskID string

// PrefixSupplier returns the prefixes (usually discovered test names) of a source.
// It is evaluated once, when the plan is generated.
type PrefixSupplier func() []string

// TestSource declares that all tests starting with any of Prefixes belong to Task.
type TestSource struct {
	Prefixes []string `json:"prefixes" yaml:"prefixes"`
	Task     TaskID   `json:"task" yaml:"task"`
}

// TestBucket is the unit of scheduling: one prefix of a source plus the timing
// records that matched it.
type TestBucket struct {
	Task    TaskID       `json:"task"`
	Key     string       `json:"key"`
	Timings []TestTiming `json:"timings"`
	// Estimate stands in for the duration of a bucket without timings.
	Estimate float64 `json:"estimate,omitempty"`
}

// Duration returns the sum of the bucket's timing records in seconds, or the
// estimate when no record matched.
func (b *TestBucket) Duration() float64 {
	if len(b.Timings) == 0 {
		return b.Estimate
	}
	var total float64
	for i := range b.Timings {
		total += b.Timings[i].DurationSeconds
	}
	return total
}

// ForkLoad is the running state of one fork while buckets are packed.
type ForkLoad struct {
	Index    int
	Duration float64
	Buckets  []*TestBucket
}

// ForkAssignment is the frozen content of one fork.
type ForkAssignment struct {
	Index    int                 `json:"fork"`
	Duration float64             `json:"duration_seconds"`
	Buckets  map[TaskID][]string `json:"buckets"`
}

// TestPlanSummary is a reporting aggregate over a completed plan.
type TestPlanSummary struct {
	ForkCount      int `json:"fork_count"`
	TotalTestCount int `json:"total_test_count"`
}

// TestAllocator answers which tests a fork has to run for a build task.
type TestAllocator interface {
	// AddSource registers the prefixes owned by task.
	AddSource(supplier PrefixSupplier, task TaskID) error
	// GenerateTestPlan pulls the timing history and packs all buckets into forks.
	GenerateTestPlan(ctx context.Context) error
	// TestsForForkAndTestTask returns the bucket keys fork has to run for task.
	TestsForForkAndTestTask(fork int, task TaskID) ([]string, error)
	// Summary returns the summary of the generated plan.
	Summary() (TestPlanSummary, error)
}
