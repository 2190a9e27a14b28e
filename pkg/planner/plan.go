package planner

import (
	"fmt"

	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
)

// Plan is the immutable result of packing buckets into forks.
type Plan struct {
	forks          []*core.ForkAssignment
	totalTestCount int
}

// TestsForForkAndTask returns the bucket keys of task assigned to fork, in
// assignment order. A task without buckets on the fork yields an empty slice.
func (p *Plan) TestsForForkAndTask(fork int, task core.TaskID) ([]string, error) {
	if fork < 0 || fork >= len(p.forks) {
		return nil, fmt.Errorf("%w: fork %d of %d", errs.ErrInvalidForkIndex, fork, len(p.forks))
	}
	keys := p.forks[fork].Buckets[task]
	out := make([]string, len(keys))
	copy(out, keys)
	return out, nil
}

// Summary returns the fork count and the number of timing entries across all buckets.
func (p *Plan) Summary() core.TestPlanSummary {
	return core.TestPlanSummary{
		ForkCount:      len(p.forks),
		TotalTestCount: p.totalTestCount,
	}
}

// ForkDurations returns the estimated duration of every fork, indexed by fork.
func (p *Plan) ForkDurations() []float64 {
	durations := make([]float64, len(p.forks))
	for i, f := range p.forks {
		durations[i] = f.Duration
	}
	return durations
}

// Forks returns a copy of every fork's assignment, indexed by fork.
func (p *Plan) Forks() []core.ForkAssignment {
	forks := make([]core.ForkAssignment, len(p.forks))
	for i, f := range p.forks {
		buckets := make(map[core.TaskID][]string, len(f.Buckets))
		for task, keys := range f.Buckets {
			buckets[task] = append([]string(nil), keys...)
		}
		forks[i] = core.ForkAssignment{Index: f.Index, Duration: f.Duration, Buckets: buckets}
	}
	return forks
}
