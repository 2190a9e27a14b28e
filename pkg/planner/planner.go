// Package planner packs test buckets into forks using longest-processing-time-first.
package planner

import (
	"fmt"

	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/taskheap"
)

// Planner distributes buckets across a fixed number of forks.
type Planner struct {
	forkCount int
}

// ForForkCount returns a planner for exactly forkCount forks.
func ForForkCount(forkCount int) (*Planner, error) {
	if forkCount < 1 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidForkCount, forkCount)
	}
	return &Planner{forkCount: forkCount}, nil
}

// ForkCount returns the number of forks the planner packs into.
func (p *Planner) ForkCount() int {
	return p.forkCount
}

// CreatePlan assigns every bucket, in the given order, to the fork with the
// smallest running duration. Callers pass buckets sorted by descending duration;
// they are not re-sorted here.
func (p *Planner) CreatePlan(buckets []*core.TestBucket) (*Plan, error) {
	forkHeap := taskheap.New(p.forkCount)
	for _, b := range buckets {
		forkHeap.UpdateHead(b)
	}

	plan := &Plan{
		forks: make([]*core.ForkAssignment, p.forkCount),
	}
	placed := 0
	for _, load := range forkHeap.ByIndex() {
		assignment := &core.ForkAssignment{
			Index:    load.Index,
			Duration: load.Duration,
			Buckets:  make(map[core.TaskID][]string),
		}
		for _, b := range load.Buckets {
			assignment.Buckets[b.Task] = append(assignment.Buckets[b.Task], b.Key)
			plan.totalTestCount += len(b.Timings)
			placed++
		}
		plan.forks[load.Index] = assignment
	}
	if placed != len(buckets) {
		return nil, fmt.Errorf("%w: placed %d of %d", errs.ErrPlanInvariant, placed, len(buckets))
	}
	return plan, nil
}
