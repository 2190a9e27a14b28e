package planner

import (
	"fmt"
	"testing"

	"github.com/LambdaTest/forkplan/pkg/bucket"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const task = core.TaskID("test")

func single(key string, duration float64) *core.TestBucket {
	return &core.TestBucket{Task: task, Key: key, Timings: []core.TestTiming{{Name: key, DurationSeconds: duration}}}
}

func TestForForkCount(t *testing.T) {
	tests := []struct {
		name      string
		forkCount int
		wantErr   bool
	}{
		{name: "zero", forkCount: 0, wantErr: true},
		{name: "negative", forkCount: -3, wantErr: true},
		{name: "one", forkCount: 1},
		{name: "many", forkCount: 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ForForkCount(tt.forkCount)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrInvalidForkCount)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.forkCount, p.ForkCount())
		})
	}
}

func TestCreatePlanLongestFirst(t *testing.T) {
	p, err := ForForkCount(2)
	require.NoError(t, err)

	plan, err := p.CreatePlan([]*core.TestBucket{single("big", 2.0), single("small1", 1.0), single("small2", 1.0)})
	require.NoError(t, err)

	fork0, err := plan.TestsForForkAndTask(0, task)
	require.NoError(t, err)
	fork1, err := plan.TestsForForkAndTask(1, task)
	require.NoError(t, err)

	assert.Equal(t, []string{"big"}, fork0)
	assert.Equal(t, []string{"small1", "small2"}, fork1)
	assert.Equal(t, core.TestPlanSummary{ForkCount: 2, TotalTestCount: 3}, plan.Summary())
	assert.Equal(t, []float64{2.0, 2.0}, plan.ForkDurations())
}

func TestCreatePlanSummaryCountsEveryTiming(t *testing.T) {
	timings := []core.TestTiming{
		{Name: "a.1", DurationSeconds: 1.0},
		{Name: "a.2", DurationSeconds: 1.1},
		{Name: "c.1", DurationSeconds: 2.0},
		{Name: "c.2", DurationSeconds: 1.9},
	}
	buckets := bucket.Build(timings, []core.TestSource{{Prefixes: []string{"a", "b", "c"}, Task: task}}, core.ClassMatch)

	for forks := 1; forks <= 4; forks++ {
		p, err := ForForkCount(forks)
		require.NoError(t, err)
		plan, err := p.CreatePlan(buckets)
		require.NoError(t, err)
		assert.Equal(t, 4, plan.Summary().TotalTestCount)
		assert.Equal(t, forks, plan.Summary().ForkCount)
	}
}

func TestCreatePlanZeroDurationTiesGoToFirstFork(t *testing.T) {
	p, err := ForForkCount(3)
	require.NoError(t, err)
	buckets := []*core.TestBucket{
		{Task: task, Key: "x"},
		{Task: task, Key: "y"},
	}
	plan, err := p.CreatePlan(buckets)
	require.NoError(t, err)
	fork0, _ := plan.TestsForForkAndTask(0, task)
	fork1, _ := plan.TestsForForkAndTask(1, task)
	assert.Equal(t, []string{"x", "y"}, fork0)
	assert.Empty(t, fork1)
}

func TestCreatePlanSeparatesTasks(t *testing.T) {
	p, err := ForForkCount(2)
	require.NoError(t, err)
	buckets := []*core.TestBucket{
		{Task: "unit", Key: "u.A", Timings: []core.TestTiming{{Name: "u.A.t", DurationSeconds: 5}}},
		{Task: "integration", Key: "i.A", Timings: []core.TestTiming{{Name: "i.A.t", DurationSeconds: 4}}},
		{Task: "unit", Key: "u.B", Timings: []core.TestTiming{{Name: "u.B.t", DurationSeconds: 3}}},
	}
	plan, err := p.CreatePlan(buckets)
	require.NoError(t, err)

	unit0, _ := plan.TestsForForkAndTask(0, "unit")
	unit1, _ := plan.TestsForForkAndTask(1, "unit")
	integration1, _ := plan.TestsForForkAndTask(1, "integration")
	unknown, err := plan.TestsForForkAndTask(0, "never-registered")

	assert.Equal(t, []string{"u.A"}, unit0)
	assert.Equal(t, []string{"u.B"}, unit1)
	assert.Equal(t, []string{"i.A"}, integration1)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestTestsForForkAndTaskRejectsBadFork(t *testing.T) {
	p, err := ForForkCount(2)
	require.NoError(t, err)
	plan, err := p.CreatePlan(nil)
	require.NoError(t, err)

	for _, fork := range []int{-1, 2, 10} {
		_, err := plan.TestsForForkAndTask(fork, task)
		assert.ErrorIs(t, err, errs.ErrInvalidForkIndex, "fork %d", fork)
	}
}

func TestCreatePlanAssignsEveryBucketOnce(t *testing.T) {
	buckets := make([]*core.TestBucket, 0, 50)
	for i := 0; i < 50; i++ {
		buckets = append(buckets, single(fmt.Sprintf("k%02d", i), float64(50-i)))
	}
	for forks := 1; forks <= 12; forks++ {
		p, err := ForForkCount(forks)
		require.NoError(t, err)
		plan, err := p.CreatePlan(buckets)
		require.NoError(t, err)

		seen := make(map[string]int)
		for f := 0; f < forks; f++ {
			keys, err := plan.TestsForForkAndTask(f, task)
			require.NoError(t, err)
			for _, k := range keys {
				seen[k]++
			}
		}
		require.Len(t, seen, len(buckets))
		for k, n := range seen {
			assert.Equal(t, 1, n, "bucket %s assigned %d times", k, n)
		}
	}
}

func TestCreatePlanIsDeterministic(t *testing.T) {
	buckets := []*core.TestBucket{single("a", 3), single("b", 3), single("c", 2), single("d", 1), single("e", 1)}
	p, err := ForForkCount(3)
	require.NoError(t, err)
	first, err := p.CreatePlan(buckets)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := p.CreatePlan(buckets)
		require.NoError(t, err)
		assert.Equal(t, first.Forks(), again.Forks())
	}
}
