// Package bucket groups test prefixes into schedulable buckets.
package bucket

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
)

// Build returns one bucket per (source, prefix) holding every timing that matches
// the prefix, ordered by descending total duration. Buckets with equal duration
// keep their input order.
func Build(timings []core.TestTiming, sources []core.TestSource, mode core.MatchMode) []*core.TestBucket {
	buckets := make([]*core.TestBucket, 0, len(sources))
	for _, source := range sources {
		for _, prefix := range source.Prefixes {
			buckets = append(buckets, &core.TestBucket{
				Task:    source.Task,
				Key:     prefix,
				Timings: match(timings, prefix, mode),
			})
		}
	}
	Sort(buckets)
	return buckets
}

// Sort orders buckets by descending total duration using a stable sort.
func Sort(buckets []*core.TestBucket) {
	durations := make(map[*core.TestBucket]float64, len(buckets))
	for _, b := range buckets {
		durations[b] = b.Duration()
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return durations[buckets[i]] > durations[buckets[j]]
	})
}

func match(timings []core.TestTiming, key string, mode core.MatchMode) []core.TestTiming {
	matched := make([]core.TestTiming, 0)
	for _, t := range timings {
		if mode == core.MethodMatch {
			if t.Name == key {
				matched = append(matched, t)
			}
			continue
		}
		if strings.HasPrefix(t.Name, key) {
			matched = append(matched, t)
		}
	}
	return matched
}

// Validate reports keys of the same task that claim each other's tests. In
// MethodMatch mode only identical keys overlap.
func Validate(sources []core.TestSource, mode core.MatchMode) error {
	byTask := make(map[core.TaskID][]string)
	order := make([]core.TaskID, 0)
	for _, source := range sources {
		if _, ok := byTask[source.Task]; !ok {
			order = append(order, source.Task)
		}
		byTask[source.Task] = append(byTask[source.Task], source.Prefixes...)
	}
	for _, task := range order {
		prefixes := append([]string(nil), byTask[task]...)
		sort.Strings(prefixes)
		// after sorting, a prefix is always immediately followed by the names it covers
		for i := 1; i < len(prefixes); i++ {
			overlaps := prefixes[i] == prefixes[i-1]
			if mode != core.MethodMatch {
				overlaps = strings.HasPrefix(prefixes[i], prefixes[i-1])
			}
			if overlaps {
				return fmt.Errorf("%w %s: %q covers %q", errs.ErrOverlappingPrefixes, task, prefixes[i-1], prefixes[i])
			}
		}
	}
	return nil
}
