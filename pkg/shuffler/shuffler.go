// Package shuffler splits a flat list of tests across forks with a seeded shuffle.
package shuffler

import (
	"fmt"
	"math/rand"

	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/utils"
)

// placeholder marks padding slots in the shuffled index list.
const placeholder = -1

// ListShuffler allocates a fixed list of distinct test names across forks.
type ListShuffler struct {
	tests []string
}

// New returns a ListShuffler over a copy of tests.
func New(tests []string) *ListShuffler {
	return &ListShuffler{tests: append([]string(nil), tests...)}
}

// Len returns the number of tests being allocated.
func (l *ListShuffler) Len() int {
	return len(l.tests)
}

// TestsForFork returns the tests fork has to run out of forks. The same
// (tests, forks, seed) always yields the same result, and the results of all
// forks partition the input.
func (l *ListShuffler) TestsForFork(fork, forks int, seed int64) ([]string, error) {
	if forks < 1 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidForkCount, forks)
	}
	if fork < 0 || fork >= forks {
		return nil, fmt.Errorf("%w: fork %d of %d", errs.ErrInvalidForkIndex, fork, forks)
	}
	return l.slice(l.shuffled(forks, seed), fork, forks), nil
}

// Allocate returns the tests of every fork, indexed by fork.
func (l *ListShuffler) Allocate(forks int, seed int64) ([][]string, error) {
	if forks < 1 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidForkCount, forks)
	}
	order := l.shuffled(forks, seed)
	allocation := make([][]string, forks)
	for fork := 0; fork < forks; fork++ {
		allocation[fork] = l.slice(order, fork, forks)
	}
	return allocation, nil
}

// shuffled returns test indexes padded with placeholders to at least forks
// entries, in seeded random order.
func (l *ListShuffler) shuffled(forks int, seed int64) []int {
	order := make([]int, utils.Max(len(l.tests), forks))
	for i := range order {
		if i < len(l.tests) {
			order[i] = i
			continue
		}
		order[i] = placeholder
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func (l *ListShuffler) slice(order []int, fork, forks int) []string {
	perFork := utils.Max(len(order)/forks, 1)
	start := fork * perFork
	end := utils.Min(start+perFork, len(order))
	picked := make([]int, 0, perFork+1)
	if start < len(order) {
		picked = append(picked, order[start:end]...)
	}
	// the remainder past forks*perFork is handed out one entry per fork
	if extra := forks*perFork + fork; extra < len(order) {
		picked = append(picked, order[extra])
	}

	tests := make([]string, 0, len(picked))
	for _, idx := range picked {
		if idx == placeholder {
			continue
		}
		tests = append(tests, l.tests[idx])
	}
	return tests
}
