package cmd

import (
	"fmt"
	"io"

	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/fatih/color"
)

// printSummary writes a human readable overview of a plan. Colors are
// dropped automatically when w is not a terminal.
func printSummary(w io.Writer, summary core.TestPlanSummary, forks []core.ForkAssignment) {
	header := color.New(color.FgCyan, color.Bold)
	busiest := color.New(color.FgYellow)

	header.Fprintf(w, "%d tests across %d forks\n", summary.TotalTestCount, summary.ForkCount)
	maxIdx := -1
	var maxDuration float64
	for _, fork := range forks {
		if maxIdx == -1 || fork.Duration > maxDuration {
			maxIdx, maxDuration = fork.Index, fork.Duration
		}
	}
	for _, fork := range forks {
		buckets := 0
		for _, keys := range fork.Buckets {
			buckets += len(keys)
		}
		line := fmt.Sprintf("  fork %-3d %8.2fs  %d buckets\n", fork.Index, fork.Duration, buckets)
		if fork.Index == maxIdx {
			busiest.Fprint(w, line)
			continue
		}
		fmt.Fprint(w, line)
	}
}
