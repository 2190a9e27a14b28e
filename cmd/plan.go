package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/allocator"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/planqueue"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// manifest lists the tests of a build, grouped by task.
type manifest struct {
	ForkCount int               `json:"fork_count"`
	MatchMode core.MatchMode    `json:"match_mode"`
	Sources   []core.TestSource `json:"sources"`
}

type planResult struct {
	PlanID  string                `json:"plan_id,omitempty"`
	Summary core.TestPlanSummary  `json:"summary"`
	Forks   []core.ForkAssignment `json:"forks,omitempty"`
}

func planCommand() *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a duration balanced test plan for a manifest of tasks",
		RunE:  runPlan,
	}
	planCmd.Flags().String("manifest", "", "json or yaml manifest of tasks and their test prefixes")
	planCmd.Flags().Int("fork", -1, "only print the tests of this fork")
	planCmd.Flags().Bool("publish", false, "publish the plan to the workers over kafka")
	planCmd.Flags().Bool("summary", false, "print a per fork summary to stderr")
	_ = planCmd.MarkFlagRequired("manifest")
	return planCmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	manifestPath, _ := cmd.Flags().GetString("manifest")
	fork, _ := cmd.Flags().GetInt("fork")
	publish, _ := cmd.Flags().GetBool("publish")
	showSummary, _ := cmd.Flags().GetBool("summary")

	f, err := os.Open(manifestPath)
	if err != nil {
		logger.Errorf("failed to open manifest %s, error: %v", manifestPath, err)
		return err
	}
	defer f.Close()
	m, err := readManifest(f, isYAML(manifestPath))
	if err != nil {
		logger.Errorf("failed to read manifest %s, error: %v", manifestPath, err)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sources, err := newTimingStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sources.Close(logger)

	testAllocator, err := generatePlan(ctx, cfg, sources.store, m, logger)
	if err != nil {
		return err
	}

	var planID string
	if publish {
		producer := planqueue.NewProducer(cfg, logger)
		defer producer.Close()
		if planID, err = planqueue.NewPublisher(producer, logger).Publish(testAllocator, tasksOf(m)); err != nil {
			return err
		}
	}
	if showSummary {
		generated, err := testAllocator.Plan()
		if err != nil {
			return err
		}
		printSummary(cmd.ErrOrStderr(), generated.Summary(), generated.Forks())
	}
	if fork >= 0 {
		return writeForkTests(cmd.OutOrStdout(), testAllocator, fork, tasksOf(m))
	}
	return writePlan(cmd.OutOrStdout(), testAllocator, planID)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func readManifest(r io.Reader, yamlFormat bool) (*manifest, error) {
	m := new(manifest)
	var err error
	if yamlFormat {
		err = yaml.NewDecoder(r).Decode(m)
	} else {
		err = json.NewDecoder(r).Decode(m)
	}
	if err != nil {
		return nil, err
	}
	if len(m.Sources) == 0 {
		return nil, errs.ErrEmptyManifest
	}
	return m, nil
}

// generatePlan runs the allocator over the manifest. Manifest values win
// over the configured fork count and match mode.
func generatePlan(ctx context.Context,
	cfg *config.Config,
	store core.TimingStore,
	m *manifest,
	logger lumber.Logger) (*allocator.BucketingAllocator, error) {
	forkCount := cfg.ForkCount
	if m.ForkCount > 0 {
		forkCount = m.ForkCount
	}
	matchMode := core.MatchMode(cfg.MatchMode)
	if m.MatchMode != "" {
		matchMode = m.MatchMode
	}
	testAllocator, err := allocator.New(forkCount, store, logger,
		allocator.WithMatchMode(matchMode),
		allocator.WithStrictPrefixes(cfg.StrictPrefixes))
	if err != nil {
		return nil, err
	}
	for _, source := range m.Sources {
		prefixes := source.Prefixes
		if err := testAllocator.AddSource(func() []string { return prefixes }, source.Task); err != nil {
			return nil, err
		}
	}
	if err := testAllocator.GenerateTestPlan(ctx); err != nil {
		return nil, err
	}
	return testAllocator, nil
}

func tasksOf(m *manifest) []core.TaskID {
	tasks := make([]core.TaskID, 0, len(m.Sources))
	seen := make(map[core.TaskID]struct{}, len(m.Sources))
	for _, source := range m.Sources {
		if _, ok := seen[source.Task]; ok {
			continue
		}
		seen[source.Task] = struct{}{}
		tasks = append(tasks, source.Task)
	}
	return tasks
}

func writePlan(w io.Writer, testAllocator *allocator.BucketingAllocator, planID string) error {
	generated, err := testAllocator.Plan()
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(planResult{PlanID: planID, Summary: generated.Summary(), Forks: generated.Forks()})
}

// writeForkTests prints the tests of fork, one per line, task by task.
func writeForkTests(w io.Writer, testAllocator core.TestAllocator, fork int, tasks []core.TaskID) error {
	for _, task := range tasks {
		tests, err := testAllocator.TestsForForkAndTestTask(fork, task)
		if err != nil {
			return err
		}
		for _, test := range tests {
			if _, err := fmt.Fprintln(w, test); err != nil {
				return err
			}
		}
	}
	return nil
}
