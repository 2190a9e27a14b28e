package cmd

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/seed"
	"github.com/LambdaTest/forkplan/pkg/shuffler"
	"github.com/spf13/cobra"
)

func shardCommand() *cobra.Command {
	shardCmd := &cobra.Command{
		Use:   "shard",
		Short: "Split a newline separated list of tests uniformly across forks",
		RunE:  runShard,
	}
	shardCmd.Flags().String("tests", "", "file with one test name per line, - for stdin")
	shardCmd.Flags().Int("fork", -1, "only print the tests of this fork")
	shardCmd.Flags().String("revision", "", "revision the seed is derived from")
	shardCmd.Flags().String("user", "", "user the seed is derived from")
	shardCmd.Flags().String("task", "", "task the seed is derived from")
	_ = shardCmd.MarkFlagRequired("tests")
	return shardCmd
}

func runShard(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	testsPath, _ := cmd.Flags().GetString("tests")
	fork, _ := cmd.Flags().GetInt("fork")
	revision, _ := cmd.Flags().GetString("revision")
	user, _ := cmd.Flags().GetString("user")
	task, _ := cmd.Flags().GetString("task")

	var r io.Reader = cmd.InOrStdin()
	if testsPath != "-" {
		f, err := os.Open(testsPath)
		if err != nil {
			logger.Errorf("failed to open test list %s, error: %v", testsPath, err)
			return err
		}
		defer f.Close()
		r = f
	}
	tests, err := readTestList(r, logger)
	if err != nil {
		return err
	}

	shuffleSeed := seed.Derive(revision, user, task, cfg.Seed)
	list := shuffler.New(tests)
	if fork >= 0 {
		forkTests, err := list.TestsForFork(fork, cfg.ForkCount, shuffleSeed)
		if err != nil {
			return err
		}
		return writeLines(cmd.OutOrStdout(), forkTests)
	}
	forks, err := list.Allocate(cfg.ForkCount, shuffleSeed)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(forks)
}

// readTestList returns the distinct non blank lines of r in order.
func readTestList(r io.Reader, logger lumber.Logger) ([]string, error) {
	scanner := bufio.NewScanner(r)
	tests := make([]string, 0)
	seen := make(map[string]struct{})
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			logger.Warnf("test %s listed more than once, keeping the first", name)
			continue
		}
		seen[name] = struct{}{}
		tests = append(tests, name)
	}
	return tests, scanner.Err()
}

func writeLines(w io.Writer, lines []string) error {
	buffered := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := buffered.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return buffered.Flush()
}
