package cmd

import (
	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/spf13/cobra"
)

// AttachCLIFlags attaches command line flags shared by every command
func AttachCLIFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file path")
	flags.BoolP("verbose", "v", false, "enable debug logs")
	flags.String("env", "", "environment: dev, stage or prod")
	flags.String("log-file", "", "directory of the rotated log file")

	flags.IntP("forks", "n", 1, "number of forks the tests are split across")
	flags.String("match-mode", string(core.ClassMatch), "how prefixes match timing records: class or method")
	flags.Bool("strict-prefixes", false, "fail instead of warn on overlapping prefixes")
	flags.Int64("seed", 0, "shift applied to the derived shuffle seed")
	flags.String("timings-file", "", "csv or zipped csv timing history")
	flags.String("branch-tag", "", "tag of the branch whose timing history is used")
	flags.String("target-branch-tag", "", "tag consulted when the branch has no timing history")

	rootCmd.Flags().StringP("port", "p", "", "http port the server listens on")
}
