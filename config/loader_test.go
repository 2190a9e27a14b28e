package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "config file")
	cmd.Flags().Int("forks", 1, "fork count")
	cmd.Flags().String("match-mode", "class", "match mode")
	cmd.Flags().Bool("verbose", false, "verbose")
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	cfg, err := Load(newCommand())
	require.NoError(t, err)

	assert.Equal(t, "9876", cfg.Port)
	assert.Equal(t, constants.Prod, cfg.Env)
	assert.Equal(t, 1, cfg.ForkCount)
	assert.Equal(t, "class", cfg.MatchMode)
	assert.Equal(t, constants.DefaultTimingsCacheTTL, cfg.Timings.CacheTTL)
	assert.Equal(t, uint(constants.DefaultLoadAttempts), cfg.Timings.LoadAttempts)
	assert.Equal(t, constants.DefaultGracefulTimeout, cfg.GracefulTimeout)
	assert.Same(t, GlobalConfig, cfg)
}

func TestLoadPrecedence(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	file := filepath.Join(dir, "forkplan.json")
	require.NoError(t, ioutil.WriteFile(file, []byte(`{
		"data": {
			"port": "8080",
			"forkCount": 3,
			"timings": {"branchTag": "feature", "cacheTTL": "5m"}
		}
	}`), 0o600))
	t.Setenv("FP_DATA_DB_HOST", "mysql.local")
	t.Setenv("FP_DATA_PORT", "7070")

	cmd := newCommand()
	require.NoError(t, cmd.Flags().Set("config", file))
	require.NoError(t, cmd.Flags().Set("forks", "4"))

	cfg, err := Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.ForkCount)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "mysql.local", cfg.DB.Host)
	assert.Equal(t, "feature", cfg.Timings.BranchTag)
	assert.Equal(t, 5*time.Minute, cfg.Timings.CacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	viper.Reset()
	cmd := newCommand()
	require.NoError(t, cmd.Flags().Set("match-mode", "package"))
	_, err := Load(cmd)
	assert.Error(t, err)

	viper.Reset()
	cmd = newCommand()
	require.NoError(t, cmd.Flags().Set("forks", "0"))
	_, err = Load(cmd)
	assert.Error(t, err)
}
