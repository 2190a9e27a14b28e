package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// GlobalConfig stores the config instance for global use
var GlobalConfig *Config

// flagKeys maps cli flags to the config keys they override.
var flagKeys = map[string]string{
	"port":              "Data.Port",
	"env":               "Data.Env",
	"verbose":           "Data.Verbose",
	"log-file":          "Data.LogFile",
	"forks":             "Data.ForkCount",
	"seed":              "Data.Seed",
	"match-mode":        "Data.MatchMode",
	"strict-prefixes":   "Data.StrictPrefixes",
	"timings-file":      "Data.Timings.File",
	"branch-tag":        "Data.Timings.BranchTag",
	"target-branch-tag": "Data.Timings.TargetBranchTag",
}

// Load loads config from command instance to predefined config variables
func Load(cmd *cobra.Command) (*Config, error) {
	if err := bindFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	// FP_ variables may also live in a .env file, the process environment wins
	_ = godotenv.Load()

	// default viper configs
	viper.SetEnvPrefix("FP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// set default configs
	setDefaultConfig()

	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".fp")
		viper.AddConfigPath("./")
	}

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("Warning: No configuration file found. Proceeding with defaults")
	}

	return populateConfig(new(ConfigWrapper))
}

func bindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

func populateConfig(wrapper *ConfigWrapper) (*Config, error) {
	if err := viper.Unmarshal(wrapper); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&wrapper.Config); err != nil {
		return nil, err
	}
	GlobalConfig = &wrapper.Config
	return GlobalConfig, nil
}
