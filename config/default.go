package config

import (
	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/spf13/viper"
)

func setDefaultConfig() {
	viper.SetDefault("Data.LogConfig.EnableConsole", true)
	viper.SetDefault("Data.LogConfig.ConsoleJSONFormat", false)
	viper.SetDefault("Data.LogConfig.ConsoleLevel", "info")
	viper.SetDefault("Data.LogConfig.EnableFile", false)
	viper.SetDefault("Data.LogConfig.FileJSONFormat", true)
	viper.SetDefault("Data.LogConfig.FileLevel", "debug")
	viper.SetDefault("Data.LogConfig.FileLocation", "./forkplan.log")
	viper.SetDefault("Data.LogFile", "")
	viper.SetDefault("Data.Env", constants.Prod)
	viper.SetDefault("Data.Port", "9876")
	viper.SetDefault("Data.Verbose", false)
	viper.SetDefault("Data.GracefulTimeout", constants.DefaultGracefulTimeout)
	viper.SetDefault("Data.ForkCount", 1)
	viper.SetDefault("Data.Seed", 0)
	viper.SetDefault("Data.MatchMode", string(core.ClassMatch))
	viper.SetDefault("Data.StrictPrefixes", false)
	viper.SetDefault("Data.Timings.File", "")
	viper.SetDefault("Data.Timings.BranchTag", "")
	viper.SetDefault("Data.Timings.TargetBranchTag", "")
	viper.SetDefault("Data.Timings.Lookback", constants.DefaultTimingsLookback)
	viper.SetDefault("Data.Timings.CacheTTL", constants.DefaultTimingsCacheTTL)
	viper.SetDefault("Data.Timings.LoadAttempts", constants.DefaultLoadAttempts)
	viper.SetDefault("Data.Timings.RetryDelay", constants.DefaultLoadRetryDelay)
	// empty defaults so the keys can be set through the environment
	viper.SetDefault("Data.DB.Host", "")
	viper.SetDefault("Data.DB.Port", "3306")
	viper.SetDefault("Data.DB.User", "")
	viper.SetDefault("Data.DB.Password", "")
	viper.SetDefault("Data.DB.Name", "")
	viper.SetDefault("Data.Redis.Addr", "")
	viper.SetDefault("Data.Redis.Username", "")
	viper.SetDefault("Data.Redis.Password", "")
	viper.SetDefault("Data.Redis.TLS", false)
	viper.SetDefault("Data.Azure.StorageAccountName", "")
	viper.SetDefault("Data.Azure.StorageAccessKey", "")
	viper.SetDefault("Data.Azure.TimingsContainerName", "")
	viper.SetDefault("Data.Kafka.Brokers", "")
	viper.SetDefault("Data.Kafka.PlanQueueConfig.Topic", "test-plans")
}
