package config

import (
	"time"

	"github.com/LambdaTest/forkplan/pkg/lumber"
)

type (
	// ConfigWrapper is a wrapper for the config
	ConfigWrapper struct {
		Config `json:"data" mapstructure:"data"`
	}

	// Config the application's configuration
	Config struct {
		Port            string
		LogFile         string
		LogConfig       lumber.LoggingConfig
		Env             string `validate:"oneof=dev stage prod"`
		Verbose         bool
		GracefulTimeout time.Duration
		// ForkCount default number of forks a plan is generated for.
		ForkCount int `validate:"min=1"`
		// Seed shifts the shuffle seed derived from revision, user and task.
		Seed int64
		// MatchMode decides how bucket keys match timing records, class or method.
		MatchMode string `validate:"oneof=class method"`
		// StrictPrefixes fails planning on overlapping prefixes instead of warning.
		StrictPrefixes bool
		Timings        TimingsConfig
		DB             DBConfig
		Redis          Redis
		Azure          Azure
		Kafka          KafkaConfig
	}

	// TimingsConfig selects where historical test timings are read from.
	TimingsConfig struct {
		// File path of a csv or zipped csv history.
		File string
		// BranchTag key of the current branch's history.
		BranchTag string
		// TargetBranchTag key consulted when the branch has no history yet.
		TargetBranchTag string
		// Lookback bounds the execution history averaged from the database.
		Lookback time.Duration
		// CacheTTL expiry of cached timing snapshots, zero disables caching.
		CacheTTL     time.Duration
		LoadAttempts uint `validate:"min=1"`
		RetryDelay   time.Duration
	}

	// DBConfig providers the mysql db configuration.
	DBConfig struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	// Azure providers the storage configuration.
	Azure struct {
		// StorageAccountName azure storage account name
		StorageAccountName string
		// StorageAccessKey azure storage access key
		StorageAccessKey string
		// TimingsContainerName container holding the per branch timing archives
		TimingsContainerName string
	}

	// Redis represents the redis configuration.
	Redis struct {
		// Redis host:port address.
		Addr string
		// Redis username.
		Username string
		// Redis password.
		Password string
		// TLS enabled
		TLS bool
	}

	// KafkaConfig provides the kafka configuration.
	KafkaConfig struct {
		Brokers         string              `json:"brokers"`
		PlanQueueConfig KafkaProducerConfig `json:"plan_queue"`
	}

	// KafkaProducerConfig provides the kafka producer configuration.
	KafkaProducerConfig struct {
		Topic string `json:"topic"`
	}
)
