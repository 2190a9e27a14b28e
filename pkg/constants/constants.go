package constants

import (
	"time"
)

const (
	// ServiceName is the name the binary reports in logs and published plans
	ServiceName = "forkplan"
	// DefaultEstimatedDurationSeconds is the duration assumed for tests without
	// history when no history exists at all.
	DefaultEstimatedDurationSeconds = 1.0
	// TimingsArtifactName base name of the timing history archive.
	TimingsArtifactName = "tests-durations"
	// TimingsArchiveExt extension of the zipped timing history.
	TimingsArchiveExt = ".zip"
	// TimingsCSVExt extension of the plain timing history.
	TimingsCSVExt = ".csv"
	// MaxTestsPerPlanMessage caps the tests carried by one published plan message.
	MaxTestsPerPlanMessage = 2000
	// TimingsCacheKeyPrefix prefixes the redis key of a cached timing snapshot.
	TimingsCacheKeyPrefix = "timings:"
	// DefaultTimingsCacheTTL is how long a cached timing snapshot stays valid.
	DefaultTimingsCacheTTL = 30 * time.Minute
	// DefaultTimingsLookback bounds how far back execution history is averaged.
	DefaultTimingsLookback = 30 * 24 * time.Hour
	// DefaultLoadAttempts number of attempts when loading timing history.
	DefaultLoadAttempts = 3
	// DefaultLoadRetryDelay delay between timing history load attempts.
	DefaultLoadRetryDelay = 2 * time.Second
	// DefaultGracefulTimeout is the time server waits to exit gracefully.
	DefaultGracefulTimeout = 30 * time.Second
	// MysqlMaxIdleConnection max mysql idle connections.
	MysqlMaxIdleConnection = 5
	// MysqlMaxOpenConnection max mysql open connections.
	MysqlMaxOpenConnection = 5
	// MysqlMaxConnectionLifetime max mysql connection lifetime.
	MysqlMaxConnectionLifetime = 5 * time.Minute
	// MillisPerSecond converts recorded millisecond durations.
	MillisPerSecond = 1000.0
)

// BinaryVersion version of the binary, set at build time
var BinaryVersion string

// list of supported environments
const (
	Dev   = "dev"
	Stage = "stage"
	Prod  = "prod"
)

// CorsAllowedOrigins origins allowed to call the http api
var CorsAllowedOrigins = []string{"http://localhost:3000"}
