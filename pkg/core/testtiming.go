package core

import "context"

// TestTiming is one historical execution record of a test.
type TestTiming struct {
	Name            string  `json:"name" db:"name" binding:"required"`
	DurationSeconds float64 `json:"duration_seconds" db:"duration_seconds" binding:"min=0"`
}

// TimingStore supplies the timing records available for the current build.
type TimingStore interface {
	// Timings returns all known records. An empty result is valid.
	Timings(ctx context.Context) ([]TestTiming, error)
}

// TimingStoreFunc adapts a function to TimingStore.
type TimingStoreFunc func(ctx context.Context) ([]TestTiming, error)

// Timings calls f(ctx).
func (f TimingStoreFunc) Timings(ctx context.Context) ([]TestTiming, error) {
	return f(ctx)
}

// TimingArchive fetches the timing history stored under a branch tag.
type TimingArchive interface {
	// Download returns the raw archive stored for tag.
	Download(ctx context.Context, tag string) ([]byte, error)
}
