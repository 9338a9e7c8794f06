package essays

import (
	"context"
	"time"
)

// CountCache is the durable URL -> word-count store enabling cross-run dedup.
type CountCache interface {
	// Snapshot returns the full cache contents.
	Snapshot(ctx context.Context) (map[string]WordCounts, error)
	// MergeUpdate inserts or overwrites each URL key from entries.
	MergeUpdate(ctx context.Context, entries map[string]WordCounts) error
}

// JobRegistry persists job records across submissions.
type JobRegistry interface {
	Create(ctx context.Context, job Job) error
	Finalize(ctx context.Context, jobID string, status JobStatus, failedURLs []string) error
	Lookup(ctx context.Context, jobID string) (Job, LookupState, error)
}

// Fetcher retrieves the raw body of a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// VocabularyLoader builds the reference vocabulary for a job run.
type VocabularyLoader interface {
	Load(ctx context.Context) (Vocabulary, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
