// Package memory provides in-memory store implementations for development and testing.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
)

// Cache is an in-memory essays.CountCache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]essays.WordCounts
}

// NewCache constructs a Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]essays.WordCounts)}
}

// Snapshot returns a copy of the cache contents.
func (c *Cache) Snapshot(_ context.Context) (map[string]essays.WordCounts, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]essays.WordCounts, len(c.entries))
	for url, counts := range c.entries {
		out[url] = counts.Clone()
	}
	return out, nil
}

// MergeUpdate inserts or overwrites each URL key from entries.
func (c *Cache) MergeUpdate(_ context.Context, entries map[string]essays.WordCounts) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for url, counts := range entries {
		c.entries[url] = counts.Clone()
	}
	return nil
}

// Registry is an in-memory essays.JobRegistry.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]essays.Job
}

// NewRegistry constructs a Registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]essays.Job)}
}

// Create stores a new job record.
func (r *Registry) Create(_ context.Context, job essays.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return errors.New("job already exists")
	}
	r.jobs[job.ID] = job
	return nil
}

// Finalize records the terminal status and failed URLs for a job.
func (r *Registry) Finalize(_ context.Context, jobID string, status essays.JobStatus, failedURLs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return errors.New("job not found")
	}
	job.Status = status
	job.FailedURLs = append([]string{}, failedURLs...)
	now := time.Now().UTC()
	job.FinishedAt = &now
	r.jobs[jobID] = job
	return nil
}

// Lookup classifies the job as not found, still processing, or complete.
func (r *Registry) Lookup(_ context.Context, jobID string) (essays.Job, essays.LookupState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return essays.Job{}, essays.LookupNotFound, nil
	}
	if job.Status == essays.JobStatusProcessing {
		return job, essays.LookupIncomplete, nil
	}
	return job, essays.LookupComplete, nil
}
