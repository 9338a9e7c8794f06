// Package pipeline orchestrates a job from submission through finalization
// and answers result queries by job id.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/essay-wordfreq/internal/aggregate"
	"github.com/JakeFAU/essay-wordfreq/internal/essays"
	"github.com/JakeFAU/essay-wordfreq/internal/metrics"
	"github.com/JakeFAU/essay-wordfreq/internal/scheduler"
)

// Runner wires the vocabulary loader, scheduler and stores into the
// end-to-end job flow.
type Runner struct {
	vocabulary      essays.VocabularyLoader
	scheduler       *scheduler.Scheduler
	cache           essays.CountCache
	registry        essays.JobRegistry
	clock           essays.Clock
	defaultTopWords int
	logger          *zap.Logger
}

// New constructs a Runner.
func New(
	vocabulary essays.VocabularyLoader,
	sched *scheduler.Scheduler,
	cache essays.CountCache,
	registry essays.JobRegistry,
	clock essays.Clock,
	defaultTopWords int,
	logger *zap.Logger,
) *Runner {
	if defaultTopWords <= 0 {
		defaultTopWords = aggregate.DefaultTopWords
	}
	return &Runner{
		vocabulary:      vocabulary,
		scheduler:       sched,
		cache:           cache,
		registry:        registry,
		clock:           clock,
		defaultTopWords: defaultTopWords,
		logger:          logger,
	}
}

// DedupeURLs trims whitespace, drops blank lines and removes duplicates,
// preserving first-seen order.
func DedupeURLs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		url := strings.TrimSpace(line)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}

// Process runs one job: register it, build the vocabulary, drive the batches
// and finalize the record. Per-URL failures do not fail the job; a vocabulary
// failure or an aborted run finalizes it as Failed with whatever failed URLs
// had accumulated. Committed batches are never rolled back.
func (r *Runner) Process(ctx context.Context, jobID, fileName string, rawURLs []string) error {
	urls := DedupeURLs(rawURLs)
	job := essays.Job{
		ID:            jobID,
		FileName:      fileName,
		Status:        essays.JobStatusProcessing,
		SubmittedURLs: urls,
		FailedURLs:    []string{},
		SubmittedAt:   r.clock.Now(),
	}
	if err := r.registry.Create(ctx, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	r.logger.Info("job processing started",
		zap.String("job_id", jobID),
		zap.String("file_name", fileName),
		zap.Int("urls", len(urls)),
	)

	vocabulary, err := r.vocabulary.Load(ctx)
	if err != nil {
		r.fail(ctx, jobID, nil, err)
		return fmt.Errorf("load vocabulary: %w", err)
	}

	failed, err := r.scheduler.Run(ctx, urls, vocabulary)
	if err != nil {
		r.fail(ctx, jobID, failed, err)
		return fmt.Errorf("run batches: %w", err)
	}

	if failed == nil {
		failed = []string{}
	}
	if err := r.registry.Finalize(ctx, jobID, essays.JobStatusProcessed, failed); err != nil {
		return fmt.Errorf("finalize job: %w", err)
	}
	metrics.ObserveJob(string(essays.JobStatusProcessed))
	r.logger.Info("job processed",
		zap.String("job_id", jobID),
		zap.Int("failed_urls", len(failed)),
	)
	return nil
}

func (r *Runner) fail(ctx context.Context, jobID string, failed []string, cause error) {
	r.logger.Error("job failed", zap.String("job_id", jobID), zap.Error(cause))
	if failed == nil {
		failed = []string{}
	}
	// Finalization must not depend on the (possibly canceled) run context.
	if err := r.registry.Finalize(context.WithoutCancel(ctx), jobID, essays.JobStatusFailed, failed); err != nil {
		r.logger.Error("finalize failed job", zap.String("job_id", jobID), zap.Error(err))
	}
	metrics.ObserveJob(string(essays.JobStatusFailed))
}

// QueryResult is the outcome of a result lookup.
type QueryResult struct {
	State      essays.LookupState
	JobID      string
	TopWords   essays.AggregationResult
	FailedURLs []string
}

// Query resolves a job id into its aggregation result. Aggregation happens on
// demand over the job's URL scope and the current cache contents; incomplete
// and unknown jobs are reported through State without touching the cache.
func (r *Runner) Query(ctx context.Context, jobID string, topWords int) (QueryResult, error) {
	job, state, err := r.registry.Lookup(ctx, jobID)
	if err != nil {
		return QueryResult{}, fmt.Errorf("lookup job: %w", err)
	}
	if state != essays.LookupComplete {
		return QueryResult{State: state, JobID: jobID}, nil
	}

	if topWords <= 0 {
		topWords = r.defaultTopWords
	}
	entries, err := r.cache.Snapshot(ctx)
	if err != nil {
		return QueryResult{}, fmt.Errorf("snapshot cache: %w", err)
	}
	failed := job.FailedURLs
	if failed == nil {
		failed = []string{}
	}
	return QueryResult{
		State:      essays.LookupComplete,
		JobID:      jobID,
		TopWords:   aggregate.TopWords(entries, job.SubmittedURLs, topWords),
		FailedURLs: failed,
	}, nil
}
