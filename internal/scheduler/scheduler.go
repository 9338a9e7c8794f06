// Package scheduler drives the concurrent fetch-filter-commit pipeline.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
	"github.com/JakeFAU/essay-wordfreq/internal/filter"
	"github.com/JakeFAU/essay-wordfreq/internal/metrics"
)

// Config controls batch partitioning and in-batch concurrency.
type Config struct {
	BatchSize   int
	Concurrency int
}

// Scheduler partitions a URL set into sequential batches and runs fetch+filter
// concurrently within each batch. A batch's successful counts are committed to
// the cache before the next batch starts, so a crash loses at most the
// in-flight batch.
type Scheduler struct {
	fetcher essays.Fetcher
	cache   essays.CountCache
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Scheduler.
func New(fetcher essays.Fetcher, cache essays.CountCache, cfg Config, logger *zap.Logger) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	return &Scheduler{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run processes urls against the vocabulary and returns the URLs that failed.
// URLs already present in the cache are skipped entirely, based on a snapshot
// taken before the first batch. Cancellation is honored per fetch and at batch
// boundaries; a canceled run returns the failures accumulated so far along
// with the context error.
func (s *Scheduler) Run(ctx context.Context, urls []string, vocabulary essays.Vocabulary) ([]string, error) {
	cached, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}

	pending := make([]string, 0, len(urls))
	for _, url := range urls {
		if _, ok := cached[url]; ok {
			metrics.ObserveFetch("cached")
			continue
		}
		pending = append(pending, url)
	}
	s.logger.Info("scheduling batches",
		zap.Int("submitted", len(urls)),
		zap.Int("cached", len(urls)-len(pending)),
		zap.Int("pending", len(pending)),
	)

	var allFailed []string
	for start := 0; start < len(pending); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return allFailed, err
		}
		end := start + s.cfg.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		s.logger.Info("processing batch",
			zap.Int("batch", start/s.cfg.BatchSize+1),
			zap.Int("urls", len(batch)),
		)

		counts, failed, err := s.runBatch(ctx, batch, vocabulary)
		allFailed = append(allFailed, failed...)
		if err != nil {
			return allFailed, err
		}
		if err := s.cache.MergeUpdate(ctx, counts); err != nil {
			return allFailed, fmt.Errorf("commit batch: %w", err)
		}
		metrics.ObserveBatchCommit()
	}
	return allFailed, nil
}

func (s *Scheduler) runBatch(
	ctx context.Context,
	batch []string,
	vocabulary essays.Vocabulary,
) (map[string]essays.WordCounts, []string, error) {
	var (
		mu     sync.Mutex
		counts = make(map[string]essays.WordCounts, len(batch))
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, url := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			body, err := s.fetcher.Fetch(gctx, url)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("url failed", zap.String("url", url), zap.Error(err))
				metrics.ObserveFetch("failed")
				mu.Lock()
				failed = append(failed, url)
				mu.Unlock()
				return nil
			}
			wc := filter.WordCounts(body, vocabulary)
			metrics.ObserveFetch("success")
			mu.Lock()
			counts[url] = wc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, failed, err
	}
	return counts, failed, nil
}
