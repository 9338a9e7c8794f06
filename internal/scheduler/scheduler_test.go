package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
	"github.com/JakeFAU/essay-wordfreq/internal/storage/memory"
)

type fakeFetcher struct {
	mu       sync.Mutex
	bodies   map[string]string
	fails    map[string]bool
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	fetched  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies: make(map[string]string),
		fails:  make(map[string]bool),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		max := f.maxSeen.Load()
		if cur <= max || f.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}

	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	fail := f.fails[url]
	body := f.bodies[url]
	f.mu.Unlock()

	if fail {
		return nil, errors.New("boom")
	}
	return []byte(body), nil
}

func vocabularyOf(words ...string) essays.Vocabulary {
	v := make(essays.Vocabulary, len(words))
	for _, w := range words {
		v[w] = struct{}{}
	}
	return v
}

func TestScheduler_Run_CommitsCountsToCache(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.bodies["http://a.example"] = "<p>apple banana apple</p>"
	fetcher.bodies["http://b.example"] = "<p>cherry date</p>"
	cache := memory.NewCache()

	s := New(fetcher, cache, Config{BatchSize: 10, Concurrency: 2}, zap.NewNop())
	failed, err := s.Run(context.Background(), []string{"http://a.example", "http://b.example"}, vocabularyOf("apple", "banana", "cherry"))
	require.NoError(t, err)
	require.Empty(t, failed)

	entries, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, essays.WordCounts{"apple": 2, "banana": 1}, entries["http://a.example"])
	require.Equal(t, essays.WordCounts{"cherry": 1}, entries["http://b.example"])
}

func TestScheduler_Run_FailedURLsReportedOnceAndNotCached(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.bodies["http://good.example"] = "<p>apple</p>"
	fetcher.fails["http://bad.example"] = true
	cache := memory.NewCache()

	s := New(fetcher, cache, Config{BatchSize: 10, Concurrency: 2}, zap.NewNop())
	failed, err := s.Run(context.Background(), []string{"http://good.example", "http://bad.example"}, vocabularyOf("apple"))
	require.NoError(t, err)
	require.Equal(t, []string{"http://bad.example"}, failed)

	entries, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotContains(t, entries, "http://bad.example")
	require.Contains(t, entries, "http://good.example")
}

func TestScheduler_Run_SkipsCachedURLs(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.bodies["http://new.example"] = "<p>apple</p>"
	cache := memory.NewCache()
	require.NoError(t, cache.MergeUpdate(context.Background(), map[string]essays.WordCounts{
		"http://seen.example": {"banana": 3},
	}))

	s := New(fetcher, cache, Config{BatchSize: 10, Concurrency: 2}, zap.NewNop())
	failed, err := s.Run(context.Background(), []string{"http://seen.example", "http://new.example"}, vocabularyOf("apple", "banana"))
	require.NoError(t, err)
	require.Empty(t, failed)
	require.Equal(t, []string{"http://new.example"}, fetcher.fetched, "cached URL must not be re-fetched")

	entries, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, essays.WordCounts{"banana": 3}, entries["http://seen.example"])
}

func TestScheduler_Run_ReprocessingIsIdempotent(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.bodies["http://a.example"] = "<p>apple apple</p>"
	cache := memory.NewCache()
	vocabulary := vocabularyOf("apple")
	ctx := context.Background()

	s := New(fetcher, cache, Config{BatchSize: 10, Concurrency: 2}, zap.NewNop())
	_, err := s.Run(ctx, []string{"http://a.example"}, vocabulary)
	require.NoError(t, err)
	first, err := cache.Snapshot(ctx)
	require.NoError(t, err)

	_, err = s.Run(ctx, []string{"http://a.example"}, vocabulary)
	require.NoError(t, err)
	second, err := cache.Snapshot(ctx)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestScheduler_Run_HonorsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	urls := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		url := "http://example.test/" + string(rune('a'+i%26)) + string(rune('0'+i/26))
		fetcher.bodies[url] = "<p>apple</p>"
		urls = append(urls, url)
	}
	cache := memory.NewCache()

	s := New(fetcher, cache, Config{BatchSize: 100, Concurrency: 3}, zap.NewNop())
	_, err := s.Run(context.Background(), urls, vocabularyOf("apple"))
	require.NoError(t, err)
	require.LessOrEqual(t, fetcher.maxSeen.Load(), int32(3))
}

func TestScheduler_Run_BatchesCommitIncrementally(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.bodies["http://a.example"] = "<p>apple</p>"
	fetcher.bodies["http://b.example"] = "<p>banana</p>"
	fetcher.bodies["http://c.example"] = "<p>cherry</p>"
	cache := &commitCountingCache{Cache: memory.NewCache()}

	s := New(fetcher, cache, Config{BatchSize: 1, Concurrency: 2}, zap.NewNop())
	_, err := s.Run(context.Background(), []string{"http://a.example", "http://b.example", "http://c.example"},
		vocabularyOf("apple", "banana", "cherry"))
	require.NoError(t, err)
	require.EqualValues(t, 3, cache.commits.Load(), "one commit per batch")
}

func TestScheduler_Run_CanceledContextAborts(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.bodies["http://a.example"] = "<p>apple</p>"
	cache := memory.NewCache()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(fetcher, cache, Config{BatchSize: 10, Concurrency: 2}, zap.NewNop())
	_, err := s.Run(ctx, []string{"http://a.example"}, vocabularyOf("apple"))
	require.ErrorIs(t, err, context.Canceled)
}

type commitCountingCache struct {
	*memory.Cache
	commits atomic.Int32
}

func (c *commitCountingCache) MergeUpdate(ctx context.Context, entries map[string]essays.WordCounts) error {
	c.commits.Add(1)
	return c.Cache.MergeUpdate(ctx, entries)
}
