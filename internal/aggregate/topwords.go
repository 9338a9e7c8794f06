// Package aggregate computes top-K word rankings over cached per-URL counts.
package aggregate

import (
	"sort"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
)

// DefaultTopWords is used when a caller supplies a non-positive k.
const DefaultTopWords = 10

// TopWords sums per-URL counts across the cache entries named by urlScope and
// returns the k highest-count words. Ties are broken by word ascending so the
// ranking is deterministic. k <= 0 falls back to DefaultTopWords.
func TopWords(entries map[string]essays.WordCounts, urlScope []string, k int) essays.AggregationResult {
	if k <= 0 {
		k = DefaultTopWords
	}

	scope := make(map[string]struct{}, len(urlScope))
	for _, url := range urlScope {
		scope[url] = struct{}{}
	}

	totals := make(essays.WordCounts)
	for url, counts := range entries {
		if _, ok := scope[url]; !ok {
			continue
		}
		totals.Merge(counts)
	}

	ranked := make(essays.AggregationResult, 0, len(totals))
	for word, count := range totals {
		ranked = append(ranked, essays.WordCount{Word: word, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
