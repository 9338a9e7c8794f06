// Package essays defines core types shared across subsystems.
package essays

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// JobStatus represents the lifecycle state of a processing job.
type JobStatus string

// Job status values persisted in the registry. Processed and Failed are terminal.
const (
	JobStatusProcessing JobStatus = "Processing"
	JobStatusProcessed  JobStatus = "Processed"
	JobStatusFailed     JobStatus = "Failed"
)

// Job is the metadata persisted for each submitted URL batch.
type Job struct {
	ID            string     `json:"file_id"`
	FileName      string     `json:"file_name"`
	Status        JobStatus  `json:"status"`
	SubmittedURLs []string   `json:"http_urls"`
	FailedURLs    []string   `json:"failed_urls"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// LookupState classifies the outcome of a registry lookup.
type LookupState int

// Lookup outcomes surfaced to the query path.
const (
	LookupNotFound LookupState = iota
	LookupIncomplete
	LookupComplete
)

// WordCounts maps a word to its occurrence count for one URL's filtered text.
type WordCounts map[string]uint64

// Merge adds the counts from other into c.
func (c WordCounts) Merge(other WordCounts) {
	for word, n := range other {
		c[word] += n
	}
}

// Clone returns an independent copy of c.
func (c WordCounts) Clone() WordCounts {
	out := make(WordCounts, len(c))
	for word, n := range c {
		out[word] = n
	}
	return out
}

// WordCount pairs a word with its aggregated count.
type WordCount struct {
	Word  string
	Count uint64
}

// AggregationResult is an ordered word-frequency ranking, highest count first.
type AggregationResult []WordCount

// MarshalJSON renders the ranking as a JSON object whose keys appear in rank
// order. Callers rely on the ordering, so the object is built by hand rather
// than through a Go map.
func (r AggregationResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, wc := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(wc.Word)
		if err != nil {
			return nil, fmt.Errorf("marshal word %q: %w", wc.Word, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatUint(wc.Count, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Vocabulary is an immutable set of normalized words used to filter fetched text.
type Vocabulary map[string]struct{}

// Contains reports whether word is a member of the vocabulary.
func (v Vocabulary) Contains(word string) bool {
	_, ok := v[word]
	return ok
}
