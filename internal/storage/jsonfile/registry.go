package jsonfile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
)

// record is the persisted per-job document entry, keyed by job id.
type record struct {
	FileName    string           `json:"file_name"`
	Status      essays.JobStatus `json:"status"`
	HTTPURLs    []string         `json:"http_urls"`
	FailedURLs  []string         `json:"failed_urls"`
	SubmittedAt time.Time        `json:"submitted_at"`
	FinishedAt  *time.Time       `json:"finished_at,omitempty"`
}

// Registry is the durable job-id -> job-record document.
type Registry struct {
	mu   sync.Mutex
	path string
}

// NewRegistry constructs a Registry persisted at path.
func NewRegistry(path string) (*Registry, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	return &Registry{path: path}, nil
}

// Create persists a new job record. The job id must not already exist.
func (r *Registry) Create(_ context.Context, job essays.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make(map[string]record)
	if err := readDocument(r.path, &records); err != nil {
		return err
	}
	if _, exists := records[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	records[job.ID] = record{
		FileName:    job.FileName,
		Status:      job.Status,
		HTTPURLs:    job.SubmittedURLs,
		FailedURLs:  append([]string{}, job.FailedURLs...),
		SubmittedAt: job.SubmittedAt,
	}
	return writeDocument(r.path, records)
}

// Finalize records the terminal status and failed URLs for a job.
func (r *Registry) Finalize(_ context.Context, jobID string, status essays.JobStatus, failedURLs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make(map[string]record)
	if err := readDocument(r.path, &records); err != nil {
		return err
	}
	rec, ok := records[jobID]
	if !ok {
		return fmt.Errorf("job %s not found", jobID)
	}
	rec.Status = status
	rec.FailedURLs = append([]string{}, failedURLs...)
	now := time.Now().UTC()
	rec.FinishedAt = &now
	records[jobID] = rec
	return writeDocument(r.path, records)
}

// Lookup classifies the job as not found, still processing, or complete.
func (r *Registry) Lookup(_ context.Context, jobID string) (essays.Job, essays.LookupState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make(map[string]record)
	if err := readDocument(r.path, &records); err != nil {
		return essays.Job{}, essays.LookupNotFound, err
	}
	rec, ok := records[jobID]
	if !ok {
		return essays.Job{}, essays.LookupNotFound, nil
	}
	job := essays.Job{
		ID:            jobID,
		FileName:      rec.FileName,
		Status:        rec.Status,
		SubmittedURLs: rec.HTTPURLs,
		FailedURLs:    rec.FailedURLs,
		SubmittedAt:   rec.SubmittedAt,
		FinishedAt:    rec.FinishedAt,
	}
	if rec.Status == essays.JobStatusProcessing {
		return job, essays.LookupIncomplete, nil
	}
	return job, essays.LookupComplete, nil
}
