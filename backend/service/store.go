package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/model"
	"github.com/AnTengye/contractgen/backend/pkg/metrics"
)

// JobStore is an in-memory store for generation jobs. Each job owns
// outputs/<job-id>/, which is removed together with the record.
type JobStore struct {
	jobs      map[string]*model.Job
	mu        sync.RWMutex
	maxJobs   int // Maximum jobs to keep, 0 = unlimited
	retention time.Duration
	outputDir string
}

// NewJobStore creates a job store writing job outputs under outputDir
func NewJobStore(cfg *config.StoreConfig, outputDir string) *JobStore {
	maxJobs := cfg.MaxJobs
	if maxJobs < 0 {
		maxJobs = 0
	}
	return &JobStore{
		jobs:      make(map[string]*model.Job),
		maxJobs:   maxJobs,
		retention: time.Duration(cfg.RetentionHours) * time.Hour,
		outputDir: outputDir,
	}
}

// JobDir is the directory holding a job's archive.
func (s *JobStore) JobDir(id string) string {
	return filepath.Join(s.outputDir, id)
}

// Save stores a copy of job.
func (s *JobStore) Save(job *model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job.Clone()

	// Cleanup if exceeds max
	s.cleanupIfNeeded()
}

// Get returns a copy of the job, or nil.
func (s *JobStore) Get(id string) *model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if j, ok := s.jobs[id]; ok {
		return j.Clone()
	}
	return nil
}

// List returns all jobs, newest first.
func (s *JobStore) List() []*model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, j.Clone())
	}
	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})
	return result
}

// Delete removes the job record and its output directory. A job that has
// not finished is kept and ErrJobRunning is returned.
func (s *JobStore) Delete(id string) error {
	s.mu.Lock()
	j, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if !j.Finished() {
		s.mu.Unlock()
		return ErrJobRunning
	}
	delete(s.jobs, id)
	s.mu.Unlock()

	return os.RemoveAll(s.JobDir(id))
}

// Sweep removes finished jobs older than the retention period and returns how many were removed.
func (s *JobStore) Sweep(now time.Time) int {
	if s.retention <= 0 {
		return 0
	}

	s.mu.Lock()
	var expired []string
	for id, j := range s.jobs {
		if !j.Finished() {
			continue
		}
		done := j.CreatedAt
		if j.CompletedAt != nil {
			done = *j.CompletedAt
		}
		if now.Sub(done) > s.retention {
			expired = append(expired, id)
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		if err := os.RemoveAll(s.JobDir(id)); err != nil {
			slog.Warn("failed to remove job output", "job_id", id, "error", err)
		}
		slog.Info("swept expired job", "job_id", id)
	}
	metrics.JobsSwept.Add(float64(len(expired)))
	return len(expired)
}

// cleanupIfNeeded removes the oldest finished jobs if store exceeds maxJobs
// Must be called with lock held
func (s *JobStore) cleanupIfNeeded() {
	if s.maxJobs <= 0 {
		return // Unlimited
	}

	if len(s.jobs) <= s.maxJobs {
		return
	}

	// Sort finished jobs by creation time
	finished := make([]*model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.Finished() {
			finished = append(finished, j)
		}
	}
	sort.Slice(finished, func(i, k int) bool {
		return finished[i].CreatedAt.Before(finished[k].CreatedAt)
	})

	// Remove oldest jobs
	removeCount := len(s.jobs) - s.maxJobs
	for i := 0; i < removeCount && i < len(finished); i++ {
		slog.Info("auto-cleaning old job",
			"job_id", finished[i].ID,
			"created_at", finished[i].CreatedAt,
		)
		delete(s.jobs, finished[i].ID)
		if err := os.RemoveAll(s.JobDir(finished[i].ID)); err != nil {
			slog.Warn("failed to remove job output", "job_id", finished[i].ID, "error", err)
		}
	}
}

// Count returns the number of jobs in the store
func (s *JobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
