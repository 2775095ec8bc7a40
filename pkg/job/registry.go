package job

import (
	"context"
	"sync"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

// Progress is a point-in-time snapshot of a running job.
type Progress struct {
	Done  int          `json:"done"`
	Total int          `json:"total"`
	Phase models.Phase `json:"phase"`
}

// active tracks one in-flight job: its live progress and cancel function.
type active struct {
	mu       sync.Mutex
	progress Progress
	cancel   context.CancelFunc
}

// Registry tracks in-flight jobs for progress polling and cancellation.
// Jobs share nothing else in memory; two concurrent jobs only meet here.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*active
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*active)}
}

// Register adds a job with its cancel function and returns an updater the
// runner feeds progress into.
func (r *Registry) Register(jobID string, cancel context.CancelFunc) func(Progress) {
	a := &active{cancel: cancel}
	r.mu.Lock()
	r.jobs[jobID] = a
	r.mu.Unlock()

	return func(p Progress) {
		a.mu.Lock()
		// Non-increasing done values within a phase are no-ops.
		if p.Phase == a.progress.Phase && p.Done < a.progress.Done {
			a.mu.Unlock()
			return
		}
		a.progress = p
		a.mu.Unlock()
	}
}

// Unregister removes a finished job.
func (r *Registry) Unregister(jobID string) {
	r.mu.Lock()
	delete(r.jobs, jobID)
	r.mu.Unlock()
}

// Get returns the live progress of a job, if it is still running.
func (r *Registry) Get(jobID string) (Progress, bool) {
	r.mu.RLock()
	a, ok := r.jobs[jobID]
	r.mu.RUnlock()
	if !ok {
		return Progress{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress, true
}

// Cancel triggers context cancellation for a running job. Returns false if
// the job is not active.
func (r *Registry) Cancel(jobID string) bool {
	r.mu.RLock()
	a, ok := r.jobs[jobID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	a.cancel()
	return true
}
