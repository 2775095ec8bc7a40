package job

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/extract"
	"github.com/codeready-toolchain/correlator/pkg/jira"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// memoryStore is an in-memory job.Store for runner tests.
type memoryStore struct {
	mu          sync.Mutex
	statuses    []models.JobStatus
	extractions map[string]*models.ExtractionResult
	rankings    map[string]*models.Ranking
	failReasons map[string]string
	completed   map[string]bool
	done        chan struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		extractions: make(map[string]*models.ExtractionResult),
		rankings:    make(map[string]*models.Ranking),
		failReasons: make(map[string]string),
		completed:   make(map[string]bool),
		done:        make(chan struct{}, 1),
	}
}

func (m *memoryStore) UpdateJobStatus(_ context.Context, _ string, status models.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memoryStore) UpdateJobProgress(_ context.Context, _ string, _, _ int) error {
	return nil
}

func (m *memoryStore) CompleteJob(_ context.Context, jobID string, _, _ int) error {
	m.mu.Lock()
	m.completed[jobID] = true
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *memoryStore) FailJob(_ context.Context, jobID string, status models.JobStatus, reason string) error {
	m.mu.Lock()
	m.statuses = append(m.statuses, status)
	m.failReasons[jobID] = reason
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *memoryStore) SaveExtraction(_ context.Context, jobID string, data *models.ExtractionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractions[jobID] = data
	return nil
}

func (m *memoryStore) SaveRanking(_ context.Context, jobID string, _ config.Weights, ranking *models.Ranking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankings[jobID] = ranking
	return nil
}

func (m *memoryStore) wait(t *testing.T) {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not reach a terminal state")
	}
}

func newTestRunner(store *memoryStore, tracker Tracker) *Runner {
	coordinator := NewCoordinator(extract.New(config.Default()), 2)
	return NewRunner(coordinator, store, NewRegistry(), func(Credentials) Tracker {
		return tracker
	})
}

func TestRunnerCompletesJob(t *testing.T) {
	tracker := newTracker()
	tracker.addIncident("INC-1", "2025-07-22T12:00:00.000+0200")
	tracker.addChange("TECCM-1", "Normal Change")
	tracker.searchKeys = []string{"TECCM-1"}

	store := newMemoryStore()
	runner := newTestRunner(store, tracker)

	opts := defaultOpts()
	runner.Start("job-1", Credentials{Username: "jdoe"}, models.RealSeed("INC-1"), opts, config.DefaultScoring())
	store.wait(t)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.True(t, store.completed["job-1"])
	require.NotNil(t, store.extractions["job-1"])
	require.NotNil(t, store.rankings["job-1"])
	assert.Len(t, store.rankings["job-1"].Candidates, 1)
}

func TestRunnerFailsJobOnAuthError(t *testing.T) {
	tracker := newTracker()
	tracker.myselfErr = &jira.StatusError{Status: http.StatusUnauthorized, Text: "bad credentials"}

	store := newMemoryStore()
	runner := newTestRunner(store, tracker)

	runner.Start("job-1", Credentials{}, models.RealSeed("INC-1"), defaultOpts(), config.DefaultScoring())
	store.wait(t)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.False(t, store.completed["job-1"])
	assert.Contains(t, store.statuses, models.JobFailed)
	assert.Contains(t, store.failReasons["job-1"], "authentication")
	assert.Nil(t, store.rankings["job-1"])
}

func TestRunnerUnregistersWhenDone(t *testing.T) {
	tracker := newTracker()
	tracker.addIncident("INC-1", "2025-07-22T12:00:00.000+0200")

	store := newMemoryStore()
	runner := newTestRunner(store, tracker)

	runner.Start("job-1", Credentials{}, models.RealSeed("INC-1"), defaultOpts(), config.DefaultScoring())
	store.wait(t)

	// terminal write happens before unregister; poll briefly
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := runner.Registry().Get("job-1"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job still registered after completion")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
