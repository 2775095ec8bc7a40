package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/extract"
	"github.com/codeready-toolchain/correlator/pkg/jira"
)

// fakeTracker serves canned issues and counts calls. failures maps a key to
// the number of leading attempts that should fail with failErr.
type fakeTracker struct {
	mu         sync.Mutex
	issueCalls map[string]int
	inFlight   int32
	maxSeen    int32
	failures   map[string]int
	failErr    error
	delay      time.Duration
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{issueCalls: make(map[string]int), failures: make(map[string]int)}
}

func (f *fakeTracker) Issue(ctx context.Context, key string) (*jira.RawIssue, error) {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if current <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, current) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	f.issueCalls[key]++
	calls := f.issueCalls[key]
	remaining := f.failures[key]
	f.mu.Unlock()

	if calls <= remaining {
		return nil, f.failErr
	}
	return &jira.RawIssue{
		Key: key,
		Fields: map[string]any{
			"issuetype": map[string]any{"name": "Change"},
			"summary":   "change " + key,
		},
	}, nil
}

func (f *fakeTracker) Comments(context.Context, string) ([]jira.RawComment, error) {
	return nil, nil
}

func (f *fakeTracker) totalIssueCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.issueCalls {
		total += n
	}
	return total
}

func keysN(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("TECCM-%d", i+1)
	}
	return keys
}

func newTestPool(tracker Tracker, concurrency int) *Pool {
	return NewPool(tracker, extract.New(config.Default()), concurrency)
}

func TestPoolFetchesEveryKeyOnce(t *testing.T) {
	tracker := newFakeTracker()
	pool := newTestPool(tracker, 4)

	var mu sync.Mutex
	var updates []int
	result := pool.Run(context.Background(), keysN(10), func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 10, total)
		updates = append(updates, done)
	})

	assert.Len(t, result.Tickets, 10)
	assert.Zero(t, result.Errors())
	assert.False(t, result.Cancelled)

	// one tracker fetch per key, no retries
	assert.Equal(t, 10, tracker.totalIssueCalls())

	// progress reached done == total and was strictly increasing
	require.NotEmpty(t, updates)
	assert.Equal(t, 10, updates[len(updates)-1])
	for i := 1; i < len(updates); i++ {
		assert.Greater(t, updates[i], updates[i-1])
	}
}

func TestPoolConcurrencyClampedToKeyCount(t *testing.T) {
	tracker := newFakeTracker()
	tracker.delay = 20 * time.Millisecond
	pool := newTestPool(tracker, 8)

	result := pool.Run(context.Background(), keysN(3), nil)

	assert.Len(t, result.Tickets, 3)
	assert.LessOrEqual(t, atomic.LoadInt32(&tracker.maxSeen), int32(3))
}

func TestPoolBoundsParallelism(t *testing.T) {
	tracker := newFakeTracker()
	tracker.delay = 20 * time.Millisecond
	pool := newTestPool(tracker, 2)

	result := pool.Run(context.Background(), keysN(8), nil)

	assert.Len(t, result.Tickets, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&tracker.maxSeen), int32(2))
}

func TestPoolRetriesRateLimitThenSucceeds(t *testing.T) {
	old := retryBase
	retryBase = 10 * time.Millisecond
	defer func() { retryBase = old }()

	tracker := newFakeTracker()
	tracker.failures["TECCM-1"] = 1
	tracker.failErr = &jira.StatusError{Status: http.StatusTooManyRequests, Text: "too many requests"}
	pool := newTestPool(tracker, 1)

	result := pool.Run(context.Background(), []string{"TECCM-1"}, nil)

	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "TECCM-1", result.Tickets[0].Key)
	assert.Zero(t, result.Errors())
	assert.Equal(t, 2, tracker.totalIssueCalls()) // first attempt 429, second ok
}

func TestPoolRecordsDefinitiveFailureAfterRetries(t *testing.T) {
	old := retryBase
	retryBase = time.Millisecond
	defer func() { retryBase = old }()

	tracker := newFakeTracker()
	tracker.failures["TECCM-1"] = maxAttempts
	tracker.failErr = &jira.StatusError{Status: http.StatusInternalServerError, Text: "boom"}
	pool := newTestPool(tracker, 1)

	var lastDone int
	result := pool.Run(context.Background(), []string{"TECCM-1"}, func(done, total int) {
		lastDone = done
	})

	assert.Empty(t, result.Tickets)
	assert.Equal(t, 1, result.Errors())
	assert.Equal(t, maxAttempts, tracker.totalIssueCalls())
	assert.Equal(t, 1, lastDone) // failed keys still advance progress
}

func TestPoolNotFoundFailsWithoutRetry(t *testing.T) {
	tracker := newFakeTracker()
	tracker.failures["TECCM-1"] = maxAttempts
	tracker.failErr = &jira.StatusError{Status: http.StatusNotFound, Text: "gone"}
	pool := newTestPool(tracker, 1)

	result := pool.Run(context.Background(), []string{"TECCM-1"}, nil)

	assert.Equal(t, 1, result.Errors())
	assert.Equal(t, 1, tracker.totalIssueCalls())
}

func TestPoolCancellationReturnsPartialResults(t *testing.T) {
	tracker := newFakeTracker()
	tracker.delay = 30 * time.Millisecond
	pool := newTestPool(tracker, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(45 * time.Millisecond)
		cancel()
	}()

	result := pool.Run(ctx, keysN(20), nil)

	assert.True(t, result.Cancelled)
	assert.Less(t, len(result.Tickets), 20)
}

func TestPoolEmptyKeySet(t *testing.T) {
	pool := newTestPool(newFakeTracker(), 4)
	result := pool.Run(context.Background(), nil, nil)
	assert.Empty(t, result.Tickets)
	assert.Zero(t, result.Errors())
}
