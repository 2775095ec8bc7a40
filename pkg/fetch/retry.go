package fetch

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxAttempts bounds tracker fetches per key.
const maxAttempts = 3

// retryBase is the backoff unit: rate-limited errors wait
// retryBase * 2^(attempt-1), everything else retryBase * attempt.
// Variable so tests can shorten the schedule.
var retryBase = 2 * time.Second

// retryPolicy is a backoff.BackOff implementing the per-key retry schedule.
// The worker records the class of the last error before the next delay is
// computed: rate-limit errors back off exponentially, transient errors
// linearly. After maxAttempts the policy stops.
type retryPolicy struct {
	attempt     int
	rateLimited bool
}

func newRetryPolicy() *retryPolicy {
	return &retryPolicy{}
}

// NextBackOff returns the delay before the next attempt, or backoff.Stop
// once the attempt budget is spent.
func (p *retryPolicy) NextBackOff() time.Duration {
	p.attempt++
	if p.attempt >= maxAttempts {
		return backoff.Stop
	}
	if p.rateLimited {
		return retryBase * time.Duration(1<<(p.attempt-1))
	}
	return retryBase * time.Duration(p.attempt)
}

// Reset restarts the schedule for a new key.
func (p *retryPolicy) Reset() {
	p.attempt = 0
	p.rateLimited = false
}
