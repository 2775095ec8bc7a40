// Package fetch is the bounded worker pool that fetches and normalizes
// candidate tickets in parallel, with per-key retry and progress reporting.
package fetch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"github.com/codeready-toolchain/correlator/pkg/extract"
	"github.com/codeready-toolchain/correlator/pkg/jira"
	"github.com/codeready-toolchain/correlator/pkg/metrics"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// DefaultConcurrency is the worker count when none is configured.
const DefaultConcurrency = 8

// Tracker is the subset of the tracker client used by the pool.
type Tracker interface {
	Issue(ctx context.Context, key string) (*jira.RawIssue, error)
	Comments(ctx context.Context, key string) ([]jira.RawComment, error)
}

// ProgressFunc receives (done, total) after every key completes, whether it
// succeeded or failed definitively. It is called under the pool's counter
// lock, so done values arrive strictly increasing.
type ProgressFunc func(done, total int)

// Result is the outcome of one pool run.
type Result struct {
	// Tickets are the normalized tickets, in completion order.
	Tickets []*models.Ticket
	// Failed maps each definitively-failed key to its last error.
	Failed map[string]error
	// Cancelled reports whether the run stopped early on context
	// cancellation; Tickets then holds the work finished so far.
	Cancelled bool
}

// Errors returns the number of definitively-failed keys.
func (r *Result) Errors() int {
	return len(r.Failed)
}

// Pool fetches and normalizes tickets with bounded parallelism. A Pool is
// stateless across runs and safe to reuse.
type Pool struct {
	tracker     Tracker
	normalizer  *extract.Normalizer
	concurrency int
}

// NewPool creates a pool. concurrency <= 0 selects DefaultConcurrency.
func NewPool(tracker Tracker, normalizer *extract.Normalizer, concurrency int) *Pool {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pool{tracker: tracker, normalizer: normalizer, concurrency: concurrency}
}

// Run fetches every key with at most min(concurrency, len(keys)) workers.
// Each key is fetched and normalized at most once per run. Cancellation is
// honored between keys and interrupts pending retry sleeps; a cancelled run
// returns the tickets produced so far with Cancelled set.
func (p *Pool) Run(ctx context.Context, keys []string, progress ProgressFunc) *Result {
	total := len(keys)
	result := &Result{Failed: make(map[string]error)}
	if total == 0 {
		return result
	}

	workers := p.concurrency
	if total < workers {
		workers = total
	}

	slog.Info("Fetching tickets", "total", total, "workers", workers)

	work := make(chan string)
	var mu sync.Mutex
	done := 0

	complete := func(ticket *models.Ticket, key string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if ticket != nil {
			result.Tickets = append(result.Tickets, ticket)
		}
		if err != nil {
			result.Failed[key] = err
		}
		done++
		if progress != nil {
			progress(done, total)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range work {
				ticket, err := p.fetchOne(ctx, key)
				if ctx.Err() != nil && ticket == nil {
					// Cancelled mid-fetch; the key is neither done nor failed.
					return
				}
				complete(ticket, key, err)
			}
		}()
	}

feed:
	for _, key := range keys {
		select {
		case work <- key:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	if ctx.Err() != nil {
		result.Cancelled = true
		slog.Info("Fetch cancelled", "completed", done, "total", total)
		return result
	}

	if errs := result.Errors(); errs > 0 {
		slog.Warn("Fetch completed with errors", "errors", errs, "total", total)
	}
	return result
}

// fetchOne fetches and normalizes a single key, retrying per the policy.
// Auth and not-found errors are permanent; rate limits back off
// exponentially, other failures linearly.
func (p *Pool) fetchOne(ctx context.Context, key string) (*models.Ticket, error) {
	log := slog.With("key", key)
	policy := newRetryPolicy()

	var ticket *models.Ticket
	attempt := 0
	operation := func() error {
		attempt++
		issue, err := p.tracker.Issue(ctx, key)
		if err == nil {
			var comments []jira.RawComment
			comments, err = p.tracker.Comments(ctx, key)
			if err == nil {
				ticket = p.normalizer.Normalize(issue, comments)
				return nil
			}
		}

		if !jira.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		metrics.FetchRetry()
		policy.rateLimited = jira.IsRateLimit(err)
		if policy.rateLimited {
			log.Warn("Rate limited, backing off", "attempt", attempt)
		} else {
			log.Warn("Fetch failed, retrying", "attempt", attempt, "error", err)
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(policy, ctx))
	if err != nil {
		log.Error("Fetch failed definitively", "attempts", attempt, "error", err)
		return nil, err
	}
	return ticket, nil
}
