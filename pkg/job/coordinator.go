// Package job drives correlation runs: the coordinator owns a single
// discovery → fetch → score pass, the runner executes it in the background
// against storage, and the registry tracks live progress and cancellation.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/discovery"
	"github.com/codeready-toolchain/correlator/pkg/extract"
	"github.com/codeready-toolchain/correlator/pkg/fetch"
	"github.com/codeready-toolchain/correlator/pkg/jira"
	"github.com/codeready-toolchain/correlator/pkg/models"
	"github.com/codeready-toolchain/correlator/pkg/scorer"
)

// Tracker is the tracker-client surface the coordinator needs. *jira.Client
// satisfies it.
type Tracker interface {
	Myself(ctx context.Context) (*jira.Myself, error)
	Issue(ctx context.Context, key string) (*jira.RawIssue, error)
	Comments(ctx context.Context, key string) ([]jira.RawComment, error)
	Search(ctx context.Context, jql string, maxResults int) ([]string, error)
}

// Output is the result of one coordinator run.
type Output struct {
	Extraction *models.ExtractionResult
	Ranking    *models.Ranking
}

// Coordinator glues discovery, the fetch pool, and the scorer into one run.
type Coordinator struct {
	normalizer  *extract.Normalizer
	concurrency int
}

// NewCoordinator creates a coordinator.
func NewCoordinator(normalizer *extract.Normalizer, concurrency int) *Coordinator {
	if concurrency <= 0 {
		concurrency = fetch.DefaultConcurrency
	}
	return &Coordinator{normalizer: normalizer, concurrency: concurrency}
}

// Run executes one correlation pass. It always terminates with either a
// ranking or a single terminal error; per-candidate failures only raise the
// extraction's error counter. Cancellation yields ErrCancelled and no
// ranking.
func (c *Coordinator) Run(
	ctx context.Context,
	tracker Tracker,
	seed models.IncidentSeed,
	opts models.SearchOptions,
	scoring config.Scoring,
	progress models.ProgressFunc,
) (*Output, error) {
	if progress == nil {
		progress = func(int, int, models.Phase) {}
	}

	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}

	log := slog.With("seed", seed.Display())
	progress(0, 0, models.PhaseConnecting)

	if _, err := tracker.Myself(ctx); err != nil {
		if jira.IsAuth(err) {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return nil, fmt.Errorf("connect to tracker: %w", err)
	}

	// Resolve the incident and its anchor instant.
	var incident *models.Ticket
	var anchor time.Time
	if seed.IsVirtual() {
		incident = c.normalizer.VirtualIncident(*seed.Virtual)
		anchor = seed.Virtual.ImpactTime.UTC()
	} else {
		var err error
		incident, err = c.fetchIncident(ctx, tracker, seed.Key)
		if err != nil {
			return nil, err
		}
		if incident.Times.CreatedAt == nil {
			return nil, fmt.Errorf("incident %s has no creation time", seed.Key)
		}
		anchor = *incident.Times.CreatedAt
	}
	log.Info("Incident resolved", "anchor", anchor)

	// Discovery: the candidate key set. Per-query failures already degraded
	// to empty contributions inside the finder.
	finder := discovery.NewFinder(tracker)
	keys, err := finder.FindCandidates(ctx, anchor, opts)
	if err != nil {
		return nil, fmt.Errorf("candidate discovery: %w", err)
	}

	// Progress totals: a real seed's incident fetch counts as one unit.
	offset := 0
	if !seed.IsVirtual() {
		offset = 1
	}
	total := offset + len(keys)
	progress(offset, total, models.PhaseExtracting)

	pool := fetch.NewPool(tracker, c.normalizer, c.concurrency)
	fetched := pool.Run(ctx, keys, func(done, t int) {
		progress(offset+done, total, models.PhaseExtracting)
	})
	if fetched.Cancelled {
		return nil, ErrCancelled
	}

	tickets := append([]*models.Ticket{incident}, fetched.Tickets...)
	extraction := &models.ExtractionResult{
		Info: models.ExtractionInfo{
			Version:       models.ExtractionVersion,
			ExtractedAt:   time.Now().UTC(),
			TotalTickets:  len(tickets),
			SourceMode:    sourceMode(seed),
			IncidentKey:   seed.Key,
			Window:        opts.WindowBefore,
			Errors:        fetched.Errors(),
			SearchOptions: opts,
		},
		Tickets: tickets,
	}

	progress(total, total, models.PhaseScoring)
	candidates := extraction.Candidates(opts.IncludeExternalMaintenance)
	ranking := scorer.Rank(incident, candidates, scoring)

	log.Info("Run complete",
		"candidates", len(candidates),
		"ranked", len(ranking.Candidates),
		"errors", fetched.Errors())
	progress(total, total, models.PhaseCompleted)

	return &Output{Extraction: extraction, Ranking: ranking}, nil
}

// fetchIncident fetches and normalizes the seed incident directly, outside
// the pool. A missing key fails the whole job.
func (c *Coordinator) fetchIncident(ctx context.Context, tracker Tracker, key string) (*models.Ticket, error) {
	issue, err := tracker.Issue(ctx, key)
	if err != nil {
		if jira.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrIncidentNotFound, key)
		}
		if jira.IsAuth(err) {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return nil, fmt.Errorf("fetch incident %s: %w", key, err)
	}
	comments, err := tracker.Comments(ctx, key)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrCancelled
		}
		// Comments enrich extraction but their loss is survivable.
		slog.Warn("Failed to fetch incident comments", "key", key, "error", err)
		comments = nil
	}

	ticket := c.normalizer.Normalize(issue, comments)
	if ticket.Kind != models.KindIncident {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotIncident, key, ticket.Kind)
	}
	return ticket, nil
}

func sourceMode(seed models.IncidentSeed) string {
	if seed.IsVirtual() {
		return "manual"
	}
	return "inc+window"
}
