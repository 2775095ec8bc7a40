// Package discovery finds candidate change tickets for an incident by
// issuing up to three tracker queries and unioning their results.
package discovery

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

// Searcher is the subset of the tracker client used by discovery.
type Searcher interface {
	Search(ctx context.Context, jql string, maxResults int) ([]string, error)
}

// Finder runs the three-pass candidate discovery.
type Finder struct {
	client Searcher
}

// NewFinder creates a Finder over a tracker search client.
func NewFinder(client Searcher) *Finder {
	return &Finder{client: client}
}

// FindCandidates returns the deduplicated candidate key set for an incident
// anchored at anchor. The three passes are:
//
//  1. changes whose start time falls in [anchor-windowBefore, anchor+windowAfter]
//  2. changes active at anchor (start <= anchor <= end), if enabled
//  3. open-ended changes (start <= anchor, no end time), if enabled
//
// The queries run concurrently. A query that errors is logged and contributes
// nothing; the union of the others is still returned. Result order is
// first-seen across passes 1, 2, 3 and only meaningful for logging.
func (f *Finder) FindCandidates(ctx context.Context, anchor time.Time, opts models.SearchOptions) ([]string, error) {
	before, after := opts.Windows()

	queries := []struct {
		name    string
		jql     string
		enabled bool
	}{
		{"window", windowQuery(opts.Project, anchor.Add(-before), anchor.Add(after), opts.ExtraFilter), true},
		{"active", activeQuery(opts.Project, anchor, opts.ExtraFilter), opts.Active()},
		{"no_end", openEndedQuery(opts.Project, anchor, opts.ExtraFilter), opts.NoEnd()},
	}

	results := make([][]string, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		if !q.enabled {
			continue
		}
		g.Go(func() error {
			keys, err := f.client.Search(gctx, q.jql, opts.MaxResults)
			if err != nil {
				// Per-query failures degrade coverage, not the run.
				slog.Warn("Candidate query failed", "query", q.name, "error", err)
				return nil
			}
			slog.Info("Candidate query complete", "query", q.name, "found", len(keys))
			results[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var union []string
	for _, keys := range results {
		for _, key := range keys {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			union = append(union, key)
		}
	}

	slog.Info("Candidate discovery complete", "total", len(union))
	return union, nil
}
