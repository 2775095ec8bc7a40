package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

// fakeSearcher returns canned keys per query substring and records every JQL
// it sees.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]string // matched by substring of the jql
	errOn   string
}

func (f *fakeSearcher) Search(_ context.Context, jql string, _ int) ([]string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, jql)
	f.mu.Unlock()

	if f.errOn != "" && strings.Contains(jql, f.errOn) {
		return nil, errors.New("search exploded")
	}
	for marker, keys := range f.results {
		if strings.Contains(jql, marker) {
			return keys, nil
		}
	}
	return nil, nil
}

var anchor = time.Date(2025, 7, 22, 12, 0, 0, 0, time.UTC)

func defaultOptions() models.SearchOptions {
	opts := models.DefaultSearchOptions()
	opts.Normalize()
	return opts
}

func TestFindCandidatesUnion(t *testing.T) {
	// Window returns {A,B}, active {B,C}, open-ended {D}: the union is
	// {A,B,C,D}, first-seen order.
	searcher := &fakeSearcher{results: map[string][]string{
		`>= "2025-07-20 12:00"`: {"TECCM-A", "TECCM-B"},
		`"End Date/Time" >=`:    {"TECCM-B", "TECCM-C"},
		`IS EMPTY`:              {"TECCM-D"},
	}}

	keys, err := NewFinder(searcher).FindCandidates(context.Background(), anchor, defaultOptions())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"TECCM-A", "TECCM-B", "TECCM-C", "TECCM-D"}, keys)
	assert.Len(t, keys, 4)
}

func TestFindCandidatesDisabledQueries(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]string{
		`>= "2025-07-20 12:00"`: {"TECCM-A"},
		`"End Date/Time" >=`:    {"TECCM-B"},
		`IS EMPTY`:              {"TECCM-C"},
	}}

	f := false
	opts := defaultOptions()
	opts.IncludeActive = &f
	opts.IncludeNoEnd = &f

	keys, err := NewFinder(searcher).FindCandidates(context.Background(), anchor, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"TECCM-A"}, keys)
	assert.Len(t, searcher.queries, 1)
}

func TestFindCandidatesFailedQueryContributesNothing(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]string{
			`>= "2025-07-20 12:00"`: {"TECCM-A"},
			`IS EMPTY`:              {"TECCM-D"},
		},
		errOn: `"End Date/Time" >=`,
	}

	keys, err := NewFinder(searcher).FindCandidates(context.Background(), anchor, defaultOptions())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"TECCM-A", "TECCM-D"}, keys)
}

func TestFindCandidatesTotalFailureReturnsEmpty(t *testing.T) {
	searcher := &fakeSearcher{errOn: "project"}

	keys, err := NewFinder(searcher).FindCandidates(context.Background(), anchor, defaultOptions())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestWindowQueryBounds(t *testing.T) {
	opts := defaultOptions()
	searcher := &fakeSearcher{}
	_, err := NewFinder(searcher).FindCandidates(context.Background(), anchor, opts)
	require.NoError(t, err)

	// windowBefore=48h, windowAfter=2h around the anchor
	require.NotEmpty(t, searcher.queries)
	var window string
	for _, q := range searcher.queries {
		if strings.Contains(q, ">= \"2025-07-20 12:00\"") {
			window = q
		}
	}
	require.NotEmpty(t, window, "window query not issued: %v", searcher.queries)
	assert.Contains(t, window, `project = TECCM`)
	assert.Contains(t, window, `<= "2025-07-22 14:00"`)
	assert.Contains(t, window, `ORDER BY "Start Date/Time" DESC`)
}

func TestExtraFilterComposedAsConjunct(t *testing.T) {
	opts := defaultOptions()
	opts.ExtraFilter = `assignee = "jdoe"`

	searcher := &fakeSearcher{}
	_, err := NewFinder(searcher).FindCandidates(context.Background(), anchor, opts)
	require.NoError(t, err)

	for _, q := range searcher.queries {
		assert.Contains(t, q, `AND assignee = "jdoe"`)
	}
}

func TestExtraFilterKeepsExplicitAnd(t *testing.T) {
	q := windowQuery("TECCM", anchor.Add(-time.Hour), anchor, "AND labels = hot")
	assert.Contains(t, q, " AND labels = hot ORDER BY")
	assert.NotContains(t, q, "AND AND")
}
