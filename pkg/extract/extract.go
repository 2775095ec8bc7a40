// Package extract normalizes raw tracker issues into Tickets. Every function
// here is pure and deterministic: the only inputs are the raw issue, its
// comments, and the tables injected at construction. No I/O happens in this
// package, and it is the only place that touches raw tracker field shapes.
package extract

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/jira"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// Normalizer turns raw tracker issues into normalized Tickets. It is
// immutable after construction and safe for concurrent use.
type Normalizer struct {
	fields        config.CustomFields
	hostBlacklist map[string]struct{}
	ignoreTags    map[string]struct{}
	synonyms      map[string][]string
	techMatchers  []techMatcher

	// now is the extraction timestamp source; replaced in tests to make
	// full-ticket comparisons byte-stable.
	now func() time.Time
}

// New builds a normalizer from the configured tables and field mapping.
func New(cfg *config.Config) *Normalizer {
	return &Normalizer{
		fields:        cfg.CustomFields,
		hostBlacklist: toSet(cfg.Tables.HostBlacklist),
		ignoreTags:    toSet(cfg.Tables.IgnoreTags),
		synonyms:      lowerSynonyms(cfg.Scoring.ServiceSynonyms),
		techMatchers:  compileTechMatchers(cfg.Tables.Technologies),
		now:           time.Now,
	}
}

// Normalize produces the canonical Ticket for a raw issue and its comments.
func (n *Normalizer) Normalize(issue *jira.RawIssue, comments []jira.RawComment) *models.Ticket {
	var warnings []string
	warn := func(msg string) { warnings = append(warnings, msg) }

	kind := models.KindFromIssueType(nestedName(issue.Fields, "issuetype"))
	summary, _ := issue.Fields["summary"].(string)
	description, _ := issue.Fields["description"].(string)

	// Text pool: summary + description + all comment bodies, lower-cased for
	// pattern matching.
	var bodies []string
	for _, c := range comments {
		bodies = append(bodies, c.Body)
	}
	fullText := summary + " " + description + " " + strings.Join(bodies, " ")
	textLower := strings.ToLower(fullText)

	timeline := extractTimeline(description)
	liveIntervals := extractLiveIntervals(comments, warn)

	plannedStart := fieldTime(issue.Fields, n.fields.StartDateTime)
	plannedEnd := fieldTime(issue.Fields, n.fields.EndDateTime)
	if plannedStart != nil && plannedEnd != nil && plannedEnd.Before(*plannedStart) {
		warn(fmt.Sprintf("planned window reversed (%s > %s), dropped",
			plannedStart.Format(time.RFC3339), plannedEnd.Format(time.RFC3339)))
		plannedStart, plannedEnd = nil, nil
	}

	var firstImpact *time.Time
	if len(timeline) > 0 {
		ts := timeline[0].Timestamp
		firstImpact = &ts
	}

	if kind == models.KindChange && len(liveIntervals) == 0 {
		warn("no live intervals found in comments, using planned window")
	}

	businessUnits := fieldStrings(issue.Fields, n.fields.AffectedBusinessUnits)

	owner := fieldString(issue.Fields, n.fields.ChangeOwner)
	if owner == "" {
		owner = fieldString(issue.Fields, n.fields.IncidentOwner)
	}

	return &models.Ticket{
		Key:     issue.Key,
		Kind:    kind,
		Summary: summary,
		Times: models.Times{
			CreatedAt:       fieldTime(issue.Fields, "created"),
			UpdatedAt:       fieldTime(issue.Fields, "updated"),
			ResolvedAt:      fieldTime(issue.Fields, "resolutiondate"),
			FirstImpactTime: firstImpact,
			PlannedStart:    plannedStart,
			PlannedEnd:      plannedEnd,
			LiveIntervals:   liveIntervals,
		},
		Entities: models.Entities{
			Services:     n.extractServices(fullText, businessUnits),
			Hosts:        n.extractHosts(textLower),
			Technologies: n.extractTechnologies(textLower),
		},
		Organization: models.Organization{
			Team:           fieldString(issue.Fields, n.fields.ResponsibleEntity),
			Assignee:       nestedName(issue.Fields, "assignee"),
			Reporter:       nestedName(issue.Fields, "reporter"),
			Owner:          owner,
			PeopleInvolved: n.extractPeople(issue, comments, timeline),
		},
		Classification: models.Classification{
			Cause:          fieldString(issue.Fields, n.fields.Cause),
			Effect:         fieldString(issue.Fields, n.fields.Effect),
			Resolution:     nestedName(issue.Fields, "resolution"),
			ChangeCategory: fieldString(issue.Fields, n.fields.ChangeCategory),
			CustomerImpact: fieldString(issue.Fields, n.fields.CustomerImpact),
			Environments:   fieldStrings(issue.Fields, n.fields.Environments),
		},
		Extraction: models.Extraction{
			Version:     models.ExtractionVersion,
			ExtractedAt: n.now().UTC(),
			Source:      "deterministic",
			Warnings:    warnings,
			Timeline:    len(timeline),
			Comments:    len(comments),
		},
	}
}

// VirtualIncident synthesizes an incident Ticket from user-supplied data,
// without any tracker lookup. The impact time doubles as creation time.
func (n *Normalizer) VirtualIncident(v models.VirtualIncident) *models.Ticket {
	impact := v.ImpactTime.UTC()
	summary := v.Name
	if summary == "" {
		summary = "Manual analysis"
	}
	return &models.Ticket{
		Key:     "VIRTUAL",
		Kind:    models.KindIncident,
		Summary: summary,
		Times: models.Times{
			CreatedAt:       &impact,
			FirstImpactTime: &impact,
		},
		Entities: models.Entities{
			Services:     sortedSet(lowerAll(v.Services)),
			Hosts:        sortedSet(lowerAll(v.Hosts)),
			Technologies: sortedSet(lowerAll(v.Technologies)),
		},
		Organization: models.Organization{
			Team: v.Team,
		},
		Extraction: models.Extraction{
			Version:     models.ExtractionVersion,
			ExtractedAt: n.now().UTC(),
			Source:      "manual",
		},
	}
}

// sortedSet dedupes, drops empty strings, and sorts. Case folding is the
// caller's responsibility.
func sortedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

// lowerSynonyms lower-cases the synonym table once so text matching never
// re-folds case per ticket.
func lowerSynonyms(synonyms map[string][]string) map[string][]string {
	out := make(map[string][]string, len(synonyms))
	for canonical, aliases := range synonyms {
		lowered := make([]string, 0, len(aliases))
		for _, a := range aliases {
			lowered = append(lowered, strings.ToLower(a))
		}
		out[strings.ToLower(canonical)] = lowered
	}
	return out
}
