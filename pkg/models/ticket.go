// Package models contains the normalized ticket model, request/response
// models, and shared domain types.
package models

import (
	"strings"
	"time"
)

// ExtractionVersion tags every normalized ticket with the extractor revision
// that produced it. Bump when extraction rules change in a way that makes
// stored tickets incomparable.
const ExtractionVersion = "1.1"

// Kind classifies a ticket by its tracker issue type.
type Kind string

// Known ticket kinds. Any other issue type is carried as its upper-cased name.
const (
	KindIncident            Kind = "INCIDENT"
	KindChange              Kind = "CHANGE"
	KindExternalMaintenance Kind = "EXTERNAL MAINTENANCE"
)

// KindFromIssueType derives the ticket kind from a raw issue-type name.
// Matching is case-insensitive substring: "Major Incident" is an incident,
// "Normal Change" is a change. Everything else keeps its upper-cased name,
// which makes "External Maintenance" come out as KindExternalMaintenance
// without a special case.
func KindFromIssueType(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "incident"):
		return KindIncident
	case strings.Contains(lower, "change"):
		return KindChange
	default:
		return Kind(strings.ToUpper(name))
	}
}

// Interval is a closed time range with both endpoints present.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the interval (inclusive).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// TimelineEntry is one line of an incident's description timeline
// ("20250722 12:20 - jdoe: impact detected").
type TimelineEntry struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
}

// Times groups every instant known about a ticket. All values are UTC.
type Times struct {
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	FirstImpactTime *time.Time `json:"first_impact_time,omitempty"`
	PlannedStart    *time.Time `json:"planned_start,omitempty"`
	PlannedEnd      *time.Time `json:"planned_end,omitempty"`

	// LiveIntervals are actual execution windows parsed from comments,
	// in document order. Entries satisfy start <= end; they may overlap.
	LiveIntervals []Interval `json:"live_intervals"`
}

// Entities are the infrastructure signals extracted from a ticket's text.
// Each slice is sorted, lower-cased, and free of duplicates and empty strings.
type Entities struct {
	Services     []string `json:"services"`
	Hosts        []string `json:"hosts"`
	Technologies []string `json:"technologies"`
}

// Organization captures who is attached to a ticket.
type Organization struct {
	Team     string `json:"team,omitempty"`
	Assignee string `json:"assignee,omitempty"`
	Reporter string `json:"reporter,omitempty"`
	Owner    string `json:"owner,omitempty"`

	// PeopleInvolved is the sorted, lower-cased union of assignee, reporter,
	// comment authors (whitespace stripped), timeline users, and escalation
	// list members.
	PeopleInvolved []string `json:"people_involved"`
}

// Classification carries the tracker's categorization custom fields.
type Classification struct {
	Cause          string   `json:"cause,omitempty"`
	Effect         string   `json:"effect,omitempty"`
	Resolution     string   `json:"resolution,omitempty"`
	ChangeCategory string   `json:"change_category,omitempty"`
	CustomerImpact string   `json:"customer_impact,omitempty"`
	Environments   []string `json:"environments"`
}

// Extraction is metadata about the normalization run that produced a ticket.
type Extraction struct {
	Version     string    `json:"version"`
	ExtractedAt time.Time `json:"extracted_at"`
	Source      string    `json:"source"`
	Warnings    []string  `json:"warnings"`
	Timeline    int       `json:"timeline_entries_count"`
	Comments    int       `json:"comments_count"`
}

// Ticket is the normalized, immutable form of a tracker issue. It is produced
// once by the extract package, serialized to storage, and rescored at will
// without further tracker I/O.
type Ticket struct {
	Key            string         `json:"issue_key"`
	Kind           Kind           `json:"ticket_type"`
	Summary        string         `json:"summary"`
	Times          Times          `json:"times"`
	Entities       Entities       `json:"entities"`
	Organization   Organization   `json:"organization"`
	Classification Classification `json:"classification"`
	Extraction     Extraction     `json:"extraction"`
}

// ImpactTime returns the incident anchor instant: the first timeline entry if
// one was found, otherwise the creation time. Nil when neither is known.
func (t *Ticket) ImpactTime() *time.Time {
	if t.Times.FirstImpactTime != nil {
		return t.Times.FirstImpactTime
	}
	return t.Times.CreatedAt
}

// IsCandidateKind reports whether the ticket participates in scoring given
// the external-maintenance toggle.
func (t *Ticket) IsCandidateKind(includeExternalMaintenance bool) bool {
	if t.Kind == KindChange {
		return true
	}
	return includeExternalMaintenance && t.Kind == KindExternalMaintenance
}
