package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Search option bounds.
const (
	DefaultMaxResults = 500
	MinMaxResults     = 10
	MaxMaxResults     = 2000
	DefaultProject    = "TECCM"
)

var (
	incidentKeyPattern = regexp.MustCompile(`^INC-\d+$`)
	windowPattern      = regexp.MustCompile(`^(\d+)([hdm])$`)
)

// ValidIncidentKey reports whether key looks like a real incident ticket key.
func ValidIncidentKey(key string) bool {
	return incidentKeyPattern.MatchString(strings.ToUpper(key))
}

// ParseWindow parses a time-window string like "48h", "2d" or "120m".
func ParseWindow(s string) (time.Duration, error) {
	m := windowPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("invalid window format %q (expected <number>[hdm])", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid window format %q: %w", s, err)
	}
	switch m[2] {
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return time.Duration(n) * time.Minute, nil
	}
}

// SearchOptions controls candidate discovery. Window fields use the
// <number>[hdm] grammar and are validated before job creation.
type SearchOptions struct {
	WindowBefore               string `json:"window_before"`
	WindowAfter                string `json:"window_after"`
	IncludeActive              *bool  `json:"include_active,omitempty"`
	IncludeNoEnd               *bool  `json:"include_no_end,omitempty"`
	IncludeExternalMaintenance bool   `json:"include_external_maintenance"`
	MaxResults                 int    `json:"max_results"`
	ExtraFilter                string `json:"extra_jql"`
	Project                    string `json:"project"`
}

// DefaultSearchOptions returns options with every field at its default.
func DefaultSearchOptions() SearchOptions {
	t := true
	return SearchOptions{
		WindowBefore:  "48h",
		WindowAfter:   "2h",
		IncludeActive: &t,
		IncludeNoEnd:  &t,
		MaxResults:    DefaultMaxResults,
		Project:       DefaultProject,
	}
}

// Normalize fills unset fields with defaults and clamps MaxResults into
// [MinMaxResults, MaxMaxResults].
func (o *SearchOptions) Normalize() {
	def := DefaultSearchOptions()
	if o.WindowBefore == "" {
		o.WindowBefore = def.WindowBefore
	}
	if o.WindowAfter == "" {
		o.WindowAfter = def.WindowAfter
	}
	if o.IncludeActive == nil {
		o.IncludeActive = def.IncludeActive
	}
	if o.IncludeNoEnd == nil {
		o.IncludeNoEnd = def.IncludeNoEnd
	}
	if o.MaxResults == 0 {
		o.MaxResults = def.MaxResults
	}
	if o.MaxResults < MinMaxResults {
		o.MaxResults = MinMaxResults
	}
	if o.MaxResults > MaxMaxResults {
		o.MaxResults = MaxMaxResults
	}
	if o.Project == "" {
		o.Project = def.Project
	}
}

// Validate checks the window grammar. Normalize must run first.
func (o SearchOptions) Validate() error {
	if _, err := ParseWindow(o.WindowBefore); err != nil {
		return fmt.Errorf("window_before: %w", err)
	}
	if _, err := ParseWindow(o.WindowAfter); err != nil {
		return fmt.Errorf("window_after: %w", err)
	}
	return nil
}

// Windows returns the parsed before/after durations. Call Validate first;
// invalid strings yield zero durations here.
func (o SearchOptions) Windows() (before, after time.Duration) {
	before, _ = ParseWindow(o.WindowBefore)
	after, _ = ParseWindow(o.WindowAfter)
	return before, after
}

// Active reports the include_active flag with its default applied.
func (o SearchOptions) Active() bool {
	return o.IncludeActive == nil || *o.IncludeActive
}

// NoEnd reports the include_no_end flag with its default applied.
func (o SearchOptions) NoEnd() bool {
	return o.IncludeNoEnd == nil || *o.IncludeNoEnd
}

// VirtualIncident describes an incident synthesized from user input instead
// of a tracker ticket.
type VirtualIncident struct {
	Name         string    `json:"name,omitempty"`
	ImpactTime   time.Time `json:"impact_time"`
	Services     []string  `json:"services"`
	Hosts        []string  `json:"hosts"`
	Technologies []string  `json:"technologies"`
	Team         string    `json:"team,omitempty"`
}

// IncidentSeed is either a real tracker key or a virtual incident.
// Exactly one of the two is set.
type IncidentSeed struct {
	Key     string
	Virtual *VirtualIncident
}

// RealSeed builds a seed for a tracker incident key.
func RealSeed(key string) IncidentSeed {
	return IncidentSeed{Key: strings.ToUpper(strings.TrimSpace(key))}
}

// VirtualSeed builds a seed for a synthesized incident.
func VirtualSeed(v VirtualIncident) IncidentSeed {
	return IncidentSeed{Virtual: &v}
}

// IsVirtual reports whether the seed carries a virtual incident.
func (s IncidentSeed) IsVirtual() bool {
	return s.Virtual != nil
}

// Validate enforces the seed invariants: a real key must match INC-<digits>,
// a virtual seed must carry an impact time.
func (s IncidentSeed) Validate() error {
	if s.Virtual != nil {
		if s.Virtual.ImpactTime.IsZero() {
			return fmt.Errorf("virtual incident requires an impact time")
		}
		return nil
	}
	if !ValidIncidentKey(s.Key) {
		return fmt.Errorf("invalid incident key %q (expected INC-<number>)", s.Key)
	}
	return nil
}

// Display returns a human label for the seed, used in job listings.
func (s IncidentSeed) Display() string {
	if s.Virtual == nil {
		return s.Key
	}
	if s.Virtual.Name != "" {
		return "Manual: " + s.Virtual.Name
	}
	return "Manual - " + s.Virtual.ImpactTime.UTC().Format("2006-01-02 15:04")
}
