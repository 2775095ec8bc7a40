package scorer

import (
	"fmt"
	"math"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// genericChangeThreshold is the service count above which a change is
// considered too broad to be a specific cause.
const genericChangeThreshold = 10

// Duration buckets in hours.
const (
	durationWeekHours    = 168
	durationMonthHours   = 720
	durationQuarterHours = 2160
)

// strongMatchThreshold exempts well-matched candidates from duration
// penalties: a change that clearly touches the same services and hosts is a
// plausible cause no matter how long its window.
const strongMatchThreshold = 80

// Proximity buckets in hours.
const (
	proximityExactHours = 0.5
	proximity1hHours    = 1.0
	proximity2hHours    = 2.0
	proximity4hHours    = 4.0
)

// applyPenalties multiplies the weighted score by every applicable penalty,
// in fixed order, and records each by name and multiplier.
func applyPenalties(score float64, candidate *models.Ticket, serviceScore, infraScore float64, p config.Penalties) (float64, []string) {
	applied := []string{}

	if len(candidate.Times.LiveIntervals) == 0 {
		score *= p.NoLiveIntervals
		applied = append(applied, fmt.Sprintf("no_live_intervals (x%v)", p.NoLiveIntervals))
	}
	if len(candidate.Entities.Hosts) == 0 {
		score *= p.NoHosts
		applied = append(applied, fmt.Sprintf("no_hosts (x%v)", p.NoHosts))
	}
	if len(candidate.Entities.Services) == 0 {
		score *= p.NoServices
		applied = append(applied, fmt.Sprintf("no_services (x%v)", p.NoServices))
	}
	if count := len(candidate.Entities.Services); count > genericChangeThreshold {
		score *= p.GenericChange
		applied = append(applied, fmt.Sprintf("generic_change (%d services, x%v)", count, p.GenericChange))
	}

	// Long-window changes are unspecific, unless service+infra already
	// point squarely at this candidate.
	start, end := candidate.Times.PlannedStart, candidate.Times.PlannedEnd
	strongMatch := serviceScore+infraScore > strongMatchThreshold
	if start != nil && end != nil && !strongMatch {
		hours := end.Sub(*start).Hours()
		switch {
		case hours > durationQuarterHours:
			score *= p.LongDurationQuarter
			applied = append(applied, fmt.Sprintf("long_duration (%dh > 3 months, x%v)", int(hours), p.LongDurationQuarter))
		case hours > durationMonthHours:
			score *= p.LongDurationMonth
			applied = append(applied, fmt.Sprintf("long_duration (%dh > 1 month, x%v)", int(hours), p.LongDurationMonth))
		case hours > durationWeekHours:
			score *= p.LongDurationWeek
			applied = append(applied, fmt.Sprintf("long_duration (%dh > 1 week, x%v)", int(hours), p.LongDurationWeek))
		}
	}

	return score, applied
}

// applyProximityBonus boosts candidates whose planned start sits close to
// the incident anchor. The distance is symmetric: a change that started
// shortly AFTER the impact earns the same bonus as one shortly before. That
// mirrors the reference behavior and is kept deliberately; see DESIGN.md.
func applyProximityBonus(score float64, incident, candidate *models.Ticket, b config.Bonuses) (float64, []string) {
	applied := []string{}

	anchor := incident.Times.FirstImpactTime
	if anchor == nil {
		anchor = incident.Times.PlannedStart
	}
	if anchor == nil {
		anchor = incident.Times.CreatedAt
	}
	start := candidate.Times.PlannedStart
	if anchor == nil || start == nil {
		return score, applied
	}

	diff := math.Abs(anchor.Sub(*start).Hours())
	switch {
	case diff <= proximityExactHours:
		score *= b.ProximityExact
		applied = append(applied, fmt.Sprintf("proximity_exact (%.1fh, x%v)", diff, b.ProximityExact))
	case diff <= proximity1hHours:
		score *= b.Proximity1h
		applied = append(applied, fmt.Sprintf("proximity_1h (%.1fh, x%v)", diff, b.Proximity1h))
	case diff <= proximity2hHours:
		score *= b.Proximity2h
		applied = append(applied, fmt.Sprintf("proximity_2h (%.1fh, x%v)", diff, b.Proximity2h))
	case diff <= proximity4hHours:
		score *= b.Proximity4h
		applied = append(applied, fmt.Sprintf("proximity_4h (%.1fh, x%v)", diff, b.Proximity4h))
	}

	return score, applied
}
