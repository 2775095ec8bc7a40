package scorer

import (
	"fmt"
	"math"
	"time"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

// Time sub-score coefficients: matches inside a live interval are certain,
// planned windows slightly less so, open starts least.
const (
	liveIntervalScore  = 100.0
	plannedWindowScore = 90.0
	plannedEndWeight   = 80.0
	plannedStartWeight = 70.0
)

// timeScore rates how well a candidate's execution windows line up with the
// incident's impact instant.
func timeScore(incident, candidate *models.Ticket, decayHours float64) models.ScoreDetail {
	impact := incident.ImpactTime()
	if impact == nil {
		return models.ScoreDetail{Score: 0, Reason: "no impact time available", Matches: []string{}}
	}
	t := *impact
	decayMinutes := decayHours * 60

	intervals := candidate.Times.LiveIntervals
	if len(intervals) > 0 {
		for _, iv := range intervals {
			if iv.Contains(t) {
				return models.ScoreDetail{
					Score: liveIntervalScore,
					Reason: fmt.Sprintf("first impact %s inside live interval [%s-%s]",
						t.Format("15:04"), iv.Start.Format("15:04"), iv.End.Format("15:04")),
					Matches: []string{fmt.Sprintf("%s - %s",
						iv.Start.Format("2006-01-02 15:04"), iv.End.Format("15:04"))},
				}
			}
		}

		minDistance := math.Inf(1)
		for _, iv := range intervals {
			minDistance = math.Min(minDistance, distanceMinutes(t, iv))
		}
		return models.ScoreDetail{
			Score:   decayed(liveIntervalScore, minDistance, decayMinutes),
			Reason:  fmt.Sprintf("distance to live interval: %d min", int(minDistance)),
			Matches: []string{},
		}
	}

	start, end := candidate.Times.PlannedStart, candidate.Times.PlannedEnd

	if start != nil && end != nil {
		window := models.Interval{Start: *start, End: *end}
		if window.Contains(t) {
			return models.ScoreDetail{
				Score: plannedWindowScore,
				Reason: fmt.Sprintf("first impact inside planned window [%s-%s]",
					start.Format("15:04"), end.Format("15:04")),
				Matches: []string{},
			}
		}
		if t.Before(*start) {
			return models.ScoreDetail{Score: 0, Reason: "impact precedes the planned change", Matches: []string{}}
		}
		d := t.Sub(*end).Minutes()
		return models.ScoreDetail{
			Score:   decayed(plannedEndWeight, d, decayMinutes),
			Reason:  fmt.Sprintf("distance to planned end: %d min", int(d)),
			Matches: []string{},
		}
	}

	if start != nil {
		if t.Before(*start) {
			return models.ScoreDetail{Score: 0, Reason: "impact precedes the planned change", Matches: []string{}}
		}
		d := t.Sub(*start).Minutes()
		return models.ScoreDetail{
			Score:   decayed(plannedStartWeight, d, decayMinutes),
			Reason:  fmt.Sprintf("distance to planned start: %d min", int(d)),
			Matches: []string{},
		}
	}

	return models.ScoreDetail{Score: 0, Reason: "no timing information on the change", Matches: []string{}}
}

// distanceMinutes is the distance from t to the interval, 0 when inside.
func distanceMinutes(t time.Time, iv models.Interval) float64 {
	switch {
	case t.Before(iv.Start):
		return iv.Start.Sub(t).Minutes()
	case t.After(iv.End):
		return t.Sub(iv.End).Minutes()
	default:
		return 0
	}
}

// decayed applies the square-root decay: full score at distance 0, zero at
// decayMinutes and beyond.
func decayed(full, distance, decayMinutes float64) float64 {
	if distance <= 0 {
		return round1(full)
	}
	if distance >= decayMinutes {
		return 0
	}
	return round1(full * (1 - math.Sqrt(distance/decayMinutes)))
}
