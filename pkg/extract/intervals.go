package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/codeready-toolchain/correlator/pkg/jira"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

var (
	// [22/07/2025 12:00, 13:00] or [22/07/2025 12:00, 23/07/2025 01:00]
	intervalPattern = regexp.MustCompile(`\[(\d{2}/\d{2}/\d{4})\s+(\d{2}:\d{2}),\s*(?:(\d{2}/\d{2}/\d{4})\s+)?(\d{2}:\d{2})\]`)

	// 20250722 12:20 - jdoe: impact detected
	timelinePattern = regexp.MustCompile(`(?m)^(\d{8})\s+(\d{2}:\d{2})\s*-\s*(\w+):\s*(.+)$`)
)

// parseIntervalTimestamp parses "dd/mm/yyyy" + "hh:mm" into a UTC instant.
func parseIntervalTimestamp(date, clock string) (time.Time, error) {
	return time.Parse("02/01/2006 15:04", date+" "+clock)
}

// extractLiveIntervals parses actual execution windows from comment bodies.
// A pair whose second date is omitted reuses the first. Pairs that fail to
// parse, or whose endpoints are reversed, are dropped with a warning.
func extractLiveIntervals(comments []jira.RawComment, warn func(string)) []models.Interval {
	var intervals []models.Interval
	for _, comment := range comments {
		if comment.Body == "" {
			continue
		}
		for _, m := range intervalPattern.FindAllStringSubmatch(comment.Body, -1) {
			startDate, startClock, endDate, endClock := m[1], m[2], m[3], m[4]
			if endDate == "" {
				endDate = startDate
			}
			start, err := parseIntervalTimestamp(startDate, startClock)
			if err != nil {
				warn(fmt.Sprintf("unparseable live interval start %q %q", startDate, startClock))
				continue
			}
			end, err := parseIntervalTimestamp(endDate, endClock)
			if err != nil {
				warn(fmt.Sprintf("unparseable live interval end %q %q", endDate, endClock))
				continue
			}
			if end.Before(start) {
				warn(fmt.Sprintf("live interval end %s before start %s, dropped",
					end.Format(time.RFC3339), start.Format(time.RFC3339)))
				continue
			}
			intervals = append(intervals, models.Interval{Start: start.UTC(), End: end.UTC()})
		}
	}
	return intervals
}

// extractTimeline parses the description's timeline block. Lines with
// unparseable timestamps are skipped.
func extractTimeline(description string) []models.TimelineEntry {
	if description == "" {
		return nil
	}
	var entries []models.TimelineEntry
	for _, m := range timelinePattern.FindAllStringSubmatch(description, -1) {
		ts, err := time.Parse("20060102 15:04", m[1]+" "+m[2])
		if err != nil {
			continue
		}
		entries = append(entries, models.TimelineEntry{
			Timestamp: ts.UTC(),
			User:      strings.ToLower(m[3]),
			Action:    strings.TrimSpace(m[4]),
		})
	}
	return entries
}
