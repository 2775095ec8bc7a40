package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Tracker field names used in queries. The planned window lives in named
// custom fields, quoted per JQL syntax.
const (
	startField = `"Start Date/Time"`
	endField   = `"End Date/Time"`

	jqlTimeLayout = "2006-01-02 15:04"
)

// windowQuery selects changes that started inside the discovery window.
func windowQuery(project string, from, to time.Time, extra string) string {
	q := fmt.Sprintf(`project = %s AND %s >= "%s" AND %s <= "%s"`,
		project,
		startField, from.Format(jqlTimeLayout),
		startField, to.Format(jqlTimeLayout))
	return withExtra(q, extra) + ` ORDER BY ` + startField + ` DESC`
}

// activeQuery selects changes whose planned window contains the anchor.
func activeQuery(project string, anchor time.Time, extra string) string {
	at := anchor.Format(jqlTimeLayout)
	q := fmt.Sprintf(`project = %s AND %s <= "%s" AND %s >= "%s"`,
		project, startField, at, endField, at)
	return withExtra(q, extra) + ` ORDER BY ` + startField + ` DESC`
}

// openEndedQuery selects changes that started before the anchor and have no
// end time recorded.
func openEndedQuery(project string, anchor time.Time, extra string) string {
	q := fmt.Sprintf(`project = %s AND %s <= "%s" AND %s IS EMPTY`,
		project, startField, anchor.Format(jqlTimeLayout), endField)
	return withExtra(q, extra) + ` ORDER BY ` + startField + ` DESC`
}

// withExtra appends the caller's opaque filter fragment as a conjunct.
func withExtra(q, extra string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return q
	}
	if !strings.HasPrefix(strings.ToUpper(extra), "AND ") {
		extra = "AND " + extra
	}
	return q + " " + extra
}
