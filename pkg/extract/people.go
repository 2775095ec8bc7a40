package extract

import (
	"strings"

	"github.com/codeready-toolchain/correlator/pkg/jira"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// extractPeople unions every identifier attached to a ticket: assignee and
// reporter account names, comment authors (display names with whitespace
// stripped), timeline users, and escalation / permitted-user lists. All are
// lower-cased. Author display names are kept as opaque identifiers; two
// people with the same concatenated display name collide, and no
// re-identification is attempted.
func (n *Normalizer) extractPeople(issue *jira.RawIssue, comments []jira.RawComment, timeline []models.TimelineEntry) []string {
	people := make(map[string]struct{})

	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			people[name] = struct{}{}
		}
	}

	add(nestedName(issue.Fields, "assignee"))
	add(nestedName(issue.Fields, "reporter"))

	for _, comment := range comments {
		author := comment.Author.DisplayName
		if author == "" {
			author = comment.Author.Name
		}
		add(strings.ReplaceAll(author, " ", ""))
	}

	for _, entry := range timeline {
		add(entry.User)
	}

	for _, key := range []string{n.fields.TechEscalation, n.fields.PermittedUsers} {
		for _, name := range fieldStrings(issue.Fields, key) {
			add(name)
		}
	}

	out := make([]string, 0, len(people))
	for p := range people {
		out = append(out, p)
	}
	return sortedSet(out)
}
