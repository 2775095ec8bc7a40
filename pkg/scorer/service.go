package scorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

// Service sub-score constants: a floor of 50 for any exact overlap plus a
// Jaccard share, and flat partial credit for same-ecosystem membership.
const (
	serviceMatchFloor = 50.0
	serviceMatchRange = 50.0
	relatedGroupScore = 25.0
)

// serviceScore rates service overlap between incident and candidate.
func serviceScore(incident, candidate *models.Ticket, relatedGroups map[string][]string) models.ScoreDetail {
	incSet := toLowerSet(incident.Entities.Services)
	candSet := toLowerSet(candidate.Entities.Services)

	if len(incSet) == 0 || len(candSet) == 0 {
		return models.ScoreDetail{Score: 0, Reason: "no services to compare", Matches: []string{}}
	}

	if matches := intersect(incSet, candSet); len(matches) > 0 {
		j := jaccard(incSet, candSet)
		return models.ScoreDetail{
			Score:   round1(serviceMatchFloor + j*serviceMatchRange),
			Reason:  fmt.Sprintf("exact service match - jaccard %.2f", j),
			Matches: matches,
		}
	}

	// No exact overlap: partial credit when both sides live in the same
	// ecosystem. The group with the most members on either side wins.
	bestSize := 0
	var bestGroup string
	var bestMatches []string
	for _, name := range sortedKeys(relatedGroups) {
		group := toLowerSet(relatedGroups[name])
		incIn := intersect(incSet, group)
		candIn := intersect(candSet, group)
		if len(incIn) == 0 || len(candIn) == 0 {
			continue
		}
		if size := len(incIn) + len(candIn); size > bestSize {
			bestSize = size
			bestGroup = name
			bestMatches = append(append([]string{}, incIn...), candIn...)
		}
	}
	if bestGroup != "" {
		return models.ScoreDetail{
			Score:   relatedGroupScore,
			Reason:  fmt.Sprintf("same ecosystem: %s", bestGroup),
			Matches: bestMatches,
		}
	}

	return models.ScoreDetail{Score: 0, Reason: "no service match", Matches: []string{}}
}

// jaccard is |A∩B| / |A∪B|, 0 when both sets are empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for v := range a {
		if _, ok := b[v]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func toLowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// intersect returns the sorted intersection of two sets.
func intersect(a, b map[string]struct{}) []string {
	var out []string
	for v := range a {
		if _, ok := b[v]; ok {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
