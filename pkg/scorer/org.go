package scorer

import (
	"fmt"
	"strings"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

// Org sub-score accumulation: team identity, team containment, and a capped
// per-person bonus for shared identifiers.
const (
	sameTeamScore    = 50.0
	relatedTeamScore = 25.0
	perPersonScore   = 15.0
	maxPeopleScore   = 50.0
	maxOrgScore      = 100.0
)

// orgScore rates organizational overlap: responsible teams and shared people.
func orgScore(incident, candidate *models.Ticket) models.ScoreDetail {
	score := 0.0
	var matches []string
	var reasons []string

	incTeam := strings.ToLower(strings.TrimSpace(incident.Organization.Team))
	candTeam := strings.ToLower(strings.TrimSpace(candidate.Organization.Team))
	if incTeam != "" && candTeam != "" {
		switch {
		case incTeam == candTeam:
			score += sameTeamScore
			reasons = append(reasons, "same team")
			matches = append(matches, incident.Organization.Team)
		case strings.Contains(candTeam, incTeam) || strings.Contains(incTeam, candTeam):
			score += relatedTeamScore
			reasons = append(reasons, "related team")
		}
	}

	incPeople := toLowerSet(incident.Organization.PeopleInvolved)
	candPeople := toLowerSet(candidate.Organization.PeopleInvolved)
	if shared := intersect(incPeople, candPeople); len(shared) > 0 {
		people := perPersonScore * float64(len(shared))
		if people > maxPeopleScore {
			people = maxPeopleScore
		}
		score += people
		reasons = append(reasons, fmt.Sprintf("%d people in common", len(shared)))
		matches = append(matches, shared...)
	}

	if score > maxOrgScore {
		score = maxOrgScore
	}

	reason := "no organizational overlap"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, " | ")
	}
	if matches == nil {
		matches = []string{}
	}

	return models.ScoreDetail{Score: round1(score), Reason: reason, Matches: matches}
}
