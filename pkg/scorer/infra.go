package scorer

import (
	"strings"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

// Infra combines hosts and technologies: shared hosts are a far stronger
// signal than shared technologies.
const (
	hostWeight = 0.6
	techWeight = 0.4
)

// infraScore rates infrastructure overlap: exact host intersection is
// all-or-nothing, technology overlap gets the floor-plus-Jaccard treatment.
func infraScore(incident, candidate *models.Ticket) models.ScoreDetail {
	incHosts := toLowerSet(incident.Entities.Hosts)
	candHosts := toLowerSet(candidate.Entities.Hosts)
	hostMatches := intersect(incHosts, candHosts)

	incTechs := toLowerSet(incident.Entities.Technologies)
	candTechs := toLowerSet(candidate.Entities.Technologies)
	techMatches := intersect(incTechs, candTechs)

	hostScore := 0.0
	if len(incHosts) > 0 && len(candHosts) > 0 && len(hostMatches) > 0 {
		hostScore = 100.0
	}

	techScore := 0.0
	if len(incTechs) > 0 && len(candTechs) > 0 && len(techMatches) > 0 {
		techScore = serviceMatchFloor + jaccard(incTechs, candTechs)*serviceMatchRange
	}

	var reasons []string
	if len(hostMatches) > 0 {
		reasons = append(reasons, "hosts: "+strings.Join(hostMatches, ", "))
	}
	if len(techMatches) > 0 {
		reasons = append(reasons, "tech: "+strings.Join(techMatches, ", "))
	}
	reason := "no infrastructure overlap"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, " | ")
	}

	matches := append(append([]string{}, hostMatches...), techMatches...)
	if matches == nil {
		matches = []string{}
	}

	return models.ScoreDetail{
		Score:   round1(hostScore*hostWeight + techScore*techWeight),
		Reason:  reason,
		Matches: matches,
	}
}
