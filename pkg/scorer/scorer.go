// Package scorer ranks candidate changes against an incident with an
// explainable multi-factor score. Everything in this package is pure: the
// inputs are normalized tickets and a scoring configuration passed by value,
// and identical inputs always produce an identical ranking.
package scorer

import (
	"math"
	"sort"
	"time"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// ScoreCandidate computes the full score decomposition of one candidate
// against the incident. Weights must already be normalized.
func ScoreCandidate(incident, candidate *models.Ticket, cfg config.Scoring) models.RankedCandidate {
	w := cfg.Weights

	timeDetail := timeScore(incident, candidate, cfg.Thresholds.TimeDecayHours)
	serviceDetail := serviceScore(incident, candidate, cfg.RelatedGroups)
	infraDetail := infraScore(incident, candidate)
	orgDetail := orgScore(incident, candidate)

	score := w.Time*timeDetail.Score +
		w.Service*serviceDetail.Score +
		w.Infra*infraDetail.Score +
		w.Org*orgDetail.Score

	score, penalties := applyPenalties(score, candidate, serviceDetail.Score, infraDetail.Score, cfg.Penalties)
	score, bonuses := applyProximityBonus(score, incident, candidate, cfg.Bonuses)

	return models.RankedCandidate{
		Key:        candidate.Key,
		Summary:    candidate.Summary,
		FinalScore: round1(score),
		SubScores: models.SubScores{
			Time:    timeDetail.Score,
			Service: serviceDetail.Score,
			Infra:   infraDetail.Score,
			Org:     orgDetail.Score,
		},
		Time:      timeDetail,
		Service:   serviceDetail,
		Infra:     infraDetail,
		Org:       orgDetail,
		Penalties: penalties,
		Bonuses:   bonuses,
		Candidate: candidateInfo(candidate),
	}
}

// Rank scores every candidate and returns the ordered ranking. Candidates
// below the minimum score are omitted. Order is final score descending, tied
// entries by key ascending, so the ranking is reproducible from stored
// tickets and configuration alone.
func Rank(incident *models.Ticket, candidates []*models.Ticket, cfg config.Scoring) *models.Ranking {
	cfg.Weights = cfg.Weights.Normalized()

	scored := make([]models.RankedCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		rc := ScoreCandidate(incident, candidate, cfg)
		if rc.FinalScore >= cfg.Thresholds.MinScore {
			scored = append(scored, rc)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return scored[i].Key < scored[j].Key
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return &models.Ranking{
		Incident: models.IncidentInfo{
			Key:             incident.Key,
			Summary:         incident.Summary,
			FirstImpactTime: incident.Times.FirstImpactTime,
			CreatedAt:       incident.Times.CreatedAt,
			Services:        incident.Entities.Services,
			Hosts:           incident.Entities.Hosts,
			Technologies:    incident.Entities.Technologies,
		},
		Analysis: models.AnalysisInfo{
			CandidatesAnalyzed: len(candidates),
			CandidatesRanked:   len(scored),
			ScoredAt:           time.Now().UTC(),
		},
		Candidates: scored,
	}
}

func candidateInfo(t *models.Ticket) models.CandidateInfo {
	return models.CandidateInfo{
		Assignee:      t.Organization.Assignee,
		Team:          t.Organization.Team,
		PlannedStart:  t.Times.PlannedStart,
		PlannedEnd:    t.Times.PlannedEnd,
		LiveIntervals: t.Times.LiveIntervals,
		Resolution:    t.Classification.Resolution,
		Services:      t.Entities.Services,
		Hosts:         t.Entities.Hosts,
		Technologies:  t.Entities.Technologies,
	}
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
