package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/correlator/pkg/job"
	"github.com/codeready-toolchain/correlator/pkg/models"
	"github.com/codeready-toolchain/correlator/pkg/scorer"
	"github.com/codeready-toolchain/correlator/pkg/storage"
)

// startExtractionHandler handles POST /api/analysis/extract: creates the job
// row and launches the correlation run in the background.
func (s *Server) startExtractionHandler(c *gin.Context) {
	var req models.ExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	incident := strings.ToUpper(strings.TrimSpace(req.Incident))
	if !models.ValidIncidentKey(incident) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid incident key, expected INC-XXXXXX"})
		return
	}

	opts := models.DefaultSearchOptions()
	jobType := models.JobTypeStandard
	if req.SearchOptions != nil {
		opts = *req.SearchOptions
		jobType = models.JobTypeCustom
	} else if req.Window != "" {
		opts.WindowBefore = req.Window
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	session := currentSession(c)
	jobID, err := s.store.CreateJob(c.Request.Context(), incident, opts.WindowBefore,
		jobType, session.Username, searchSummary(opts))
	if err != nil {
		writeError(c, err)
		return
	}

	scoring, err := s.settings.Scoring(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	s.runner.Start(jobID,
		job.Credentials{Username: session.Username, Password: session.Password},
		models.RealSeed(incident), opts, scoring)

	c.JSON(http.StatusOK, models.ExtractionResponse{
		JobID:   jobID,
		Message: "extraction started for " + incident,
	})
}

// startManualHandler handles POST /api/analysis/manual: a correlation run
// against a virtual incident, without any incident ticket.
func (s *Server) startManualHandler(c *gin.Context) {
	var req models.ManualAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	impact, err := parseImpactTime(req.ImpactTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid impact_time, expected ISO format (YYYY-MM-DDTHH:MM)"})
		return
	}

	opts := models.DefaultSearchOptions()
	if req.SearchOptions != nil {
		opts = *req.SearchOptions
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	seed := models.VirtualSeed(models.VirtualIncident{
		Name:         req.Name,
		ImpactTime:   impact,
		Services:     req.Services,
		Hosts:        req.Hosts,
		Technologies: req.Technologies,
		Team:         req.Team,
	})

	session := currentSession(c)
	jobID, err := s.store.CreateJob(c.Request.Context(), seed.Display(), opts.WindowBefore,
		models.JobTypeManual, session.Username, manualSummary(req))
	if err != nil {
		writeError(c, err)
		return
	}

	scoring, err := s.settings.Scoring(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	s.runner.Start(jobID,
		job.Credentials{Username: session.Username, Password: session.Password},
		seed, opts, scoring)

	c.JSON(http.StatusOK, models.ExtractionResponse{
		JobID:   jobID,
		Message: "manual analysis started: " + seed.Display(),
	})
}

// listJobsHandler handles GET /api/analysis/jobs.
func (s *Server) listJobsHandler(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	jobs, err := s.store.ListJobs(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if jobs == nil {
		jobs = []models.JobInfo{}
	}
	c.JSON(http.StatusOK, models.JobListResponse{Jobs: jobs})
}

// getJobHandler handles GET /api/analysis/jobs/:id. Live progress from the
// registry overrides the last persisted percentage while a job is running.
func (s *Server) getJobHandler(c *gin.Context) {
	jobID := c.Param("id")
	info, err := s.store.GetJob(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}

	if progress, ok := s.runner.Registry().Get(jobID); ok && progress.Total > 0 {
		info.Progress = progress.Done * 100 / progress.Total
	}

	c.JSON(http.StatusOK, info)
}

// deleteJobHandler handles DELETE /api/analysis/jobs/:id.
func (s *Server) deleteJobHandler(c *gin.Context) {
	deleted, err := s.store.DeleteJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"detail": "job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "job deleted"})
}

// cancelJobHandler handles POST /api/analysis/jobs/:id/cancel.
func (s *Server) cancelJobHandler(c *gin.Context) {
	if !s.runner.Registry().Cancel(c.Param("id")) {
		c.JSON(http.StatusConflict, gin.H{"detail": "job is not running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// getRankingHandler handles GET /api/analysis/:id/ranking. Serves the latest
// stored ranking, computing and storing one from the extraction when absent.
func (s *Server) getRankingHandler(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("id")

	ranking, err := s.store.GetLatestRanking(ctx, jobID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeError(c, err)
		return
	}
	if err != nil {
		extraction, exErr := s.store.GetExtraction(ctx, jobID)
		if exErr != nil {
			writeError(c, exErr)
			return
		}
		scoring, cfgErr := s.settings.Scoring(ctx)
		if cfgErr != nil {
			writeError(c, cfgErr)
			return
		}
		incident := extraction.Incident()
		if incident == nil {
			c.JSON(http.StatusConflict, gin.H{"detail": "extraction has no incident"})
			return
		}
		ranking = scorer.Rank(incident,
			extraction.Candidates(extraction.Info.SearchOptions.IncludeExternalMaintenance), scoring)
		if saveErr := s.store.SaveRanking(ctx, jobID, scoring.Weights, ranking); saveErr != nil {
			writeError(c, saveErr)
			return
		}
	}

	top := s.settings.TopResults(ctx)
	if v := c.Query("top"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			top = parsed
		}
	}
	if top < len(ranking.Candidates) {
		ranking.Candidates = ranking.Candidates[:top]
	}

	c.JSON(http.StatusOK, ranking)
}

// rescoreHandler handles POST /api/analysis/score: recomputes the ranking of
// a stored extraction with overridden weights. No tracker I/O happens here.
func (s *Server) rescoreHandler(c *gin.Context) {
	var req models.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	ctx := c.Request.Context()

	extraction, err := s.store.GetExtraction(ctx, req.JobID)
	if err != nil {
		writeError(c, err)
		return
	}
	scoring, err := s.settings.Scoring(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	if req.Weights != nil {
		w := &scoring.Weights
		if req.Weights.Time != nil {
			w.Time = *req.Weights.Time
		}
		if req.Weights.Service != nil {
			w.Service = *req.Weights.Service
		}
		if req.Weights.Infra != nil {
			w.Infra = *req.Weights.Infra
		}
		if req.Weights.Org != nil {
			w.Org = *req.Weights.Org
		}
		if err := w.Validate(); err != nil {
			writeError(c, err)
			return
		}
	}

	incident := extraction.Incident()
	if incident == nil {
		c.JSON(http.StatusConflict, gin.H{"detail": "extraction has no incident"})
		return
	}

	ranking := scorer.Rank(incident,
		extraction.Candidates(extraction.Info.SearchOptions.IncludeExternalMaintenance), scoring)
	if err := s.store.SaveRanking(ctx, req.JobID, scoring.Weights, ranking); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ranking)
}

// candidateDetailHandler handles GET /api/analysis/:id/change/:key with the
// full decomposition of one candidate.
func (s *Server) candidateDetailHandler(c *gin.Context) {
	ctx := c.Request.Context()
	key := strings.ToUpper(c.Param("key"))

	extraction, err := s.store.GetExtraction(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	scoring, err := s.settings.Scoring(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	incident := extraction.Incident()
	if incident == nil {
		c.JSON(http.StatusConflict, gin.H{"detail": "extraction has no incident"})
		return
	}

	var candidate *models.Ticket
	for _, t := range extraction.Candidates(true) {
		if strings.EqualFold(t.Key, key) {
			candidate = t
			break
		}
	}
	if candidate == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("change %s not found", key)})
		return
	}

	scoring.Weights = scoring.Weights.Normalized()
	scored := scorer.ScoreCandidate(incident, candidate, scoring)

	c.JSON(http.StatusOK, models.CandidateDetailResponse{
		Key:        scored.Key,
		Summary:    scored.Summary,
		FinalScore: scored.FinalScore,
		SubScores:  scored.SubScores,
		Time:       scored.Time,
		Service:    scored.Service,
		Infra:      scored.Infra,
		Org:        scored.Org,
		Penalties:  scored.Penalties,
		Bonuses:    scored.Bonuses,
		Candidate:  scored.Candidate,
		TrackerURL: s.cfg.TrackerURL + "/browse/" + scored.Key,
	})
}

// technologiesHandler handles GET /api/analysis/options/technologies.
func (s *Server) technologiesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"technologies": sortedCopy(s.cfg.Tables.Technologies)})
}

// servicesHandler handles GET /api/analysis/options/services: the canonical
// service names usable in manual analyses.
func (s *Server) servicesHandler(c *gin.Context) {
	scoring, err := s.settings.Scoring(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	names := make([]string, 0, len(scoring.ServiceSynonyms))
	for name := range scoring.ServiceSynonyms {
		names = append(names, name)
	}
	c.JSON(http.StatusOK, gin.H{"services": sortedCopy(names)})
}

// parseImpactTime accepts second- or minute-precision ISO timestamps
// (YYYY-MM-DDTHH:MM[:SS]), with or without a trailing Z. Zone offsets and
// fractional seconds are not accepted.
func parseImpactTime(raw string) (time.Time, error) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "Z")
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// searchSummary builds the brief non-default-options note shown in job
// listings.
func searchSummary(opts models.SearchOptions) string {
	var parts []string
	if !opts.Active() {
		parts = append(parts, "without active")
	}
	if !opts.NoEnd() {
		parts = append(parts, "without open-ended")
	}
	if opts.IncludeExternalMaintenance {
		parts = append(parts, "+ext.maint")
	}
	if opts.ExtraFilter != "" {
		parts = append(parts, "extra JQL")
	}
	if opts.Project != models.DefaultProject {
		parts = append(parts, "proj:"+opts.Project)
	}
	return strings.Join(parts, ", ")
}

func manualSummary(req models.ManualAnalysisRequest) string {
	var parts []string
	if len(req.Services) > 0 {
		parts = append(parts, fmt.Sprintf("%d services", len(req.Services)))
	}
	if len(req.Hosts) > 0 {
		parts = append(parts, fmt.Sprintf("%d hosts", len(req.Hosts)))
	}
	if len(req.Technologies) > 0 {
		parts = append(parts, fmt.Sprintf("%d techs", len(req.Technologies)))
	}
	if req.Team != "" {
		parts = append(parts, "team: "+req.Team)
	}
	return strings.Join(parts, ", ")
}
