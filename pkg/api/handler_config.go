package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/correlator/pkg/config"
)

// getConfigHandler handles GET /api/config: the effective tunable
// configuration (stored overrides over startup defaults).
func (s *Server) getConfigHandler(c *gin.Context) {
	scoring, err := s.settings.Scoring(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"weights":     scoring.Weights,
		"penalties":   scoring.Penalties,
		"bonuses":     scoring.Bonuses,
		"thresholds":  scoring.Thresholds,
		"top_results": s.settings.TopResults(c.Request.Context()),
	})
}

// putWeightsHandler handles PUT /api/config/weights.
func (s *Server) putWeightsHandler(c *gin.Context) {
	var weights config.Weights
	if err := c.ShouldBindJSON(&weights); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := s.settings.SetWeights(c.Request.Context(), weights); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weights": weights})
}

// putPenaltiesHandler handles PUT /api/config/penalties.
func (s *Server) putPenaltiesHandler(c *gin.Context) {
	var penalties config.Penalties
	if err := c.ShouldBindJSON(&penalties); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := s.settings.SetPenalties(c.Request.Context(), penalties); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"penalties": penalties})
}

// putBonusesHandler handles PUT /api/config/bonuses.
func (s *Server) putBonusesHandler(c *gin.Context) {
	var bonuses config.Bonuses
	if err := c.ShouldBindJSON(&bonuses); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := s.settings.SetBonuses(c.Request.Context(), bonuses); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bonuses": bonuses})
}

// putThresholdsHandler handles PUT /api/config/thresholds.
func (s *Server) putThresholdsHandler(c *gin.Context) {
	var thresholds config.Thresholds
	if err := c.ShouldBindJSON(&thresholds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := s.settings.SetThresholds(c.Request.Context(), thresholds); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"thresholds": thresholds})
}

// putTopResultsHandler handles PUT /api/config/top-results.
func (s *Server) putTopResultsHandler(c *gin.Context) {
	var req struct {
		TopResults int `json:"top_results" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := s.settings.SetTopResults(c.Request.Context(), req.TopResults); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"top_results": req.TopResults})
}

// getMappingsHandler handles GET /api/config/mappings: the synonym and
// ecosystem tables.
func (s *Server) getMappingsHandler(c *gin.Context) {
	scoring, err := s.settings.Scoring(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"synonyms": scoring.ServiceSynonyms,
		"groups":   scoring.RelatedGroups,
	})
}

// putSynonymsHandler handles PUT /api/config/synonyms.
func (s *Server) putSynonymsHandler(c *gin.Context) {
	var req struct {
		Synonyms map[string][]string `json:"synonyms" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := s.settings.SetServiceSynonyms(c.Request.Context(), req.Synonyms); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synonyms": req.Synonyms})
}

// putGroupsHandler handles PUT /api/config/groups.
func (s *Server) putGroupsHandler(c *gin.Context) {
	var req struct {
		Groups map[string][]string `json:"groups" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := s.settings.SetRelatedGroups(c.Request.Context(), req.Groups); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": req.Groups})
}

func sortedCopy(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}
