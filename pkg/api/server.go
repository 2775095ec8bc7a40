// Package api provides the HTTP surface of the correlator: auth, analysis
// jobs, rankings, and runtime configuration.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/job"
	"github.com/codeready-toolchain/correlator/pkg/metrics"
	"github.com/codeready-toolchain/correlator/pkg/models"
	"github.com/codeready-toolchain/correlator/pkg/storage"
	"github.com/codeready-toolchain/correlator/pkg/version"
)

// Store is the persistence surface the handlers read and write.
// *storage.Store satisfies it.
type Store interface {
	CreateJob(ctx context.Context, incident, window string, jobType models.JobType, username, searchSummary string) (string, error)
	GetJob(ctx context.Context, jobID string) (*models.JobInfo, error)
	ListJobs(ctx context.Context, limit int) ([]models.JobInfo, error)
	DeleteJob(ctx context.Context, jobID string) (bool, error)
	GetExtraction(ctx context.Context, jobID string) (*models.ExtractionResult, error)
	GetLatestRanking(ctx context.Context, jobID string) (*models.Ranking, error)
	SaveRanking(ctx context.Context, jobID string, weights config.Weights, ranking *models.Ranking) error
}

// Settings is the tunable-configuration surface. *storage.Settings
// satisfies it.
type Settings interface {
	Scoring(ctx context.Context) (config.Scoring, error)
	TopResults(ctx context.Context) int
	SetWeights(ctx context.Context, w config.Weights) error
	SetPenalties(ctx context.Context, p config.Penalties) error
	SetBonuses(ctx context.Context, b config.Bonuses) error
	SetThresholds(ctx context.Context, t config.Thresholds) error
	SetTopResults(ctx context.Context, top int) error
	SetServiceSynonyms(ctx context.Context, synonyms map[string][]string) error
	SetRelatedGroups(ctx context.Context, groups map[string][]string) error
}

// Server is the HTTP API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server

	cfg      *config.Config
	dbClient *storage.Client // nil in handler tests; /health reports degraded
	store    Store
	settings Settings
	runner   *job.Runner
	sessions *SessionStore
	verify   CredentialVerifier
}

// NewServer creates the API server and registers all routes.
func NewServer(
	cfg *config.Config,
	dbClient *storage.Client,
	store Store,
	settings Settings,
	runner *job.Runner,
	verify CredentialVerifier,
) *Server {
	s := &Server{
		engine:   gin.New(),
		cfg:      cfg,
		dbClient: dbClient,
		store:    store,
		settings: settings,
		runner:   runner,
		sessions: NewSessionStore(),
		verify:   verify,
	}
	s.engine.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

// Handler exposes the router, used by httptest in handler tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", s.loginHandler)
	auth.POST("/logout", s.logoutHandler)
	auth.GET("/session", s.sessionHandler)

	analysis := api.Group("/analysis", s.requireAuth)
	analysis.POST("/extract", s.startExtractionHandler)
	analysis.POST("/manual", s.startManualHandler)
	analysis.POST("/score", s.rescoreHandler)
	analysis.GET("/jobs", s.listJobsHandler)
	analysis.GET("/jobs/:id", s.getJobHandler)
	analysis.DELETE("/jobs/:id", s.deleteJobHandler)
	analysis.POST("/jobs/:id/cancel", s.cancelJobHandler)
	analysis.GET("/options/technologies", s.technologiesHandler)
	analysis.GET("/options/services", s.servicesHandler)
	analysis.GET("/:id/ranking", s.getRankingHandler)
	analysis.GET("/:id/change/:key", s.candidateDetailHandler)

	cfg := api.Group("/config", s.requireAuth)
	cfg.GET("", s.getConfigHandler)
	cfg.PUT("/weights", s.putWeightsHandler)
	cfg.PUT("/penalties", s.putPenaltiesHandler)
	cfg.PUT("/bonuses", s.putBonusesHandler)
	cfg.PUT("/thresholds", s.putThresholdsHandler)
	cfg.PUT("/top-results", s.putTopResultsHandler)
	cfg.GET("/mappings", s.getMappingsHandler)
	cfg.PUT("/synonyms", s.putSynonymsHandler)
	cfg.PUT("/groups", s.putGroupsHandler)
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	var dbHealth storage.HealthStatus
	if s.dbClient == nil {
		status = "degraded"
	} else {
		var err error
		dbHealth, err = storage.Health(ctx, s.dbClient.DB())
		if err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"version":  version.Full(),
		"database": dbHealth,
		"configuration": gin.H{
			"technologies":   len(s.cfg.Tables.Technologies),
			"synonyms":       len(s.cfg.Scoring.ServiceSynonyms),
			"related_groups": len(s.cfg.Scoring.RelatedGroups),
		},
	})
}
