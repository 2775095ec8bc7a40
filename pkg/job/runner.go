package job

import (
	"context"
	"errors"
	"log/slog"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/metrics"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// Store is the persistence surface the runner writes through.
type Store interface {
	UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error
	UpdateJobProgress(ctx context.Context, jobID string, progress, totalChanges int) error
	CompleteJob(ctx context.Context, jobID string, totalChanges, errors int) error
	FailJob(ctx context.Context, jobID string, status models.JobStatus, reason string) error
	SaveExtraction(ctx context.Context, jobID string, data *models.ExtractionResult) error
	SaveRanking(ctx context.Context, jobID string, weights config.Weights, ranking *models.Ranking) error
}

// Credentials are the per-request tracker credentials a job runs with.
type Credentials struct {
	Username string
	Password string
}

// Runner executes correlation jobs in the background and persists their
// results. Jobs are independent: each gets its own tracker client and
// context; they share only the registry and the store.
type Runner struct {
	coordinator *Coordinator
	store       Store
	registry    *Registry

	// newTracker builds a tracker client per job from its credentials.
	// Injected so tests can substitute a fake tracker.
	newTracker func(creds Credentials) Tracker
}

// NewRunner creates a runner.
func NewRunner(coordinator *Coordinator, store Store, registry *Registry, newTracker func(Credentials) Tracker) *Runner {
	return &Runner{
		coordinator: coordinator,
		store:       store,
		registry:    registry,
		newTracker:  newTracker,
	}
}

// Registry exposes the active-job registry for progress endpoints.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Start launches a job in the background and returns immediately. The job's
// terminal state always lands in the store: completed with a ranking,
// failed with a reason, or cancelled.
func (r *Runner) Start(jobID string, creds Credentials, seed models.IncidentSeed, opts models.SearchOptions, scoring config.Scoring) {
	go r.run(jobID, creds, seed, opts, scoring)
}

func (r *Runner) run(jobID string, creds Credentials, seed models.IncidentSeed, opts models.SearchOptions, scoring config.Scoring) {
	log := slog.With("job_id", jobID, "seed", seed.Display())
	bg := context.Background()

	ctx, cancel := context.WithCancel(bg)
	defer cancel()

	update := r.registry.Register(jobID, cancel)
	defer r.registry.Unregister(jobID)

	timer := metrics.JobStarted()

	if err := r.store.UpdateJobStatus(bg, jobID, models.JobRunning); err != nil {
		log.Error("Failed to mark job running", "error", err)
	}

	progress := func(done, total int, phase models.Phase) {
		update(Progress{Done: done, Total: total, Phase: phase})
		if phase == models.PhaseExtracting && total > 0 {
			pct := done * 100 / total
			// A real seed's total includes the incident itself.
			totalChanges := total
			if !seed.IsVirtual() {
				totalChanges = total - 1
			}
			if err := r.store.UpdateJobProgress(bg, jobID, pct, totalChanges); err != nil {
				log.Warn("Failed to persist job progress", "error", err)
			}
		}
	}

	tracker := r.newTracker(creds)
	out, err := r.coordinator.Run(ctx, tracker, seed, opts, scoring, progress)
	if err != nil {
		status := models.JobFailed
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			status = models.JobCancelled
		}
		update(Progress{Phase: models.PhaseFailed})
		if storeErr := r.store.FailJob(bg, jobID, status, err.Error()); storeErr != nil {
			log.Error("Failed to persist job failure", "error", storeErr)
		}
		metrics.JobFinished(timer, string(status))
		log.Warn("Job terminated without ranking", "status", status, "reason", err)
		return
	}

	if err := r.store.SaveExtraction(bg, jobID, out.Extraction); err != nil {
		log.Error("Failed to save extraction", "error", err)
		r.failJob(bg, jobID, timer, "persist extraction: "+err.Error())
		return
	}
	if err := r.store.SaveRanking(bg, jobID, scoring.Weights, out.Ranking); err != nil {
		log.Error("Failed to save ranking", "error", err)
		r.failJob(bg, jobID, timer, "persist ranking: "+err.Error())
		return
	}

	totalChanges := len(out.Extraction.Candidates(opts.IncludeExternalMaintenance))
	if err := r.store.CompleteJob(bg, jobID, totalChanges, out.Extraction.Info.Errors); err != nil {
		log.Error("Failed to mark job completed", "error", err)
	}
	metrics.JobFinished(timer, string(models.JobCompleted))
	log.Info("Job completed", "changes", totalChanges, "errors", out.Extraction.Info.Errors)
}

func (r *Runner) failJob(ctx context.Context, jobID string, timer *metrics.JobTimer, reason string) {
	if err := r.store.FailJob(ctx, jobID, models.JobFailed, reason); err != nil {
		slog.Error("Failed to persist job failure", "job_id", jobID, "error", err)
	}
	metrics.JobFinished(timer, string(models.JobFailed))
}
