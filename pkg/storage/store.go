package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// ErrNotFound is returned when a job or document does not exist.
var ErrNotFound = errors.New("not found")

// Store provides job, extraction, ranking, and config persistence over a
// database client.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open client.
func NewStore(client *Client) *Store {
	return &Store{db: client.DB()}
}

// NewStoreFromDB wraps an existing database handle (useful for tests).
func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateJob inserts a pending job and returns its generated ID.
func (s *Store) CreateJob(ctx context.Context, incident, window string, jobType models.JobType, username, searchSummary string) (string, error) {
	jobID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (job_id, inc, window_before, status, job_type, username, search_summary, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		jobID, incident, window, models.JobPending, jobType, nullable(username), nullable(searchSummary), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	return jobID, nil
}

// GetJob returns a job by ID, or ErrNotFound.
func (s *Store) GetJob(ctx context.Context, jobID string) (*models.JobInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT job_id, inc, window_before, status, progress, total_changes, errors, error,
		        job_type, username, search_summary, created_at, completed_at
		 FROM jobs WHERE job_id = $1`, jobID)
	return scanJob(row)
}

// ListJobs returns up to limit jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]models.JobInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, inc, window_before, status, progress, total_changes, errors, error,
		        job_type, username, search_summary, created_at, completed_at
		 FROM jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.JobInfo
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// DeleteJob removes a job and its dependent documents. Returns false when
// the job did not exist.
func (s *Store) DeleteJob(ctx context.Context, jobID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// UpdateJobStatus sets a job's status.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE jobs SET status = $1 WHERE job_id = $2`, status, jobID)
	return err
}

// UpdateJobProgress records extraction progress (percent and change count).
func (s *Store) UpdateJobProgress(ctx context.Context, jobID string, progress, totalChanges int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = $1, progress = $2, total_changes = $3 WHERE job_id = $4`,
		models.JobRunning, progress, totalChanges, jobID)
	return err
}

// CompleteJob marks a job finished with its final counts.
func (s *Store) CompleteJob(ctx context.Context, jobID string, totalChanges, errorCount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = $1, progress = 100, total_changes = $2, errors = $3, completed_at = $4
		 WHERE job_id = $5`,
		models.JobCompleted, totalChanges, errorCount, time.Now().UTC(), jobID)
	return err
}

// FailJob marks a job failed or cancelled with its terminal reason.
func (s *Store) FailJob(ctx context.Context, jobID string, status models.JobStatus, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = $1, error = $2, completed_at = $3 WHERE job_id = $4`,
		status, reason, time.Now().UTC(), jobID)
	return err
}

// SaveExtraction upserts the extraction document of a job.
func (s *Store) SaveExtraction(ctx context.Context, jobID string, data *models.ExtractionResult) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal extraction: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extractions (job_id, data) VALUES ($1, $2)
		 ON CONFLICT (job_id) DO UPDATE SET data = EXCLUDED.data`,
		jobID, blob)
	return err
}

// GetExtraction loads the extraction document of a job, or ErrNotFound.
func (s *Store) GetExtraction(ctx context.Context, jobID string) (*models.ExtractionResult, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM extractions WHERE job_id = $1`, jobID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get extraction: %w", err)
	}
	var data models.ExtractionResult
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("unmarshal extraction: %w", err)
	}
	return &data, nil
}

// SaveRanking appends a ranking computed with the given weights. Rankings
// are keyed by (job, weights hash, creation time) so every recomputation is
// kept.
func (s *Store) SaveRanking(ctx context.Context, jobID string, weights config.Weights, ranking *models.Ranking) error {
	weightsBlob, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	blob, err := json.Marshal(ranking)
	if err != nil {
		return fmt.Errorf("marshal ranking: %w", err)
	}
	hash := sha256.Sum256(weightsBlob)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rankings (job_id, weights, weights_hash, data, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		jobID, weightsBlob, hex.EncodeToString(hash[:8]), blob, time.Now().UTC())
	return err
}

// GetLatestRanking loads the most recent ranking of a job, or ErrNotFound.
func (s *Store) GetLatestRanking(ctx context.Context, jobID string) (*models.Ranking, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM rankings WHERE job_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		jobID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ranking: %w", err)
	}
	var ranking models.Ranking
	if err := json.Unmarshal(blob, &ranking); err != nil {
		return nil, fmt.Errorf("unmarshal ranking: %w", err)
	}
	return &ranking, nil
}

// GetConfigValue loads a config blob into out. Returns ErrNotFound when the
// key has never been written.
func (s *Store) GetConfigValue(ctx context.Context, key string, out any) error {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = $1`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get config %q: %w", key, err)
	}
	return json.Unmarshal(blob, out)
}

// SetConfigValue upserts a config blob.
func (s *Store) SetConfigValue(ctx context.Context, key string, value any) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal config %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO config (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, blob)
	return err
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*models.JobInfo, error) {
	var job models.JobInfo
	var totalChanges sql.NullInt64
	var errMsg, username, summary sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&job.ID, &job.Incident, &job.Window, &job.Status, &job.Progress,
		&totalChanges, &job.Errors, &errMsg, &job.Type, &username, &summary,
		&job.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if totalChanges.Valid {
		v := int(totalChanges.Int64)
		job.TotalChanges = &v
	}
	job.Error = errMsg.String
	job.Username = username.String
	job.SearchSummary = summary.String
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return &job, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
