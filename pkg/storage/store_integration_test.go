package storage

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/models"
)

// newTestStore spins up a PostgreSQL testcontainer, connects through
// NewClient (running the embedded migrations), and returns a ready store.
func newTestStore(t *testing.T) *Store {
	if testing.Short() {
		t.Skip("skipping container-backed storage test in -short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	client, err := NewClient(ctx, configFromURL(t, connStr))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client)
}

func configFromURL(t *testing.T, connStr string) Config {
	t.Helper()
	u, err := url.Parse(connStr)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	password, _ := u.User.Password()
	return Config{
		Host:            u.Hostname(),
		Port:            port,
		User:            u.User.Username(),
		Password:        password,
		Database:        strings.TrimPrefix(u.Path, "/"),
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
	}
}

func TestJobLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jobID, err := store.CreateJob(ctx, "INC-117346", "48h", models.JobTypeStandard, "jdoe", "")
	require.NoError(t, err)

	job, err := store.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, "INC-117346", job.Incident)
	assert.Equal(t, models.JobPending, job.Status)
	assert.Equal(t, "jdoe", job.Username)
	assert.Nil(t, job.CompletedAt)

	require.NoError(t, store.UpdateJobStatus(ctx, jobID, models.JobRunning))
	require.NoError(t, store.UpdateJobProgress(ctx, jobID, 40, 12))

	job, err = store.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobRunning, job.Status)
	assert.Equal(t, 40, job.Progress)
	require.NotNil(t, job.TotalChanges)
	assert.Equal(t, 12, *job.TotalChanges)

	require.NoError(t, store.CompleteJob(ctx, jobID, 12, 2))
	job, err = store.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, 2, job.Errors)
	assert.NotNil(t, job.CompletedAt)
}

func TestFailJobRecordsReason(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jobID, err := store.CreateJob(ctx, "INC-1", "48h", models.JobTypeStandard, "", "")
	require.NoError(t, err)
	require.NoError(t, store.FailJob(ctx, jobID, models.JobFailed, "tracker authentication failed"))

	job, err := store.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Contains(t, job.Error, "authentication")
}

func TestListJobsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateJob(ctx, "INC-1", "48h", models.JobTypeStandard, "", "")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := store.CreateJob(ctx, "INC-2", "48h", models.JobTypeManual, "", "3 services")
	require.NoError(t, err)

	jobs, err := store.ListJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second, jobs[0].ID)
	assert.Equal(t, first, jobs[1].ID)

	limited, err := store.ListJobs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestExtractionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jobID, err := store.CreateJob(ctx, "INC-1", "48h", models.JobTypeStandard, "", "")
	require.NoError(t, err)

	created := time.Date(2025, 7, 22, 12, 0, 0, 0, time.UTC)
	data := &models.ExtractionResult{
		Info: models.ExtractionInfo{
			Version:      models.ExtractionVersion,
			ExtractedAt:  created,
			TotalTickets: 1,
			SourceMode:   "inc+window",
		},
		Tickets: []*models.Ticket{{
			Key:  "INC-1",
			Kind: models.KindIncident,
			Times: models.Times{
				CreatedAt:     &created,
				LiveIntervals: []models.Interval{},
			},
			Entities: models.Entities{Services: []string{"compute"}},
		}},
	}
	require.NoError(t, store.SaveExtraction(ctx, jobID, data))

	loaded, err := store.GetExtraction(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, loaded.Tickets, 1)
	assert.Equal(t, "INC-1", loaded.Tickets[0].Key)
	assert.Equal(t, []string{"compute"}, loaded.Tickets[0].Entities.Services)
	assert.True(t, created.Equal(*loaded.Tickets[0].Times.CreatedAt))

	_, err = store.GetExtraction(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRankingHistoryKeepsEveryRecomputation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jobID, err := store.CreateJob(ctx, "INC-1", "48h", models.JobTypeStandard, "", "")
	require.NoError(t, err)

	_, err = store.GetLatestRanking(ctx, jobID)
	assert.ErrorIs(t, err, ErrNotFound)

	first := &models.Ranking{Incident: models.IncidentInfo{Key: "INC-1"}}
	require.NoError(t, store.SaveRanking(ctx, jobID, config.DefaultWeights(), first))

	time.Sleep(10 * time.Millisecond)
	second := &models.Ranking{
		Incident:   models.IncidentInfo{Key: "INC-1"},
		Candidates: []models.RankedCandidate{{Rank: 1, Key: "TECCM-1"}},
	}
	require.NoError(t, store.SaveRanking(ctx, jobID, config.Weights{Time: 1}, second))

	latest, err := store.GetLatestRanking(ctx, jobID)
	require.NoError(t, err)
	assert.Len(t, latest.Candidates, 1)
}

func TestDeleteJobCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jobID, err := store.CreateJob(ctx, "INC-1", "48h", models.JobTypeStandard, "", "")
	require.NoError(t, err)
	require.NoError(t, store.SaveExtraction(ctx, jobID, &models.ExtractionResult{}))
	require.NoError(t, store.SaveRanking(ctx, jobID, config.DefaultWeights(), &models.Ranking{}))

	deleted, err := store.DeleteJob(ctx, jobID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.GetExtraction(ctx, jobID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetLatestRanking(ctx, jobID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err = store.DeleteJob(ctx, jobID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestConfigBlobsAndSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	settings := NewSettings(store, config.Default())

	// defaults apply before anything is stored
	scoring, err := settings.Scoring(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultWeights(), scoring.Weights)
	assert.Equal(t, config.DefaultTopResults, settings.TopResults(ctx))

	// stored overrides win on the next read
	custom := config.Weights{Time: 0.4, Service: 0.3, Infra: 0.2, Org: 0.1}
	require.NoError(t, settings.SetWeights(ctx, custom))
	require.NoError(t, settings.SetTopResults(ctx, 50))
	require.NoError(t, settings.SetServiceSynonyms(ctx, map[string][]string{"mail": {"email"}}))

	scoring, err = settings.Scoring(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, scoring.Weights)
	assert.Equal(t, map[string][]string{"mail": {"email"}}, scoring.ServiceSynonyms)
	assert.Equal(t, 50, settings.TopResults(ctx))

	// invalid values never reach storage
	assert.Error(t, settings.SetWeights(ctx, config.Weights{Time: 5}))
	assert.Error(t, settings.SetTopResults(ctx, 1000))
}
