package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeWithoutOverrideFile(t *testing.T) {
	cfg, err := Initialize(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), cfg.Scoring.Weights)
	assert.Equal(t, 8, cfg.FetchConcurrency)
}

func TestInitializeMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
tracker_url: https://jira.example.org
fetch_concurrency: 4
scoring:
  weights:
    time: 0.5
    service: 0.2
    infra: 0.2
    org: 0.1
  thresholds:
    time_decay_hours: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yaml), 0o644))

	cfg, err := Initialize(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://jira.example.org", cfg.TrackerURL)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.InDelta(t, 0.5, cfg.Scoring.Weights.Time, 1e-9)
	assert.InDelta(t, 8.0, cfg.Scoring.Thresholds.TimeDecayHours, 1e-9)

	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultPenalties(), cfg.Scoring.Penalties)
	assert.NotEmpty(t, cfg.Tables.Technologies)
}

func TestInitializeRejectsInvalidOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
scoring:
  thresholds:
    time_decay_hours: 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yaml), 0o644))

	_, err := Initialize(dir)
	require.Error(t, err)
	var cfgErr *Error
	assert.ErrorAs(t, err, &cfgErr)
}

func TestInitializeRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not yaml"), 0o644))

	_, err := Initialize(dir)
	assert.Error(t, err)
}
