package job

import "errors"

// Terminal error reasons surfaced to the caller. Per-candidate failures are
// aggregated into the errors counter instead and never fail a run.
var (
	// ErrAuth means the tracker rejected the credentials.
	ErrAuth = errors.New("tracker authentication failed")

	// ErrIncidentNotFound means the seed key does not exist in the tracker.
	ErrIncidentNotFound = errors.New("incident not found")

	// ErrNotIncident means the seed key resolved to a non-incident ticket.
	ErrNotIncident = errors.New("ticket is not an incident")

	// ErrCancelled means the run was cancelled before producing a ranking.
	ErrCancelled = errors.New("job cancelled")
)
