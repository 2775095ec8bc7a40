package models

import "time"

// Phase identifies where a job currently is in its lifecycle.
type Phase string

// Job phases, in order of occurrence.
const (
	PhaseConnecting Phase = "connecting"
	PhaseExtracting Phase = "extracting"
	PhaseScoring    Phase = "scoring"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// ProgressFunc receives progress updates from a running job. Implementations
// must be safe for concurrent use and treat non-increasing done values as
// no-ops.
type ProgressFunc func(done, total int, phase Phase)

// ScoreDetail is one sub-score with its explanation and the concrete values
// that matched.
type ScoreDetail struct {
	Score   float64  `json:"score"`
	Reason  string   `json:"reason"`
	Matches []string `json:"matches"`
}

// SubScores collects the four sub-score values of a candidate.
type SubScores struct {
	Time    float64 `json:"time"`
	Service float64 `json:"service"`
	Infra   float64 `json:"infra"`
	Org     float64 `json:"org"`
}

// CandidateInfo is the snapshot of a scored change embedded in the ranking,
// so the ranking is self-contained for display.
type CandidateInfo struct {
	Assignee      string     `json:"assignee,omitempty"`
	Team          string     `json:"team,omitempty"`
	PlannedStart  *time.Time `json:"planned_start,omitempty"`
	PlannedEnd    *time.Time `json:"planned_end,omitempty"`
	LiveIntervals []Interval `json:"live_intervals"`
	Resolution    string     `json:"resolution,omitempty"`
	Services      []string   `json:"services"`
	Hosts         []string   `json:"hosts"`
	Technologies  []string   `json:"technologies"`
}

// RankedCandidate is one entry of a ranking. Rank 1 is the most likely cause.
type RankedCandidate struct {
	Rank       int         `json:"rank"`
	Key        string      `json:"issue_key"`
	Summary    string      `json:"summary"`
	FinalScore float64     `json:"final_score"`
	SubScores  SubScores   `json:"sub_scores"`
	Time       ScoreDetail `json:"time"`
	Service    ScoreDetail `json:"service"`
	Infra      ScoreDetail `json:"infra"`
	Org        ScoreDetail `json:"org"`
	Penalties  []string    `json:"penalties"`
	Bonuses    []string    `json:"bonuses"`

	Candidate CandidateInfo `json:"candidate_info"`
}

// IncidentInfo summarizes the incident a ranking was computed against.
type IncidentInfo struct {
	Key             string     `json:"issue_key"`
	Summary         string     `json:"summary"`
	FirstImpactTime *time.Time `json:"first_impact_time,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	Services        []string   `json:"services"`
	Hosts           []string   `json:"hosts"`
	Technologies    []string   `json:"technologies"`
}

// AnalysisInfo carries the parameters and counts of one scoring pass.
type AnalysisInfo struct {
	CandidatesAnalyzed int       `json:"changes_analyzed"`
	CandidatesRanked   int       `json:"changes_in_ranking"`
	ScoredAt           time.Time `json:"scored_at"`
}

// Ranking is the complete, reproducible output of one scoring pass.
type Ranking struct {
	Incident   IncidentInfo      `json:"incident"`
	Analysis   AnalysisInfo      `json:"analysis"`
	Candidates []RankedCandidate `json:"ranking"`
}

// JobStatus is the lifecycle state of a stored job.
type JobStatus string

// Job statuses.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// JobType distinguishes how a job was created.
type JobType string

// Job types.
const (
	JobTypeStandard JobType = "standard" // real incident, default options
	JobTypeCustom   JobType = "custom"   // real incident, custom search options
	JobTypeManual   JobType = "manual"   // virtual incident
)

// JobInfo is the stored record of an extraction job.
type JobInfo struct {
	ID            string     `json:"job_id"`
	Incident      string     `json:"inc"`
	Window        string     `json:"window"`
	Status        JobStatus  `json:"status"`
	Progress      int        `json:"progress"`
	TotalChanges  *int       `json:"total_changes,omitempty"`
	Errors        int        `json:"errors"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Type          JobType    `json:"job_type"`
	Username      string     `json:"username,omitempty"`
	SearchSummary string     `json:"search_summary,omitempty"`
}

// ExtractionResult is the document persisted per job: the incident, every
// fetched candidate, and run metadata. Rankings are recomputable from this
// plus a scoring config, with no tracker I/O.
type ExtractionResult struct {
	Info    ExtractionInfo `json:"extraction_info"`
	Tickets []*Ticket      `json:"tickets"`
}

// ExtractionInfo is run metadata for a persisted extraction.
type ExtractionInfo struct {
	Version       string        `json:"version"`
	ExtractedAt   time.Time     `json:"extracted_at"`
	TotalTickets  int           `json:"total_tickets"`
	SourceMode    string        `json:"source_mode"`
	IncidentKey   string        `json:"inc_key,omitempty"`
	Window        string        `json:"window"`
	Errors        int           `json:"errors"`
	SearchOptions SearchOptions `json:"search_options"`
}

// Incident returns the first incident ticket of the extraction, or nil.
func (e *ExtractionResult) Incident() *Ticket {
	for _, t := range e.Tickets {
		if t.Kind == KindIncident {
			return t
		}
	}
	return nil
}

// Candidates returns the change tickets eligible for scoring.
func (e *ExtractionResult) Candidates(includeExternalMaintenance bool) []*Ticket {
	var out []*Ticket
	for _, t := range e.Tickets {
		if t.IsCandidateKind(includeExternalMaintenance) {
			out = append(out, t)
		}
	}
	return out
}
