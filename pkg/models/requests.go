package models

// LoginRequest carries tracker credentials for session creation.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse reports the outcome of a login attempt.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// SessionInfo describes the current authentication state.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	TrackerURL    string `json:"jira_url"`
}

// ExtractionRequest starts a correlation job for a real incident.
type ExtractionRequest struct {
	Incident      string         `json:"inc" binding:"required"`
	Window        string         `json:"window,omitempty"` // legacy, superseded by search_options
	SearchOptions *SearchOptions `json:"search_options,omitempty"`
}

// ManualAnalysisRequest starts a correlation job for a virtual incident.
type ManualAnalysisRequest struct {
	Name          string         `json:"name,omitempty"`
	ImpactTime    string         `json:"impact_time" binding:"required"`
	Services      []string       `json:"services"`
	Hosts         []string       `json:"hosts"`
	Technologies  []string       `json:"technologies"`
	Team          string         `json:"team,omitempty"`
	SearchOptions *SearchOptions `json:"search_options,omitempty"`
}

// ExtractionResponse acknowledges job creation.
type ExtractionResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// JobListResponse lists recent jobs, newest first.
type JobListResponse struct {
	Jobs []JobInfo `json:"jobs"`
}

// WeightsRequest is a partial weight override; nil fields keep the stored
// defaults.
type WeightsRequest struct {
	Time    *float64 `json:"time,omitempty"`
	Service *float64 `json:"service,omitempty"`
	Infra   *float64 `json:"infra,omitempty"`
	Org     *float64 `json:"org,omitempty"`
}

// ScoreRequest re-ranks a stored extraction with custom weights.
type ScoreRequest struct {
	JobID   string          `json:"job_id" binding:"required"`
	Weights *WeightsRequest `json:"weights,omitempty"`
}

// CandidateDetailResponse is the full decomposition of one scored change.
type CandidateDetailResponse struct {
	Key        string        `json:"issue_key"`
	Summary    string        `json:"summary"`
	FinalScore float64       `json:"final_score"`
	SubScores  SubScores     `json:"sub_scores"`
	Time       ScoreDetail   `json:"time"`
	Service    ScoreDetail   `json:"service"`
	Infra      ScoreDetail   `json:"infra"`
	Org        ScoreDetail   `json:"org"`
	Penalties  []string      `json:"penalties"`
	Bonuses    []string      `json:"bonuses"`
	Candidate  CandidateInfo `json:"candidate_info"`
	TrackerURL string        `json:"jira_url"`
}
