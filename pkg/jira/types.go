// Package jira is the REST adapter over the ticket tracker. It exposes the
// three operations the engine needs (issue, comments, search) with
// per-request basic auth and a status-code error taxonomy.
package jira

// User is a tracker account reference as it appears inside issue fields.
type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// RawIssue is an unnormalized tracker issue. Fields is kept as a generic map
// because custom field IDs are installation-specific; the extract package
// resolves them through the injected field mapping.
type RawIssue struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// RawComment is one unnormalized issue comment.
type RawComment struct {
	ID      string `json:"id"`
	Author  User   `json:"author"`
	Created string `json:"created"`
	Body    string `json:"body"`
}

// commentPage is the tracker's comment listing envelope.
type commentPage struct {
	Comments []RawComment `json:"comments"`
}

// searchResult is the tracker's search response; only keys are consumed.
type searchResult struct {
	Issues []struct {
		Key string `json:"key"`
	} `json:"issues"`
}

// Myself is the authenticated account, used to validate credentials.
type Myself struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}
