package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/codeready-toolchain/correlator/pkg/metrics"
)

const (
	apiPrefix = "/rest/api/2"

	// requestsPerSecond caps outbound request rate per client so a single
	// fetch pool cannot trip the tracker's rate limiter on its own.
	requestsPerSecond = 10
	burstSize         = 20
)

// Client is an authenticated tracker client. It is safe for concurrent use;
// the underlying http.Client pools connections.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a tracker client for the given base URL and credentials.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
	}
}

// BaseURL returns the tracker base URL, used to build browse links.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Myself validates the credentials by fetching the authenticated account.
func (c *Client) Myself(ctx context.Context) (*Myself, error) {
	var me Myself
	if err := c.getJSON(ctx, apiPrefix+"/myself", &me); err != nil {
		return nil, fmt.Errorf("validate credentials: %w", err)
	}
	return &me, nil
}

// Issue fetches a single issue with its changelog expanded.
func (c *Client) Issue(ctx context.Context, key string) (*RawIssue, error) {
	var issue RawIssue
	path := fmt.Sprintf("%s/issue/%s?expand=changelog", apiPrefix, url.PathEscape(key))
	if err := c.getJSON(ctx, path, &issue); err != nil {
		return nil, fmt.Errorf("fetch issue %s: %w", key, err)
	}
	return &issue, nil
}

// Comments fetches all comments of an issue.
func (c *Client) Comments(ctx context.Context, key string) ([]RawComment, error) {
	var page commentPage
	path := fmt.Sprintf("%s/issue/%s/comment", apiPrefix, url.PathEscape(key))
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("fetch comments of %s: %w", key, err)
	}
	return page.Comments, nil
}

// Search runs a JQL query and returns the matching issue keys, capped at
// maxResults.
func (c *Client) Search(ctx context.Context, jql string, maxResults int) ([]string, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("fields", "key")

	var result searchResult
	if err := c.getJSON(ctx, apiPrefix+"/search?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("search %q: %w", jql, err)
	}

	keys := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		keys = append(keys, issue.Key)
	}
	return keys, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TrackerRequest("error")
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		metrics.TrackerRequest("ok")
	case resp.StatusCode >= 500:
		metrics.TrackerRequest("5xx")
	default:
		metrics.TrackerRequest("4xx")
	}

	if resp.StatusCode != http.StatusOK {
		// The body is part of the error text so rate-limit hints like
		// "too many requests" survive into the retry classifier.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Text: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
