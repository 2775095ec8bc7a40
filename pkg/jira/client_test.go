package jira

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "user", "secret")
}

func TestIssueFetchesAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/TECCM-42", r.URL.Path)
		assert.Equal(t, "changelog", r.URL.Query().Get("expand"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":"TECCM-42","fields":{"summary":"change s3 config"}}`))
	})

	issue, err := client.Issue(context.Background(), "TECCM-42")
	require.NoError(t, err)
	assert.Equal(t, "TECCM-42", issue.Key)
	assert.Equal(t, "change s3 config", issue.Fields["summary"])
}

func TestCommentsFetchesPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/TECCM-42/comment", r.URL.Path)
		_, _ = w.Write([]byte(`{"comments":[
			{"id":"1","author":{"name":"jdoe","displayName":"John Doe"},"body":"[22/07/2025 12:00, 13:00]"}
		]}`))
	})

	comments, err := client.Comments(context.Background(), "TECCM-42")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "John Doe", comments[0].Author.DisplayName)
	assert.Contains(t, comments[0].Body, "22/07/2025")
}

func TestSearchReturnsKeys(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Equal(t, `project = TECCM`, r.URL.Query().Get("jql"))
		assert.Equal(t, "500", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(`{"issues":[{"key":"TECCM-1"},{"key":"TECCM-2"}]}`))
	})

	keys, err := client.Search(context.Background(), "project = TECCM", 500)
	require.NoError(t, err)
	assert.Equal(t, []string{"TECCM-1", "TECCM-2"}, keys)
}

func TestMyselfValidatesCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/myself", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"jdoe","displayName":"John Doe"}`))
	})

	me, err := client.Myself(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "John Doe", me.DisplayName)
}

func TestStatusErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		auth      bool
		notFound  bool
		rateLimit bool
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, "bad credentials", true, false, false, false},
		{"forbidden", http.StatusForbidden, "denied", true, false, false, false},
		{"not found", http.StatusNotFound, "no such issue", false, true, false, false},
		{"rate limited", http.StatusTooManyRequests, "slow down", false, false, true, true},
		{"rate text", http.StatusServiceUnavailable, "rate limit exceeded", false, false, true, true},
		{"server error", http.StatusInternalServerError, "boom", false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Issue(context.Background(), "TECCM-1")
			require.Error(t, err)
			assert.Equal(t, tt.auth, IsAuth(err))
			assert.Equal(t, tt.notFound, IsNotFound(err))
			assert.Equal(t, tt.rateLimit, IsRateLimit(err))
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestTransportErrorIsRetryable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "user", "secret") // nothing listening

	_, err := client.Issue(context.Background(), "TECCM-1")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.False(t, IsAuth(err))
}
