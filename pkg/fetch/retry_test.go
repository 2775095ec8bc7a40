package fetch

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyLinearSchedule(t *testing.T) {
	p := newRetryPolicy()

	// transient errors: 2s after attempt 1, 4s after attempt 2, then stop
	assert.Equal(t, 2*time.Second, p.NextBackOff())
	assert.Equal(t, 4*time.Second, p.NextBackOff())
	assert.Equal(t, backoff.Stop, p.NextBackOff())
}

func TestRetryPolicyRateLimitedSchedule(t *testing.T) {
	p := newRetryPolicy()
	p.rateLimited = true

	// rate limited: 2 * 2^(attempt-1)
	assert.Equal(t, 2*time.Second, p.NextBackOff())
	assert.Equal(t, 4*time.Second, p.NextBackOff())
	assert.Equal(t, backoff.Stop, p.NextBackOff())
}

func TestRetryPolicyReset(t *testing.T) {
	p := newRetryPolicy()
	p.rateLimited = true
	p.NextBackOff()
	p.NextBackOff()

	p.Reset()
	assert.False(t, p.rateLimited)
	assert.Equal(t, 2*time.Second, p.NextBackOff())
}
