package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v45/github"
	"github.com/hellausefulsoftware/backport-reminder/internal/logging"
)

// withRateLimitRetry runs call until it succeeds or fails for a reason other
// than an exhausted quota. A rate-limited call is re-issued unchanged after
// waiting for the reset; pagination state lives in the caller and is never
// advanced here.
func (c *Client) withRateLimitRetry(ctx context.Context, path string, call func() (*github.Response, error)) (*github.Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := call()
		if err == nil {
			return resp, nil
		}

		wait, limited := c.rateLimitWait(err)
		if !limited || (c.maxRetries > 0 && attempt > c.maxRetries) {
			return resp, newFetchError(path, resp, err)
		}

		logging.Warn("GitHub rate limit reached, waiting before retry",
			"path", path,
			"wait", wait.Round(time.Second),
			"attempt", attempt)

		if err := c.sleep(ctx, wait); err != nil {
			return resp, fmt.Errorf("waiting for rate limit reset on %s: %w", path, err)
		}
	}
}

// rateLimitWait returns how long to wait before retrying, and whether err is a
// rate-limit signal at all.
func (c *Client) rateLimitWait(err error) (time.Duration, bool) {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		wait := rle.Rate.Reset.Time.Sub(c.now())
		if wait < 0 {
			wait = 0
		}
		return wait + c.margin, true
	}

	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		var wait time.Duration
		if abuse.RetryAfter != nil {
			wait = *abuse.RetryAfter
		}
		return wait + c.margin, true
	}

	return 0, false
}
