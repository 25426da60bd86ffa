package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v45/github"
	"golang.org/x/oauth2"
)

const (
	// userAgent is sent with every request as the client identifier.
	userAgent = "backport-reminder"
	// perPage is the page size requested from list endpoints.
	perPage = 100

	requestTimeout = 30 * time.Second
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client handles GitHub API interactions
type Client struct {
	client     *github.Client
	now        func() time.Time
	sleep      Sleeper
	margin     time.Duration
	maxRetries int
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at another API root, such as GitHub Enterprise
// or a test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		if raw == "" {
			return nil
		}
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid API URL %q: %w", raw, err)
		}
		c.client.BaseURL = u
		c.client.UploadURL = u
		return nil
	}
}

// WithClock replaces time.Now for rate-limit wait calculations.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		c.now = now
		return nil
	}
}

// WithSleeper replaces the blocking wait used during rate-limit backoff.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) error {
		c.sleep = s
		return nil
	}
}

// WithRateLimit sets the safety margin added after the quota reset and the
// number of rate-limit retries per request (0 means no bound).
func WithRateLimit(margin time.Duration, maxRetries int) Option {
	return func(c *Client) error {
		c.margin = margin
		c.maxRetries = maxRetries
		return nil
	}
}

// NewClient creates a new GitHub client authenticated with a bearer token
func NewClient(token string, opts ...Option) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = requestTimeout

	gh := github.NewClient(tc)
	gh.UserAgent = userAgent

	c := &Client{
		client: gh,
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// getResource fetches a single object into v.
func (c *Client) getResource(ctx context.Context, path string, v any) error {
	_, err := c.do(ctx, http.MethodGet, path, nil, v)
	return err
}

// do issues one logical request, retrying it while the API reports an
// exhausted quota.
func (c *Client) do(ctx context.Context, method, path string, body, v any) (*github.Response, error) {
	return c.withRateLimitRetry(ctx, path, func() (*github.Response, error) {
		req, err := c.client.NewRequest(method, path, body)
		if err != nil {
			return nil, err
		}
		return c.client.Do(ctx, req, v)
	})
}

// paginate walks a list endpoint page by page, starting at page 1, and stops at
// the first page holding fewer than perPage items.
func paginate[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))

		var items []T
		if _, err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &items); err != nil {
			return nil, err
		}
		all = append(all, items...)

		if len(items) < perPage {
			return all, nil
		}
	}
}

// CreateComment posts a comment on an issue or pull request
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (*github.IssueComment, error) {
	path := fmt.Sprintf("repos/%s/%s/issues/%d/comments", owner, repo, number)
	comment := new(github.IssueComment)
	if _, err := c.do(ctx, http.MethodPost, path, &github.IssueComment{Body: github.String(body)}, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetUserInfo gets information about the authenticated user
func (c *Client) GetUserInfo(ctx context.Context) (*github.User, error) {
	user := new(github.User)
	if err := c.getResource(ctx, "user", user); err != nil {
		return nil, err
	}
	return user, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
