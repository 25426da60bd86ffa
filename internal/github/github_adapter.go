// Package github provides the GitHub implementation of the vcs interfaces
package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-github/v45/github"
	"github.com/hellausefulsoftware/backport-reminder/internal/common/vcs"
	"github.com/hellausefulsoftware/backport-reminder/internal/config"
	"github.com/hellausefulsoftware/backport-reminder/internal/logging"
)

// Adapter implements vcs.Service and vcs.Verifier for one repository
type Adapter struct {
	client *Client
	owner  string
	repo   string
}

// NewAdapter creates a new GitHub adapter bound to the configured repository
func NewAdapter(cfg *config.Config, opts ...Option) (*Adapter, error) {
	if cfg.GitHub.Token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	base := []Option{
		WithBaseURL(cfg.GitHub.APIURL),
		WithRateLimit(cfg.RateLimit.Margin, cfg.RateLimit.MaxRetries),
	}
	client, err := NewClient(cfg.GitHub.Token, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client: client,
		owner:  cfg.GitHub.Owner,
		repo:   cfg.GitHub.Name,
	}, nil
}

func (a *Adapter) repoPath(format string, args ...any) string {
	return fmt.Sprintf("repos/%s/%s/", a.owner, a.repo) + fmt.Sprintf(format, args...)
}

// ListLabeledIssues returns every open issue and pull request carrying label
func (a *Adapter) ListLabeledIssues(ctx context.Context, label string) ([]vcs.Candidate, error) {
	query := url.Values{
		"state":  {"open"},
		"labels": {label},
	}
	issues, err := paginate[*github.Issue](ctx, a.client, a.repoPath("issues"), query)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues labeled %q: %w", label, err)
	}

	candidates := make([]vcs.Candidate, 0, len(issues))
	for _, issue := range issues {
		candidates = append(candidates, vcs.Candidate{
			Number:        issue.GetNumber(),
			Author:        issue.GetUser().GetLogin(),
			Title:         issue.GetTitle(),
			IsPullRequest: issue.IsPullRequest(),
		})
	}

	logging.Debug("Listed labeled issues", "label", label, "count", len(candidates))
	return candidates, nil
}

// GetPullRequest fetches base branch and requested reviewers of a pull request
func (a *Adapter) GetPullRequest(ctx context.Context, number int) (*vcs.PullRequestDetail, error) {
	pr := new(github.PullRequest)
	if err := a.client.getResource(ctx, a.repoPath("pulls/%d", number), pr); err != nil {
		return nil, fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}

	owner := pr.GetBase().GetRepo().GetOwner().GetLogin()
	if owner == "" {
		owner = a.owner
	}

	detail := &vcs.PullRequestDetail{
		Number:     pr.GetNumber(),
		BaseBranch: pr.GetBase().GetRef(),
		RepoOwner:  owner,
	}
	for _, user := range pr.RequestedReviewers {
		detail.RequestedReviewers = append(detail.RequestedReviewers, user.GetLogin())
	}
	for _, team := range pr.RequestedTeams {
		detail.RequestedTeams = append(detail.RequestedTeams, team.GetSlug())
	}
	return detail, nil
}

// ListLabelEvents returns the label-bearing events of an issue's timeline
func (a *Adapter) ListLabelEvents(ctx context.Context, number int) ([]vcs.LabelEvent, error) {
	events, err := paginate[*github.IssueEvent](ctx, a.client, a.repoPath("issues/%d/events", number), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for #%d: %w", number, err)
	}

	var out []vcs.LabelEvent
	for _, event := range events {
		if event.Label == nil {
			continue
		}
		out = append(out, vcs.LabelEvent{
			Type:      event.GetEvent(),
			Label:     event.GetLabel().GetName(),
			CreatedAt: event.GetCreatedAt(),
		})
	}
	return out, nil
}

// ListComments returns all comments on an issue with the author kind resolved
func (a *Adapter) ListComments(ctx context.Context, number int) ([]vcs.Comment, error) {
	comments, err := paginate[*github.IssueComment](ctx, a.client, a.repoPath("issues/%d/comments", number), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for #%d: %w", number, err)
	}

	out := make([]vcs.Comment, 0, len(comments))
	for _, comment := range comments {
		out = append(out, convertComment(comment))
	}
	return out, nil
}

// PostComment posts a comment on a GitHub issue or pull request
func (a *Adapter) PostComment(ctx context.Context, number int, body string) (*vcs.Comment, error) {
	created, err := a.client.CreateComment(ctx, a.owner, a.repo, number, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment on #%d: %w", number, err)
	}
	comment := convertComment(created)
	return &comment, nil
}

// Verify checks that the token works, the repository is visible and the label
// exists. A missing label is reported, not treated as an error.
func (a *Adapter) Verify(ctx context.Context, label string) (*vcs.AccessReport, error) {
	user, err := a.client.GetUserInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub token: %w", err)
	}

	repo := new(github.Repository)
	if err := a.client.getResource(ctx, fmt.Sprintf("repos/%s/%s", a.owner, a.repo), repo); err != nil {
		return nil, fmt.Errorf("unable to access repository %s/%s: %w", a.owner, a.repo, err)
	}

	report := &vcs.AccessReport{
		User:          user.GetLogin(),
		Repository:    repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
	}

	err = a.client.getResource(ctx, a.repoPath("labels/%s", url.PathEscape(label)), new(github.Label))
	switch {
	case err == nil:
		report.LabelExists = true
	case IsNotFound(err):
		report.LabelExists = false
	default:
		return nil, fmt.Errorf("unable to look up label %q: %w", label, err)
	}

	return report, nil
}

func convertComment(comment *github.IssueComment) vcs.Comment {
	user := comment.GetUser()
	return vcs.Comment{
		ID:         comment.GetID(),
		Author:     user.GetLogin(),
		AuthorKind: vcs.ResolveAuthorKind(user.GetType(), user.GetLogin()),
		Body:       comment.GetBody(),
		CreatedAt:  comment.GetCreatedAt(),
	}
}
