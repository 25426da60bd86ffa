package vcs

import "context"

// Service is the repository-scoped API surface the reminder workflow consumes.
// Implementations are bound to a single repository.
type Service interface {
	ListLabeledIssues(ctx context.Context, label string) ([]Candidate, error)
	GetPullRequest(ctx context.Context, number int) (*PullRequestDetail, error)
	ListLabelEvents(ctx context.Context, number int) ([]LabelEvent, error)
	ListComments(ctx context.Context, number int) ([]Comment, error)
	PostComment(ctx context.Context, number int, body string) (*Comment, error)
}

// AccessReport summarises what the credential can see.
type AccessReport struct {
	User          string
	Repository    string
	DefaultBranch string
	LabelExists   bool
}

// Verifier checks credentials and repository access without side effects.
type Verifier interface {
	Verify(ctx context.Context, label string) (*AccessReport, error)
}
