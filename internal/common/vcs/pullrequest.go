package vcs

// PullRequestDetail holds the parts of a pull request the reminder needs
type PullRequestDetail struct {
	Number     int
	BaseBranch string
	// RepoOwner qualifies team mentions as @owner/team.
	RepoOwner          string
	RequestedReviewers []string
	RequestedTeams     []string
}
