package reminder

import (
	"strings"
	"testing"

	"github.com/hellausefulsoftware/backport-reminder/internal/common/vcs"
	"github.com/stretchr/testify/assert"
)

func TestMentions(t *testing.T) {
	tests := []struct {
		name   string
		detail *vcs.PullRequestDetail
		author string
		want   []string
	}{
		{
			name:   "author only",
			detail: &vcs.PullRequestDetail{RepoOwner: "acme"},
			author: "alice",
			want:   []string{"@alice"},
		},
		{
			name: "reviewers and teams",
			detail: &vcs.PullRequestDetail{
				RepoOwner:          "acme",
				RequestedReviewers: []string{"carol", "dave"},
				RequestedTeams:     []string{"release-team"},
			},
			author: "alice",
			want:   []string{"@alice", "@carol", "@dave", "@acme/release-team"},
		},
		{
			name: "duplicates removed in first-seen order",
			detail: &vcs.PullRequestDetail{
				RepoOwner:          "acme",
				RequestedReviewers: []string{"carol", "alice", "carol", "Carol"},
				RequestedTeams:     []string{"core", "core"},
			},
			author: "alice",
			want:   []string{"@alice", "@carol", "@acme/core"},
		},
		{
			name:   "empty entries dropped",
			detail: &vcs.PullRequestDetail{RepoOwner: "acme", RequestedReviewers: []string{"", " "}, RequestedTeams: []string{""}},
			author: "",
			want:   []string{},
		},
		{
			name:   "nil detail",
			detail: nil,
			author: "alice",
			want:   []string{"@alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mentions(tt.detail, tt.author))
		})
	}
}

func TestCompose(t *testing.T) {
	body := Compose(Params{
		Marker:    "[backport-pending-reminder]",
		Mentions:  []string{"@alice", "@acme/release-team"},
		AgeDays:   10,
		Label:     "backport-pending",
		Threshold: 7,
		Interval:  7,
	})

	lines := strings.Split(body, "\n")
	assert.Equal(t, "[backport-pending-reminder]", lines[0])
	assert.Contains(t, body, "@alice @acme/release-team")
	assert.Contains(t, body, "`backport-pending` label for 10 days")
	assert.Contains(t, body, "past the 7 days threshold")
	assert.Contains(t, body, "repeats every 7 days")
}

func TestComposeSingularAndNoMentions(t *testing.T) {
	body := Compose(Params{Marker: "<!-- nag -->", AgeDays: 1, Label: "bp", Threshold: 1, Interval: 1})

	assert.True(t, strings.HasPrefix(body, "<!-- nag -->\n\nThis pull request"))
	assert.Contains(t, body, "for 1 day,")
	assert.NotContains(t, body, "@")
}
