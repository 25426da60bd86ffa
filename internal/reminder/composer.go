// Package reminder builds the comment posted on pull requests awaiting a backport
package reminder

import (
	"fmt"
	"strings"

	"github.com/hellausefulsoftware/backport-reminder/internal/common/vcs"
)

// Params holds everything that appears in a reminder body
type Params struct {
	Marker    string
	Mentions  []string
	AgeDays   int
	Label     string
	Threshold int
	Interval  int
}

// Mentions lists the author, requested reviewers and requested teams as
// @-mentions. Teams are qualified by the repository owner. Duplicates are
// dropped keeping the first occurrence.
func Mentions(detail *vcs.PullRequestDetail, author string) []string {
	var raw []string
	raw = append(raw, author)
	if detail != nil {
		raw = append(raw, detail.RequestedReviewers...)
		for _, team := range detail.RequestedTeams {
			if team == "" {
				continue
			}
			raw = append(raw, detail.RepoOwner+"/"+team)
		}
	}

	seen := make(map[string]bool, len(raw))
	mentions := make([]string, 0, len(raw))
	for _, handle := range raw {
		handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
		if handle == "" || strings.HasSuffix(handle, "/") {
			continue
		}
		key := strings.ToLower(handle)
		if seen[key] {
			continue
		}
		seen[key] = true
		mentions = append(mentions, "@"+handle)
	}
	return mentions
}

// Compose renders the reminder comment. The marker is on the first line so
// later runs can find the comment.
func Compose(p Params) string {
	var b strings.Builder

	b.WriteString(p.Marker)
	b.WriteString("\n\n")
	if len(p.Mentions) > 0 {
		b.WriteString(strings.Join(p.Mentions, " "))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "This pull request has carried the `%s` label for %s, past the %s threshold. ",
		p.Label, days(p.AgeDays), days(p.Threshold))
	b.WriteString("Please open the backport or remove the label once it is no longer needed.\n\n")
	fmt.Fprintf(&b, "_This reminder repeats every %s while the label stays on._\n", days(p.Interval))

	return b.String()
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
