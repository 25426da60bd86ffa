// Package policy decides whether a labeled pull request is due a reminder.
package policy

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hellausefulsoftware/backport-reminder/internal/common/vcs"
	"github.com/hellausefulsoftware/backport-reminder/internal/config"
)

// Reason names why a candidate was skipped. The empty Reason means due.
type Reason string

const (
	ReasonNotPullRequest   Reason = "not-pull-request"
	ReasonBaseMismatch     Reason = "base-mismatch"
	ReasonLabelNotDated    Reason = "label-not-dated"
	ReasonTooYoung         Reason = "too-young"
	ReasonRecentlyReminded Reason = "recently-reminded"
)

// Source loads the per-candidate data the evaluator needs. Methods are called
// only when the preceding check passed.
type Source interface {
	GetPullRequest(ctx context.Context, number int) (*vcs.PullRequestDetail, error)
	ListLabelEvents(ctx context.Context, number int) ([]vcs.LabelEvent, error)
	ListComments(ctx context.Context, number int) ([]vcs.Comment, error)
}

// Decision is the outcome of evaluating one candidate.
type Decision struct {
	Due    bool
	Reason Reason
	// AgeDays is the label age in whole units, set once the label is dated.
	AgeDays        int
	LabeledAt      time.Time
	LastReminderAt time.Time
	// Detail is set once the pull request has been fetched.
	Detail *vcs.PullRequestDetail
}

// Label returns the decision as it appears in logs.
func (d Decision) Label() string {
	if d.Due {
		return "remind"
	}
	return "skip:" + string(d.Reason)
}

// Evaluator applies the reminder rules against a fixed clock reading.
type Evaluator struct {
	cfg config.ReminderConfig
	now time.Time
}

// NewEvaluator creates an evaluator. now is read once per run so every
// candidate is judged against the same instant.
func NewEvaluator(cfg config.ReminderConfig, now time.Time) *Evaluator {
	return &Evaluator{cfg: cfg, now: now}
}

// Evaluate runs the checks in order and stops at the first one that fails.
func (e *Evaluator) Evaluate(ctx context.Context, candidate vcs.Candidate, src Source) (Decision, error) {
	if !candidate.IsPullRequest {
		return skip(ReasonNotPullRequest), nil
	}

	detail, err := src.GetPullRequest(ctx, candidate.Number)
	if err != nil {
		return Decision{}, err
	}
	if detail.BaseBranch != e.cfg.TargetBranch {
		d := skip(ReasonBaseMismatch)
		d.Detail = detail
		return d, nil
	}

	events, err := src.ListLabelEvents(ctx, candidate.Number)
	if err != nil {
		return Decision{}, err
	}
	labeledAt, ok := LatestLabeledAt(events, e.cfg.Label)
	if !ok {
		d := skip(ReasonLabelNotDated)
		d.Detail = detail
		return d, nil
	}

	decision := Decision{
		AgeDays:   e.ageUnits(labeledAt),
		LabeledAt: labeledAt,
		Detail:    detail,
	}
	if decision.AgeDays < e.cfg.AgeThreshold {
		decision.Reason = ReasonTooYoung
		return decision, nil
	}

	comments, err := src.ListComments(ctx, candidate.Number)
	if err != nil {
		return Decision{}, err
	}
	if last, ok := LatestReminder(comments, e.cfg.Marker); ok {
		decision.LastReminderAt = last.CreatedAt
		if e.now.Sub(last.CreatedAt) < e.cfg.IntervalDuration() {
			decision.Reason = ReasonRecentlyReminded
			return decision, nil
		}
	}

	decision.Due = true
	return decision, nil
}

func (e *Evaluator) ageUnits(labeledAt time.Time) int {
	elapsed := e.now.Sub(labeledAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / e.cfg.Unit)
}

func skip(r Reason) Decision {
	return Decision{Reason: r}
}

// LatestLabeledAt returns the most recent time label was applied.
func LatestLabeledAt(events []vcs.LabelEvent, label string) (time.Time, bool) {
	var matching []vcs.LabelEvent
	for _, ev := range events {
		if ev.Type == vcs.EventLabeled && ev.Label == label {
			matching = append(matching, ev)
		}
	}
	if len(matching) == 0 {
		return time.Time{}, false
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})
	return matching[0].CreatedAt, true
}

// LatestReminder returns the newest comment posted by automation that carries
// marker.
func LatestReminder(comments []vcs.Comment, marker string) (vcs.Comment, bool) {
	var reminders []vcs.Comment
	for _, c := range comments {
		if c.AuthorKind == vcs.AuthorAutomated && strings.Contains(c.Body, marker) {
			reminders = append(reminders, c)
		}
	}
	if len(reminders) == 0 {
		return vcs.Comment{}, false
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].CreatedAt.After(reminders[j].CreatedAt)
	})
	return reminders[0], true
}
