// Package workflow runs one reminder pass over the labeled pull requests
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hellausefulsoftware/backport-reminder/internal/common/vcs"
	"github.com/hellausefulsoftware/backport-reminder/internal/config"
	"github.com/hellausefulsoftware/backport-reminder/internal/logging"
	"github.com/hellausefulsoftware/backport-reminder/internal/policy"
	"github.com/hellausefulsoftware/backport-reminder/internal/reminder"
)

// Outcome records what happened to one candidate
type Outcome struct {
	Candidate vcs.Candidate
	Decision  policy.Decision
	// Body is the composed reminder, set for due candidates.
	Body   string
	Posted bool
}

// Summary is the result of a complete pass
type Summary struct {
	DryRun   bool
	Outcomes []Outcome
	Reminded int
	Skipped  int
}

// ReminderWorkflow evaluates every labeled candidate and posts due reminders
type ReminderWorkflow struct {
	service vcs.Service
	cfg     config.ReminderConfig
	dryRun  bool
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option customises a ReminderWorkflow
type Option func(*ReminderWorkflow)

// WithClock replaces the wall clock read at the start of Run.
func WithClock(now func() time.Time) Option {
	return func(w *ReminderWorkflow) { w.now = now }
}

// WithSleeper replaces the pause used between posts.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(w *ReminderWorkflow) { w.sleep = sleep }
}

// NewReminderWorkflow creates a workflow for the configured repository.
func NewReminderWorkflow(cfg *config.Config, service vcs.Service, opts ...Option) *ReminderWorkflow {
	w := &ReminderWorkflow{
		service: service,
		cfg:     cfg.Reminder,
		dryRun:  cfg.DryRun,
		now:     time.Now,
		sleep:   pause,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run performs one pass. The first error aborts the pass; outcomes gathered
// up to that point are returned alongside it.
func (w *ReminderWorkflow) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{DryRun: w.dryRun}

	candidates, err := w.service.ListLabeledIssues(ctx, w.cfg.Label)
	if err != nil {
		return summary, fmt.Errorf("failed to list candidates: %w", err)
	}
	logging.Info("Found labeled candidates", "label", w.cfg.Label, "count", len(candidates))

	evaluator := policy.NewEvaluator(w.cfg, w.now())
	posted := 0

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		decision, err := evaluator.Evaluate(ctx, candidate, w.service)
		if err != nil {
			return summary, fmt.Errorf("failed to evaluate #%d: %w", candidate.Number, err)
		}
		logDecision(candidate, decision)

		outcome := Outcome{Candidate: candidate, Decision: decision}
		if !decision.Due {
			summary.Skipped++
			summary.Outcomes = append(summary.Outcomes, outcome)
			continue
		}

		outcome.Body = reminder.Compose(reminder.Params{
			Marker:    w.cfg.Marker,
			Mentions:  reminder.Mentions(decision.Detail, candidate.Author),
			AgeDays:   decision.AgeDays,
			Label:     w.cfg.Label,
			Threshold: w.cfg.AgeThreshold,
			Interval:  w.cfg.Interval,
		})

		if w.dryRun {
			logging.Info("Dry run, reminder not posted", "number", candidate.Number)
		} else {
			if posted > 0 && w.cfg.PostDelay > 0 {
				if err := w.sleep(ctx, w.cfg.PostDelay); err != nil {
					return summary, err
				}
			}
			if _, err := w.service.PostComment(ctx, candidate.Number, outcome.Body); err != nil {
				return summary, fmt.Errorf("failed to post reminder on #%d: %w", candidate.Number, err)
			}
			posted++
			outcome.Posted = true
			logging.Info("Posted reminder", "number", candidate.Number)
		}

		summary.Reminded++
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	logging.Info("Reminder pass complete",
		"candidates", len(candidates),
		"reminded", summary.Reminded,
		"skipped", summary.Skipped,
		"dry_run", w.dryRun)
	return summary, nil
}

func logDecision(candidate vcs.Candidate, d policy.Decision) {
	args := []any{"number", candidate.Number, "decision", d.Label()}
	if !d.LabeledAt.IsZero() {
		args = append(args, "age_days", d.AgeDays)
	}
	if !d.LastReminderAt.IsZero() {
		args = append(args, "last_reminder", d.LastReminderAt.Format(time.RFC3339))
	}
	if d.Reason == policy.ReasonBaseMismatch && d.Detail != nil {
		args = append(args, "base", d.Detail.BaseBranch)
	}
	logging.Info("Evaluated candidate", args...)
}

func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
