package assign

import (
	"context"
	"log/slog"
	"slices"

	"github.com/yuxiqian/auto-assign/pkg/config"
	"github.com/yuxiqian/auto-assign/pkg/github"
	"github.com/yuxiqian/auto-assign/pkg/types"
)

// Assigner composes the reviewer and assignee selectors over a platform
// client for one invocation.
type Assigner struct {
	client github.API
	cfg    *config.Config
	dryRun bool
}

// Option configures an Assigner.
type Option func(*Assigner)

// WithDryRun logs selections without submitting them.
func WithDryRun(dryRun bool) Option {
	return func(a *Assigner) {
		a.dryRun = dryRun
	}
}

// New creates an Assigner.
func New(client github.API, cfg *config.Config, opts ...Option) *Assigner {
	a := &Assigner{client: client, cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run dispatches one CI event: decides applicability, then runs the
// reviewer selector and the assignee selector sequentially, each behind
// its own enable flag. Selector-internal failures (invalid candidates,
// team expansion) are absorbed; a write-call failure fails the run.
func (a *Assigner) Run(ctx context.Context, ev *types.Event) error {
	if !a.shouldRun(ctx, ev) {
		return nil
	}

	a.refresh(ctx, ev)

	if a.cfg.AddReviewers {
		if err := a.addReviewers(ctx, ev); err != nil {
			return err
		}
	} else {
		slog.Info("Reviewer assignment is disabled")
	}

	if a.cfg.AddAssignees {
		if err := a.addAssignees(ctx, ev); err != nil {
			return err
		}
	} else {
		slog.Info("Assignee assignment is disabled")
	}

	return nil
}

// shouldRun applies the trigger, draft, and label gates, logging every
// skip decision with the event source.
func (a *Assigner) shouldRun(ctx context.Context, ev *types.Event) bool {
	source := "issue"
	if ev.IsPullRequest() {
		source = "pull request"
	}

	if ev.PullRequest == nil && ev.Issue == nil {
		slog.Info("Skipping: event carries neither a pull request nor an issue", "event", ev.Name, "action", ev.Action)
		return false
	}

	if !slices.Contains(a.cfg.TriggerEvents, ev.Name) {
		slog.Info("Skipping: event is not a configured trigger", "source", source, "event", ev.Name)
		return false
	}
	if len(a.cfg.TriggerActions) > 0 && !slices.Contains(a.cfg.TriggerActions, ev.Action) {
		slog.Info("Skipping: action is not in the configured filter", "source", source, "event", ev.Name, "action", ev.Action)
		return false
	}

	if ev.IsPullRequest() && ev.PullRequest.Draft && !a.cfg.RunOnDraft {
		slog.Info("Skipping: pull request is a draft", "pr", ev.PullRequest.Number)
		return false
	}

	return a.labelsAllow(ctx, ev, source)
}

// labelsAllow evaluates the include/exclude label filters against the
// labels currently on the issue or PR. When labels cannot be listed, the
// filters are not applied rather than failing the run.
func (a *Assigner) labelsAllow(ctx context.Context, ev *types.Event, source string) bool {
	if len(a.cfg.IncludeLabels) == 0 && len(a.cfg.ExcludeLabels) == 0 {
		return true
	}

	labels, err := a.client.Labels(ctx, ev.Owner, ev.Repo, ev.Number())
	if err != nil {
		slog.Warn("Failed to list labels, continuing without label filters", "number", ev.Number(), "error", err)
		return true
	}

	for _, label := range labels {
		if slices.Contains(a.cfg.ExcludeLabels, label) {
			slog.Info("Skipping: excluded label present", "source", source, "number", ev.Number(), "label", label)
			return false
		}
	}

	if len(a.cfg.IncludeLabels) > 0 {
		for _, label := range labels {
			if slices.Contains(a.cfg.IncludeLabels, label) {
				return true
			}
		}
		slog.Info("Skipping: none of the required labels present", "source", source, "number", ev.Number(), "required", a.cfg.IncludeLabels)
		return false
	}

	return true
}

// refresh replaces the payload snapshot with the platform's current record
// so the already-requested and already-assigned gates see fresh state. On
// failure the payload snapshot stands.
func (a *Assigner) refresh(ctx context.Context, ev *types.Event) {
	switch {
	case ev.PullRequest != nil:
		pr, err := a.client.PullRequest(ctx, ev.Owner, ev.Repo, ev.PullRequest.Number)
		if err != nil {
			slog.Warn("Failed to refresh pull request, using event payload", "pr", ev.PullRequest.Number, "error", err)
			return
		}
		ev.PullRequest = pr
	case ev.Issue != nil:
		issue, err := a.client.Issue(ctx, ev.Owner, ev.Repo, ev.Issue.Number)
		if err != nil {
			slog.Warn("Failed to refresh issue, using event payload", "issue", ev.Issue.Number, "error", err)
			return
		}
		ev.Issue = issue
	}
}
