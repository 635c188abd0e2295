package assign

import (
	"context"
	"log/slog"

	"github.com/yuxiqian/auto-assign/pkg/types"
)

// ReviewerSelection is the outcome of the reviewer selector: user logins
// and team slugs to request reviews from.
type ReviewerSelection struct {
	Reviewers     []string
	TeamReviewers []string
}

// Empty reports whether the selection carries no reviewers at all.
func (s ReviewerSelection) Empty() bool {
	return len(s.Reviewers) == 0 && len(s.TeamReviewers) == 0
}

// selectReviewers picks reviewers from the configured pool. Both
// partitions are sampled independently with numberOfReviewers, so the
// combined selection can exceed that count; this mirrors the long-standing
// behavior users configure around. Sampled users that do not resolve to a
// platform account are dropped; team slugs are submitted unvalidated.
func (a *Assigner) selectReviewers(ctx context.Context, author string) ReviewerSelection {
	p := Split(a.cfg.Reviewers, author)

	users := Sample(p.Users, a.cfg.NumberOfReviewers)
	teams := Sample(p.Teams, a.cfg.NumberOfReviewers)

	var valid []string
	for _, user := range users {
		if !a.client.IsValidUser(ctx, user) {
			slog.Info("Excluding invalid reviewer candidate", "username", user)
			continue
		}
		valid = append(valid, user)
	}

	return ReviewerSelection{Reviewers: valid, TeamReviewers: teams}
}

// addReviewers runs the reviewer selector for a pull request event and
// submits the result. Issues never get reviewers.
func (a *Assigner) addReviewers(ctx context.Context, ev *types.Event) error {
	pr := ev.PullRequest
	if pr == nil {
		slog.Info("Skipping reviewers: event is not a pull request", "event", ev.Name)
		return nil
	}
	if len(pr.RequestedReviewers) > 0 || len(pr.RequestedTeams) > 0 {
		slog.Info("Skipping reviewers: pull request already has review requests",
			"pr", pr.Number, "reviewers", pr.RequestedReviewers, "team_reviewers", pr.RequestedTeams)
		return nil
	}

	selection := a.selectReviewers(ctx, pr.Author)
	if selection.Empty() {
		slog.Info("No reviewers selected", "pr", pr.Number)
		return nil
	}

	slog.Info("Selected reviewers", "pr", pr.Number,
		"reviewers", selection.Reviewers, "team_reviewers", selection.TeamReviewers)

	if a.dryRun {
		slog.Info("Dry-run: not requesting reviewers", "pr", pr.Number)
		return nil
	}
	return a.client.RequestReviewers(ctx, ev.Owner, ev.Repo, pr.Number, selection.Reviewers, selection.TeamReviewers)
}
