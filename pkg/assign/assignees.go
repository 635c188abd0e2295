package assign

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yuxiqian/auto-assign/pkg/types"
)

// selectAssignees picks individual assignees from the configured pool.
// Team candidates are expanded into member usernames first; a team whose
// expansion fails contributes no members and processing continues. The
// combined user pool is a set: a member already present, whether configured
// individually or via another team, is skipped case-insensitively so a
// duplicate never reaches the platform or eats a sampling slot. The pool is
// sampled once, then each sampled username is validated against the
// platform.
func (a *Assigner) selectAssignees(ctx context.Context, ev *types.Event) []string {
	author := ev.Author()
	p := Split(a.cfg.AssigneeCandidates(), author)

	pool := p.Users
	for _, slug := range p.Teams {
		members, err := a.client.TeamMembers(ctx, ev.Owner, slug)
		if err != nil {
			slog.Warn("Failed to expand team, it contributes no assignees", "org", ev.Owner, "team", slug, "error", err)
			continue
		}
		for _, member := range members {
			if strings.EqualFold(member, author) || containsFold(pool, member) {
				continue
			}
			pool = append(pool, member)
		}
	}

	sampled := Sample(pool, a.cfg.AssigneeCount())

	var valid []string
	for _, user := range sampled {
		if !a.client.IsValidUser(ctx, user) {
			slog.Info("Excluding invalid assignee candidate", "username", user)
			continue
		}
		valid = append(valid, user)
	}
	return valid
}

// addAssignees runs the assignee selector and submits the result. Unlike
// reviewers, assignees apply to both pull requests and issues.
func (a *Assigner) addAssignees(ctx context.Context, ev *types.Event) error {
	if ev.PullRequest == nil && ev.Issue == nil {
		slog.Info("Skipping assignees: event carries neither a pull request nor an issue", "event", ev.Name)
		return nil
	}
	if existing := ev.Assignees(); len(existing) > 0 {
		slog.Info("Skipping assignees: already assigned", "number", ev.Number(), "assignees", existing)
		return nil
	}

	assignees := a.selectAssignees(ctx, ev)
	if len(assignees) == 0 {
		slog.Info("No assignees selected", "number", ev.Number())
		return nil
	}

	slog.Info("Selected assignees", "number", ev.Number(), "assignees", assignees)

	if a.dryRun {
		slog.Info("Dry-run: not adding assignees", "number", ev.Number())
		return nil
	}
	return a.client.AddAssignees(ctx, ev.Owner, ev.Repo, ev.Number(), assignees)
}
