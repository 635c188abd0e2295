package github

import (
	"context"

	"github.com/yuxiqian/auto-assign/pkg/types"
)

// API defines the platform operations the selectors depend on. The mock in
// pkg/internal/testutil implements it for tests.
type API interface {
	// Read operations
	IsValidUser(ctx context.Context, username string) bool
	TeamMembers(ctx context.Context, org, slug string) ([]string, error)
	PullRequest(ctx context.Context, owner, repo string, number int) (*types.PullRequest, error)
	Issue(ctx context.Context, owner, repo string, number int) (*types.Issue, error)
	Labels(ctx context.Context, owner, repo string, number int) ([]string, error)

	// Write operations
	RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers, teamReviewers []string) error
	AddAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error
}

var _ API = (*Client)(nil)
