package assign

import (
	"context"
	"errors"
	"testing"

	"github.com/yuxiqian/auto-assign/pkg/config"
	"github.com/yuxiqian/auto-assign/pkg/internal/testutil"
	"github.com/yuxiqian/auto-assign/pkg/types"
)

// baseConfig returns a config that triggers on opened PRs/issues and
// enables both selectors with one always-valid candidate.
func baseConfig() *config.Config {
	return &config.Config{
		Reviewers:      []string{"bob"},
		TriggerEvents:  []string{"pull_request", "pull_request_target", "issues"},
		TriggerActions: []string{"opened", "reopened", "ready_for_review"},
		AddReviewers:   true,
		AddAssignees:   true,
	}
}

func TestRun_PullRequestEvent(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)

	a := New(client, baseConfig())

	ev := prEvent(&types.PullRequest{Number: 42, Author: "alice"})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.ReviewerRequests) != 1 {
		t.Errorf("expected 1 review request, got %d", len(client.ReviewerRequests))
	}
	if len(client.AssigneeAdds) != 1 {
		t.Errorf("expected 1 assignee call, got %d", len(client.AssigneeAdds))
	}
}

func TestRun_UnmatchedEventSkipped(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)

	a := New(client, baseConfig())

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice"})
	ev.Name = "pull_request_review"

	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests)+len(client.AssigneeAdds) != 0 {
		t.Error("expected no platform writes for an unmatched event")
	}
}

func TestRun_UnmatchedActionSkipped(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)

	a := New(client, baseConfig())

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice"})
	ev.Action = "closed"

	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests)+len(client.AssigneeAdds) != 0 {
		t.Error("expected no platform writes for a filtered action")
	}
}

func TestRun_EmptyActionFilterMatchesEverything(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)

	cfg := baseConfig()
	cfg.TriggerActions = nil
	a := New(client, cfg)

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice"})
	ev.Action = "synchronize"

	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests) != 1 {
		t.Error("expected a review request when the action filter is disabled")
	}
}

func TestRun_PayloadWithoutVariantSkipped(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()

	a := New(client, baseConfig())

	ev := &types.Event{Name: "pull_request", Action: "opened", Owner: "acme", Repo: "widgets"}
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests)+len(client.AssigneeAdds) != 0 {
		t.Error("expected no platform writes without a PR or issue payload")
	}
}

func TestRun_DraftSkippedByDefault(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)

	a := New(client, baseConfig())

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice", Draft: true})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests)+len(client.AssigneeAdds) != 0 {
		t.Error("expected draft PR to be skipped")
	}
}

func TestRun_DraftProcessedWhenEnabled(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)

	cfg := baseConfig()
	cfg.RunOnDraft = true
	a := New(client, cfg)

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice", Draft: true})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests) != 1 {
		t.Error("expected draft PR to be processed with runOnDraft")
	}
}

func TestRun_ExcludeLabelSkips(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)
	client.SetLabels("acme", "widgets", 1, []string{"wip"})

	cfg := baseConfig()
	cfg.ExcludeLabels = []string{"wip"}
	a := New(client, cfg)

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice"})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests)+len(client.AssigneeAdds) != 0 {
		t.Error("expected excluded label to skip the run")
	}
}

func TestRun_IncludeLabelRequired(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)
	client.SetLabels("acme", "widgets", 1, []string{"docs"})

	cfg := baseConfig()
	cfg.IncludeLabels = []string{"needs-review"}
	a := New(client, cfg)

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice"})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests)+len(client.AssigneeAdds) != 0 {
		t.Error("expected missing include label to skip the run")
	}

	// With the label present the run proceeds.
	client.SetLabels("acme", "widgets", 1, []string{"docs", "needs-review"})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests) != 1 {
		t.Error("expected a review request once the include label is present")
	}
}

func TestRun_LabelListingFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)
	client.SetLabelError("acme", "widgets", 1, errors.New("boom"))

	cfg := baseConfig()
	cfg.IncludeLabels = []string{"needs-review"}
	a := New(client, cfg)

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice"})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.ReviewerRequests) != 1 {
		t.Error("expected the run to proceed when labels cannot be listed")
	}
}

func TestRun_SelectorsIndividuallyGated(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)

	cfg := baseConfig()
	cfg.AddReviewers = false
	a := New(client, cfg)

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice"})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.ReviewerRequests) != 0 {
		t.Error("expected no review requests with addReviewers disabled")
	}
	if len(client.AssigneeAdds) != 1 {
		t.Error("expected assignees to run independently of reviewers")
	}
}

func TestRun_RefreshUsesPlatformState(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)

	// The payload snapshot has no review requests, but the platform copy
	// does; the refresh must pick that up and skip.
	client.SetPullRequest("acme", "widgets", &types.PullRequest{
		Number:             42,
		Author:             "alice",
		RequestedReviewers: []string{"carol"},
	})

	a := New(client, baseConfig())

	ev := prEvent(&types.PullRequest{Number: 42, Author: "alice"})
	if err := a.Run(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.ReviewerRequests) != 0 {
		t.Error("expected refresh to surface existing review requests and skip")
	}
}

func TestRun_ReviewerWriteFailureFailsRun(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewMockClient()
	client.SetValidUser("bob", true)
	client.RequestReviewersErr = errors.New("forbidden")

	a := New(client, baseConfig())

	ev := prEvent(&types.PullRequest{Number: 1, Author: "alice"})
	if err := a.Run(ctx, ev); err == nil {
		t.Fatal("expected reviewer write failure to fail the run")
	}
	if len(client.AssigneeAdds) != 0 {
		t.Error("assignee selector must not run after a fatal reviewer failure")
	}
}
