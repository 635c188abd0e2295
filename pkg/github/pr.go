package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/yuxiqian/auto-assign/pkg/types"
)

// PullRequest fetches the current state of a pull request.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*types.PullRequest, error) {
	slog.Info("Fetching pull request", "component", "api", "owner", owner, "repo", repo, "pr", number)
	apiURL := c.apiURL("/repos/%s/%s/pulls/%d", owner, repo, number)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get PR %d (status %d)", number, resp.StatusCode)
	}

	var prData struct {
		Title string `json:"title"`
		User  struct {
			Login string `json:"login"`
		} `json:"user"`
		Assignees []struct {
			Login string `json:"login"`
		} `json:"assignees"`
		RequestedReviewers []struct {
			Login string `json:"login"`
		} `json:"requested_reviewers"`
		RequestedTeams []struct {
			Slug string `json:"slug"`
		} `json:"requested_teams"`
		Number int  `json:"number"`
		Draft  bool `json:"draft"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&prData); err != nil {
		return nil, fmt.Errorf("failed to decode pull request: %w", err)
	}

	pr := &types.PullRequest{
		Number: prData.Number,
		Title:  prData.Title,
		Author: prData.User.Login,
		Draft:  prData.Draft,
	}
	for _, a := range prData.Assignees {
		pr.Assignees = append(pr.Assignees, a.Login)
	}
	for _, r := range prData.RequestedReviewers {
		pr.RequestedReviewers = append(pr.RequestedReviewers, r.Login)
	}
	for _, t := range prData.RequestedTeams {
		pr.RequestedTeams = append(pr.RequestedTeams, t.Slug)
	}
	return pr, nil
}

// RequestReviewers submits a single review request carrying both the user
// and team reviewer lists.
func (c *Client) RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers, teamReviewers []string) error {
	apiURL := c.apiURL("/repos/%s/%s/pulls/%d/requested_reviewers", owner, repo, number)

	payload := map[string]any{
		"reviewers":      reviewers,
		"team_reviewers": teamReviewers,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, apiURL, payload) //nolint:bodyclose // body is closed via drainAndCloseBody
	if err != nil {
		return fmt.Errorf("failed to request reviewers: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to request reviewers: status %d (could not read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to request reviewers: status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("Requested reviewers", "owner", owner, "repo", repo, "pr", number, "reviewers", reviewers, "team_reviewers", teamReviewers)
	return nil
}
