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

// Issue fetches the current state of an issue.
func (c *Client) Issue(ctx context.Context, owner, repo string, number int) (*types.Issue, error) {
	slog.Info("Fetching issue", "component", "api", "owner", owner, "repo", repo, "issue", number)
	apiURL := c.apiURL("/repos/%s/%s/issues/%d", owner, repo, number)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get issue %d (status %d)", number, resp.StatusCode)
	}

	var issueData struct {
		Title string `json:"title"`
		User  struct {
			Login string `json:"login"`
		} `json:"user"`
		Assignees []struct {
			Login string `json:"login"`
		} `json:"assignees"`
		Number int `json:"number"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&issueData); err != nil {
		return nil, fmt.Errorf("failed to decode issue: %w", err)
	}

	issue := &types.Issue{
		Number: issueData.Number,
		Title:  issueData.Title,
		Author: issueData.User.Login,
	}
	for _, a := range issueData.Assignees {
		issue.Assignees = append(issue.Assignees, a.Login)
	}
	return issue, nil
}

// Labels lists the label names on an issue or pull request.
func (c *Client) Labels(ctx context.Context, owner, repo string, number int) ([]string, error) {
	slog.Info("Fetching labels", "component", "api", "owner", owner, "repo", repo, "issue", number)
	apiURL := c.apiURL("/repos/%s/%s/issues/%d/labels?per_page=%d", owner, repo, number, perPageLimit)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list labels on %d (status %d)", number, resp.StatusCode)
	}

	var labels []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}

	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.Name != "" {
			names = append(names, l.Name)
		}
	}
	return names, nil
}

// AddAssignees adds assignees to the issue or pull request in one call.
func (c *Client) AddAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error {
	apiURL := c.apiURL("/repos/%s/%s/issues/%d/assignees", owner, repo, number)

	payload := map[string]any{
		"assignees": assignees,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, apiURL, payload) //nolint:bodyclose // body is closed via drainAndCloseBody
	if err != nil {
		return fmt.Errorf("failed to add assignees: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to add assignees: status %d (could not read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to add assignees: status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("Added assignees", "owner", owner, "repo", repo, "issue", number, "assignees", assignees)
	return nil
}
