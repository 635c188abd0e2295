package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// perPageLimit is the GitHub API per_page maximum. Team expansion reads a
// single bounded page; teams larger than this contribute their first page.
const perPageLimit = 100

// TeamMembers returns up to perPageLimit member usernames of org/slug.
func (c *Client) TeamMembers(ctx context.Context, org, slug string) ([]string, error) {
	slog.Info("Fetching team members", "component", "api", "org", org, "team", slug)
	apiURL := c.apiURL("/orgs/%s/teams/%s/members?per_page=%d", org, slug, perPageLimit)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list members of %s/%s (status %d)", org, slug, resp.StatusCode)
	}

	var members []struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&members); err != nil {
		return nil, fmt.Errorf("failed to decode members of %s/%s: %w", org, slug, err)
	}

	usernames := make([]string, 0, len(members))
	for _, m := range members {
		if m.Login != "" {
			usernames = append(usernames, m.Login)
		}
	}
	return usernames, nil
}
