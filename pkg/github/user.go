package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Account holds the subset of a GitHub account this tool cares about.
type Account struct {
	Login string
	Type  string
	ID    int64
}

// User fetches an account by username.
func (c *Client) User(ctx context.Context, username string) (*Account, error) {
	apiURL := c.apiURL("/users/%s", username)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user %s (status %d)", username, resp.StatusCode)
	}

	var userData struct {
		Login string `json:"login"`
		Type  string `json:"type"`
		ID    int64  `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userData); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", username, err)
	}

	return &Account{
		Login: userData.Login,
		Type:  userData.Type,
		ID:    userData.ID,
	}, nil
}

// IsValidUser reports whether a username resolves to a real account. Any
// failure (not-found, network, rate limit) counts as invalid; this is the
// sole error-absorption point for per-candidate checks. Results are
// memoized for the invocation.
func (c *Client) IsValidUser(ctx context.Context, username string) bool {
	cacheKey := "user-valid:" + username
	if cached, found := c.cache.Get(cacheKey); found {
		if valid, ok := cached.(bool); ok {
			return valid
		}
	}

	valid := false
	account, err := c.User(ctx, username)
	switch {
	case err != nil:
		slog.Info("Candidate did not resolve to a platform account", "username", username, "error", err)
	case account.ID <= 0:
		slog.Info("Candidate account has no valid ID", "username", username)
	default:
		valid = true
	}

	c.cache.Set(cacheKey, valid)
	return valid
}
